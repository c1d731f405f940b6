// internal/server/server_test.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintquery/internal/common/config"
	"maintquery/internal/common/logger"
	"maintquery/internal/engine"
	"maintquery/internal/engine/cache"
	"maintquery/internal/engine/executor"
	"maintquery/internal/engine/extract"
	"maintquery/internal/engine/fallback"
	"maintquery/internal/engine/intent"
	"maintquery/internal/engine/router"
	"maintquery/internal/engine/security"
	"maintquery/internal/engine/sqlgen"
	"maintquery/internal/models"
)

// newTestServer wires a server around an engine with a mocked database and an
// unavailable generative backend, so every request resolves rules-first.
func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	log := logger.NewTestLogger(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	eng := engine.New(engine.Dependencies{
		Validator:  security.NewValidator(60, log),
		Cache:      cache.NewService(config.CacheConfig{Capacity: 100, MinTTL: 1800000, MaxTTL: 14400000, SimilarityThreshold: 0.85, FuzzyMaxDistance: 3}, nil, log),
		Extractor:  extract.NewExtractor(log),
		Classifier: intent.NewClassifier(log),
		Router: router.NewRouter(
			config.RouterConfig{BreakerFailureThreshold: 3, BreakerCooldown: 600000, AvailabilityInterval: 300000, HealthProbeTimeout: 2000},
			func(ctx context.Context) bool { return false },
			log,
		),
		Executor: executor.NewExecutor(db, 5*time.Second, log),
		Fallback: fallback.NewService(log),
		Rules:    sqlgen.NewRuleBuilder(log),
	}, config.FallbackConfig{ConfidenceFloor: 0.3}, log, nil)

	srv := New(config.ServerConfig{Address: ":0", ReadTimeout: 5000, WriteTimeout: 5000}, eng, log)
	return srv, mock
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleAsk_AnswersQuestion(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total FROM equipment WHERE equipment_type = \$1`).
		WithArgs("Transformer").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(7)))

	rec := doRequest(srv, http.MethodPost, "/api/v1/ask",
		`{"question": "Quantos transformadores temos?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var answer models.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, models.SourceRules, answer.Source)
	assert.Contains(t, answer.Text, "7")
	assert.NotEmpty(t, answer.RequestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleAsk_RejectsInvalidPayloads(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `this is not json`},
		{"missing question", `{"sessionId": "abc"}`},
		{"empty question", `{"question": ""}`},
		{"question too long", `{"question": "` + strings.Repeat("a", 2001) + `"}`},
		{"unknown field", `{"question": "ok?", "admin": true}`},
		{"wrong type", `{"question": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/api/v1/ask", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleAsk_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/v1/ask", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, string(router.BreakerClosed), body["breakerState"])
}

func TestHandleCacheStats(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/v1/cache/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.Size)
}

func TestHandleForceHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/v1/health/recheck", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["generativeBackendHealthy"])
	assert.Equal(t, string(router.BreakerClosed), body["breakerState"])
}

func TestHandleMetricsExposed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "query_engine_")
}
