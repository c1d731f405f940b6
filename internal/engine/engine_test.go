// internal/engine/engine_test.go
package engine

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintquery/internal/common/config"
	stderrors "maintquery/internal/common/errors"
	"maintquery/internal/common/logger"
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

// stubGenerator stands in for the generative backend.
type stubGenerator struct {
	plan  *models.QueryPlan
	err   error
	calls int
}

func (s *stubGenerator) Kind() models.GeneratorKind { return models.GeneratorLLM }

func (s *stubGenerator) Generate(ctx context.Context, req *sqlgen.Request) (*models.QueryPlan, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.plan, nil
}

// fixedPlanGenerator always returns the same rule plan, whatever the request.
type fixedPlanGenerator struct {
	plan *models.QueryPlan
}

func (f *fixedPlanGenerator) Kind() models.GeneratorKind { return models.GeneratorRules }

func (f *fixedPlanGenerator) Generate(ctx context.Context, req *sqlgen.Request) (*models.QueryPlan, error) {
	return f.plan, nil
}

type engineFixture struct {
	engine     *Engine
	mock       sqlmock.Sqlmock
	generative *stubGenerator
}

// newFixture builds an engine with a mocked database, a pinned clock and a
// health probe that reports the given backend availability.
func newFixture(t *testing.T, generativeUp bool, generative *stubGenerator) *engineFixture {
	t.Helper()
	return newFixtureWithRules(t, generativeUp, generative, nil)
}

// newFixtureWithRules additionally swaps the rule-based generator, so tests
// can drive the pipeline with arbitrary rule plans.
func newFixtureWithRules(t *testing.T, generativeUp bool, generative *stubGenerator, rules sqlgen.Generator) *engineFixture {
	t.Helper()
	log := logger.NewTestLogger(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := func() time.Time { return time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC) }

	if rules == nil {
		rules = sqlgen.NewRuleBuilder(log)
	}

	deps := Dependencies{
		Validator:  security.NewValidator(60, log),
		Cache:      cache.NewService(config.CacheConfig{Capacity: 100, MinTTL: 1800000, MaxTTL: 14400000, SimilarityThreshold: 0.85, FuzzyMaxDistance: 3}, nil, log),
		Extractor:  extract.NewExtractorAt(log, clock),
		Classifier: intent.NewClassifierAt(log, clock),
		Router: router.NewRouter(
			config.RouterConfig{BreakerFailureThreshold: 3, BreakerCooldown: 600000, AvailabilityInterval: 300000, HealthProbeTimeout: 2000},
			func(ctx context.Context) bool { return generativeUp },
			log,
		),
		Executor: executor.NewExecutor(db, 5*time.Second, log),
		Fallback: fallback.NewService(log),
		Rules:    rules,
	}
	if generative != nil {
		deps.Generative = generative
	}

	eng := New(deps, config.FallbackConfig{ConfidenceFloor: 0.3}, log, nil)
	return &engineFixture{engine: eng, mock: mock, generative: generative}
}

func TestAnswer_SimpleCountThroughRules(t *testing.T) {
	f := newFixture(t, false, nil)

	f.mock.ExpectQuery(`SELECT COUNT\(\*\) AS total FROM equipment WHERE equipment_type = \$1`).
		WithArgs("Transformer").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(42)))

	answer := f.engine.Answer(context.Background(), models.Query{Text: "Quantos transformadores temos?"})

	assert.Equal(t, models.SourceRules, answer.Source)
	assert.Equal(t, models.IntentCountEquipment, answer.Intent)
	assert.Contains(t, answer.Text, "42")
	assert.Equal(t, 1, answer.RowCount)
	assert.NotEmpty(t, answer.RequestID)
	assert.GreaterOrEqual(t, answer.Confidence, 0.3)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAnswer_SecondAskServedFromCache(t *testing.T) {
	f := newFixture(t, false, nil)

	// The database is hit exactly once; the repeat is a cache exact hit.
	f.mock.ExpectQuery(`SELECT COUNT\(\*\) AS total FROM equipment`).
		WithArgs("Transformer").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(42)))

	ctx := context.Background()
	first := f.engine.Answer(ctx, models.Query{Text: "Quantos transformadores temos?"})
	require.Equal(t, models.SourceRules, first.Source)

	second := f.engine.Answer(ctx, models.Query{Text: "Quantos transformadores temos?"})
	assert.Equal(t, models.SourceCache, second.Source)
	assert.Equal(t, first.Text, second.Text)
	assert.NotEqual(t, first.RequestID, second.RequestID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAnswer_InjectionGetsFallbackWithSuggestions(t *testing.T) {
	f := newFixture(t, false, nil)

	answer := f.engine.Answer(context.Background(), models.Query{Text: "'; DROP TABLE equipment; --"})

	assert.Equal(t, models.SourceFallback, answer.Source)
	assert.NotEmpty(t, answer.Text)
	assert.NotEmpty(t, answer.Suggestions)
	assert.Empty(t, answer.SQLUsed, "rejected questions never reach SQL generation")
}

func TestAnswer_GenerativePlanPassesOutputGate(t *testing.T) {
	gen := &stubGenerator{plan: &models.QueryPlan{
		SQLTemplate: "SELECT e.name FROM equipment e WHERE e.status = 'Failed'",
		Generator:   models.GeneratorLLM,
		Confidence:  0.7,
	}}
	f := newFixture(t, true, gen)

	f.mock.ExpectQuery(`SELECT e\.name FROM equipment`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Transformador Norte"))

	// A question the rule library has no template for routes generative-first.
	answer := f.engine.Answer(context.Background(), models.Query{
		Text: "explique quais ativos tiveram problemas recorrentes",
	})

	assert.Equal(t, models.SourceLLM, answer.Source)
	assert.Equal(t, 1, gen.calls)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAnswer_RulePlanFailingOutputGateIsNotExecuted(t *testing.T) {
	rules := &fixedPlanGenerator{plan: &models.QueryPlan{
		SQLTemplate: "DELETE FROM equipment",
		Generator:   models.GeneratorRules,
		Confidence:  0.9,
	}}
	f := newFixtureWithRules(t, false, nil, rules)

	// No database expectation: a rule plan that fails the output gate must
	// never reach execution.
	answer := f.engine.Answer(context.Background(), models.Query{Text: "Quantos transformadores temos?"})

	assert.Equal(t, models.SourceFallback, answer.Source)
	assert.Empty(t, answer.SQLUsed)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAnswer_MaliciousGenerativeOutputIsBlocked(t *testing.T) {
	gen := &stubGenerator{plan: &models.QueryPlan{
		SQLTemplate: "SELECT 1; DROP TABLE equipment",
		Generator:   models.GeneratorLLM,
		Confidence:  0.9,
	}}
	f := newFixture(t, true, gen)

	// No database expectation: the blocked plan must never execute, and the
	// rule library cannot cover the question either.
	answer := f.engine.Answer(context.Background(), models.Query{
		Text: "explique quais ativos tiveram problemas recorrentes",
	})

	assert.Equal(t, models.SourceFallback, answer.Source)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAnswer_GenerativeFailureFallsBackToRules(t *testing.T) {
	gen := &stubGenerator{err: stderrors.NewGenerationTimeoutError("deadline exceeded")}
	f := newFixture(t, true, gen)

	// Medium complexity routes generative first; its failure falls through
	// to the rule template, which answers from the database.
	f.mock.ExpectQuery(`m\.executed_at IS NOT NULL`).
		WithArgs("TR-204").
		WillReturnRows(sqlmock.NewRows([]string{"equipment_id", "name", "maintenance_type", "executed_at"}).
			AddRow("TR-204", "Transformador Norte", "Preventive", "2025-02-15"))

	answer := f.engine.Answer(context.Background(), models.Query{
		Text: "Quando foi executada a última manutenção do TR-204?",
	})

	assert.Equal(t, models.SourceRules, answer.Source)
	assert.Equal(t, 1, gen.calls)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAnswer_RepeatedGenerativeFailuresOpenBreaker(t *testing.T) {
	gen := &stubGenerator{err: stderrors.NewGenerationFailureError(assert.AnError)}
	f := newFixture(t, true, gen)

	question := "me explique o panorama geral de falhas e custos"

	for i := 0; i < 3; i++ {
		f.engine.Answer(context.Background(), models.Query{Text: question})
	}
	require.Equal(t, string(router.BreakerOpen), f.engine.BreakerState())

	// With the breaker open the generative path is not even attempted.
	calls := gen.calls
	f.engine.Answer(context.Background(), models.Query{Text: question})
	assert.Equal(t, calls, gen.calls)
}

func TestAnswer_OutOfDomainQuestionGetsFallback(t *testing.T) {
	f := newFixture(t, false, nil)

	answer := f.engine.Answer(context.Background(), models.Query{
		Text: "qual a previsão do tempo para amanhã?",
	})

	assert.Equal(t, models.SourceFallback, answer.Source)
	assert.Equal(t, models.IntentGeneralQuery, answer.Intent)
	assert.NotEmpty(t, answer.Suggestions)
}

func TestAnswer_DegenerateInputStillGetsAnAnswer(t *testing.T) {
	f := newFixture(t, false, nil)

	// Empty, whitespace-only and non-UTF8 input all degrade to a well-formed
	// fallback answer instead of an error or a panic.
	inputs := []string{"", "   ", "\xff\xfe\xfd\x80"}

	for _, text := range inputs {
		answer := f.engine.Answer(context.Background(), models.Query{Text: text})

		assert.Equal(t, models.SourceFallback, answer.Source)
		assert.NotEmpty(t, answer.RequestID)
		assert.NotEmpty(t, answer.Text)
	}
}

func TestAnswer_ZeroRowsIsAnAnswerNotAFallback(t *testing.T) {
	f := newFixture(t, false, nil)

	f.mock.ExpectQuery(`SELECT COUNT\(\*\) AS total FROM equipment WHERE equipment_type = \$1`).
		WithArgs("Generator").
		WillReturnRows(sqlmock.NewRows([]string{"total"}))

	answer := f.engine.Answer(context.Background(), models.Query{Text: "Quantos geradores temos?"})

	assert.Equal(t, models.SourceRules, answer.Source)
	assert.Equal(t, 0, answer.RowCount)
	assert.NotEmpty(t, answer.Text)
}
