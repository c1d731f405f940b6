// internal/engine/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"maintquery/internal/common/config"
	stderrors "maintquery/internal/common/errors"
	"maintquery/internal/common/logger"
	"maintquery/internal/engine/sqlgen"
	"maintquery/internal/models"
)

var (
	ErrGenerationFailed  = errors.New("GENERATION_FAILED")
	ErrGenerationTimeout = errors.New("GENERATION_TIMEOUT")
	ErrQuotaExhausted    = errors.New("QUOTA_EXHAUSTED")
	ErrNonSelectOutput   = errors.New("NON_SELECT_OUTPUT")
)

// completionSchema validates the backend's JSON envelope before any field of
// it is trusted.
const completionSchema = `{
	"type": "object",
	"required": ["text"],
	"properties": {
		"text": {"type": "string"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"tokens_used": {"type": "integer", "minimum": 0}
	}
}`

var completionSchemaLoader = gojsonschema.NewStringLoader(completionSchema)

// Client calls the external text-completion backend to produce SQL for
// questions the rule library cannot cover. It implements sqlgen.Generator.
type Client struct {
	cfg    config.GenAIConfig
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg config.GenAIConfig, log logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		// No client-level timeout; the per-call context carries the budget.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"component": "genai-sql-generator"}),
	}
}

func (c *Client) Kind() models.GeneratorKind {
	return models.GeneratorLLM
}

// Generate sends the schema-grounded prompt and turns the completion into a
// QueryPlan. Timeouts, quota exhaustion and malformed output all surface as
// generation failures for the router to count, never as fatal errors.
func (c *Client) Generate(ctx context.Context, req *sqlgen.Request) (*models.QueryPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(c.cfg.Timeout))
	defer cancel()

	text, confidence, err := c.complete(ctx, buildPrompt(req.Query.Text))
	if err != nil {
		return nil, c.asStandardError(err)
	}

	sql, err := extractSQL(text)
	if err != nil {
		c.logger.Warn("backend returned unusable completion", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, stderrors.NewGenerationFailureError(err)
	}

	if confidence == 0 {
		confidence = 0.5
	}

	c.logger.Info("generative SQL produced", map[string]interface{}{
		"intent":     req.Intent,
		"confidence": confidence,
	})

	return &models.QueryPlan{
		SQLTemplate: sql,
		Parameters:  nil,
		Generator:   models.GeneratorLLM,
		Intent:      req.Intent,
		Entities:    req.Entities,
		Confidence:  confidence,
	}, nil
}

// Healthy probes the backend's health endpoint within the given context.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) complete(ctx context.Context, prompt string) (string, float64, error) {
	requestBody := map[string]interface{}{
		"model":       c.cfg.Model,
		"prompt":      prompt,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", 0, ErrGenerationTimeout
			}
		}

		// The request body is consumed per attempt, so build it fresh.
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/completions", bytes.NewBuffer(body))
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return "", 0, ErrGenerationTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			// Quota exhaustion is a distinct failure code: it never retries
			// here, the breaker absorbs it instead.
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return "", 0, ErrQuotaExhausted
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", 0, ErrGenerationTimeout
		}
		return "", 0, fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
	}

	if resp == nil {
		return "", 0, fmt.Errorf("%w: no successful response after retries", ErrGenerationFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("%w: read body: %v", ErrGenerationFailed, err)
	}

	result, err := gojsonschema.Validate(completionSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil || !result.Valid() {
		return "", 0, fmt.Errorf("%w: completion envelope failed schema validation", ErrGenerationFailed)
	}

	var apiResponse struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(raw, &apiResponse); err != nil {
		return "", 0, fmt.Errorf("%w: decode error: %v", ErrGenerationFailed, err)
	}

	return apiResponse.Text, apiResponse.Confidence, nil
}

func (c *Client) asStandardError(err error) error {
	switch {
	case errors.Is(err, ErrGenerationTimeout):
		return stderrors.NewGenerationTimeoutError(err.Error())
	case errors.Is(err, ErrQuotaExhausted):
		return stderrors.NewQuotaExhaustedError(err.Error())
	default:
		return stderrors.NewGenerationFailureError(err)
	}
}

var reFence = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)```")

// extractSQL strips markdown fencing and whitespace from the completion and
// rejects anything that does not begin with a read-only SELECT.
func extractSQL(text string) (string, error) {
	sql := strings.TrimSpace(text)

	if m := reFence.FindStringSubmatch(sql); m != nil {
		sql = strings.TrimSpace(m[1])
	}
	sql = strings.TrimSuffix(sql, ";")
	sql = strings.TrimSpace(sql)

	if sql == "" {
		return "", fmt.Errorf("%w: empty completion", ErrNonSelectOutput)
	}
	if !strings.HasPrefix(strings.ToUpper(sql), "SELECT") {
		return "", fmt.Errorf("%w: %q", ErrNonSelectOutput, truncate(sql, 80))
	}

	return sql, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
