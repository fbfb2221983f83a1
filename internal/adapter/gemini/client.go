// Package gemini implements domain.Researcher on the Gemini API with Google
// Search grounding.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
	"github.com/tsethwilliams/isitsafetovisit/internal/observability"
)

// ErrEmptyReply is returned when the model answers without any text.
var ErrEmptyReply = errors.New("model returned no text")

// Request kinds, used as the metrics "kind" label.
const (
	kindGenerate = "generate"
	kindRefresh  = "refresh"
	kindAlerts   = "alerts"
)

// generator is the slice of the genai API the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds the client settings.
type Config struct {
	APIKey     string
	Model      string
	MaxTokens  int
	WebSearch  bool
	Timeout    time.Duration
	RPS        float64
	MaxRetries int
}

// Client implements domain.Researcher.
type Client struct {
	gen        generator
	model      string
	maxTokens  int32
	webSearch  bool
	timeout    time.Duration
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Gemini-backed researcher.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger, metrics *observability.Metrics) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newClient(cli.Models, cfg, clockwork.NewRealClock(), logger, metrics), nil
}

func newClient(gen generator, cfg Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Client {
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		gen:        gen,
		model:      cfg.Model,
		maxTokens:  int32(cfg.MaxTokens), //nolint:gosec // bounded by config validation
		webSearch:  cfg.WebSearch,
		timeout:    cfg.Timeout,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetries,
		backoff:    time.Second,
		maxBackoff: 30 * time.Second,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// Generate asks the model for a complete profile of a new city.
func (c *Client) Generate(ctx context.Context, name, country string) (string, error) {
	c.logger.Info("generating city profile", "city", name, "country", country)
	prompt := generatePrompt(name, country, domain.CityID(name, country), c.clock.Now())
	return c.call(ctx, kindGenerate, systemGenerate, prompt)
}

// Refresh asks the model to update an existing record.
func (c *Client) Refresh(ctx context.Context, rec domain.CityRecord) (string, error) {
	c.logger.Info("refreshing city profile", "city_id", rec.CityID)
	prompt, err := refreshPrompt(rec, c.clock.Now())
	if err != nil {
		return "", err
	}
	return c.call(ctx, kindRefresh, systemRefresh, prompt)
}

// CheckAlerts asks the model for breaking safety events across cities.
func (c *Client) CheckAlerts(ctx context.Context, cities []domain.CityRecord) (string, error) {
	c.logger.Info("checking safety alerts", "cities", len(cities))
	return c.call(ctx, kindAlerts, systemAlerts, alertsPrompt(cities))
}

func (c *Client) config(system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   c.maxTokens,
	}
	if c.webSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return cfg
}

// call sends one prompt, retrying failed or empty replies with exponential
// backoff. Every attempt waits on the rate limiter first.
func (c *Client) call(ctx context.Context, kind, system, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	cfg := c.config(system)
	backoff := c.backoff

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%s request: %w", kind, err)
		}

		text, err := c.attempt(ctx, kind, contents, cfg)
		if err == nil {
			c.metrics.LLMRequests.WithLabelValues(kind, "success").Inc()
			return text, nil
		}

		if attempt >= c.maxRetries || ctx.Err() != nil {
			c.metrics.LLMRequests.WithLabelValues(kind, "error").Inc()
			return "", fmt.Errorf("%s request: %w", kind, err)
		}

		c.metrics.LLMRequests.WithLabelValues(kind, "retry").Inc()
		c.logger.Warn("model request failed, retrying",
			"kind", kind,
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err,
		)
		if !retry.SleepWithContext(ctx, backoff) {
			return "", fmt.Errorf("%s request: %w", kind, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, c.maxBackoff)
	}
}

func (c *Client) attempt(ctx context.Context, kind string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := c.clock.Now()
	resp, err := c.gen.GenerateContent(ctx, c.model, contents, cfg)
	c.metrics.LLMDuration.WithLabelValues(kind).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	text := replyText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// replyText joins the text parts of the first candidate, skipping thoughts.
func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var parts []string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought || p.Text == "" {
			continue
		}
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}
