// Package workflow calls the n8n automation webhooks that back AI assistance,
// PDF rendering, OCR, calendar sync and share notifications.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Webhook names, appended to <base>/webhook/.
const (
	WebhookAIChat            = "ai-chat"
	WebhookMealPlan          = "generate-meal-plan"
	WebhookSchedule          = "generate-schedule"
	WebhookHabitAnalysis     = "analyze-habits"
	WebhookTaskSuggestions   = "suggest-tasks"
	WebhookGoalGeneration    = "generate-goals"
	WebhookFeedback          = "provide-feedback"
	WebhookPDFExport         = "export-pdf"
	WebhookHandwritingOCR    = "handwriting-to-text"
	WebhookCalendarSync      = "calendar-sync"
	WebhookShareNotification = "share-notification"
)

// Timeouts per webhook. Unknown webhooks use DefaultTimeout.
var Timeouts = map[string]time.Duration{
	WebhookAIChat:            30 * time.Second,
	WebhookMealPlan:          20 * time.Second,
	WebhookSchedule:          20 * time.Second,
	WebhookHabitAnalysis:     20 * time.Second,
	WebhookTaskSuggestions:   15 * time.Second,
	WebhookGoalGeneration:    15 * time.Second,
	WebhookFeedback:          15 * time.Second,
	WebhookPDFExport:         60 * time.Second,
	WebhookHandwritingOCR:    30 * time.Second,
	WebhookCalendarSync:      30 * time.Second,
	WebhookShareNotification: 10 * time.Second,
}

const DefaultTimeout = 30 * time.Second

// StatusError is returned when a webhook answers with a non-2xx status.
type StatusError struct {
	Webhook    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook %s returned status %d", e.Webhook, e.StatusCode)
}

// Client posts JSON payloads to n8n webhooks.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a workflow client. apiKey may be empty.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Post sends payload to the named webhook and decodes the JSON reply into out.
// out may be nil when the reply is not needed. No retries are attempted.
func (c *Client) Post(ctx context.Context, webhook string, payload interface{}, out interface{}) error {
	timeout, ok := Timeouts[webhook]
	if !ok {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", webhook, err)
	}

	url := c.baseURL + "/webhook/" + webhook
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", webhook, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-N8N-API-KEY", c.apiKey)
	}

	c.logger.Debug("Workflow request", zap.String("webhook", webhook))
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Workflow request failed", zap.String("webhook", webhook), zap.Error(err))
		return fmt.Errorf("call %s: %w", webhook, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Workflow response",
		zap.String("webhook", webhook),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("Workflow returned error status",
			zap.String("webhook", webhook),
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return &StatusError{Webhook: webhook, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s response: %w", webhook, err)
	}
	return nil
}
