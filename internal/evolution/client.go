// Package evolution talks to an Evolution-API-compatible WhatsApp gateway:
// it parses the inbound webhook envelope and posts outbound text messages.
package evolution

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fisiogestor/whatsapp-confirm/pkg/logging"
)

var sendTracer = otel.Tracer("fisiogestor.internal.evolution.send")

// Config controls the gateway client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client posts messages through the gateway. Credentials are per clinic and
// supplied on each call, not held by the client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a configured Client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("evolution: base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type sendTextResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
	MessageID string `json:"messageId"`
}

// SendText posts a text message through the given clinic instance and returns
// the provider message id for audit logging.
func (c *Client) SendText(ctx context.Context, instance, apiKey, number, text string) (string, error) {
	if instance == "" || apiKey == "" {
		return "", errors.New("evolution: instance and api key required")
	}
	if number == "" {
		return "", errors.New("evolution: number required")
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("evolution: text required")
	}

	ctx, span := sendTracer.Start(ctx, "evolution.send_text",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("fisiogestor.instance", instance),
		attribute.String("fisiogestor.to", number),
	)

	payload, err := json.Marshal(sendTextRequest{Number: number, Text: text})
	if err != nil {
		return "", fmt.Errorf("evolution: marshal send request: %w", err)
	}
	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("evolution: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("evolution: send text: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("evolution: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("evolution send rejected",
			"status", resp.StatusCode,
			"instance", instance,
		)
		return "", fmt.Errorf("evolution: send text status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed sendTextResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Message went out; a missing id only degrades the audit entry.
		c.logger.Warn("evolution response not parseable", "error", err)
		return "", nil
	}
	if parsed.Key.ID != "" {
		return parsed.Key.ID, nil
	}
	return parsed.MessageID, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
