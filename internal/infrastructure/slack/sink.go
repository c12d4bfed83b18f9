// Package slack delivers operational alerts to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/match-hub/match-hub/internal/domain/alert"
)

// ErrThrottled is returned when an alert is dropped by the rate limit
var ErrThrottled = errors.New("slack alert throttled")

type Config struct {
	WebhookURL string
	Timeout    time.Duration
	// Alerts per minute, with bursts of Burst.
	PerMinute int
	Burst     int
}

// Sink implements alert.Sink.
type Sink struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func NewSink(cfg Config, logger zerolog.Logger) *Sink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 30
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &Sink{
		url:     cfg.WebhookURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.PerMinute)), cfg.Burst),
		logger:  logger.With().Str("component", "slack").Logger(),
	}
}

type field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type attachment struct {
	Color  string  `json:"color"`
	Title  string  `json:"title"`
	Text   string  `json:"text"`
	Fields []field `json:"fields,omitempty"`
	Footer string  `json:"footer,omitempty"`
	Ts     int64   `json:"ts"`
}

type message struct {
	Text        string       `json:"text"`
	Attachments []attachment `json:"attachments"`
}

func (s *Sink) Send(ctx context.Context, a alert.Alert) error {
	if !s.limiter.Allow() {
		s.logger.Warn().Str("title", a.Title).Msg("alert dropped by rate limit")
		return ErrThrottled
	}

	body, err := json.Marshal(format(a))
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "match-hub-alerts/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.logger.Debug().Str("title", a.Title).Int("status_code", resp.StatusCode).Msg("alert delivered")
		return nil
	}
	return fmt.Errorf("slack rejected alert with status %d: %s", resp.StatusCode, string(respBody))
}

func format(a alert.Alert) message {
	color := "warning"
	if a.Severity == alert.SeverityCritical {
		color = "danger"
	}

	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, field{Title: k, Value: a.Fields[k], Short: true})
	}

	return message{
		Text: fmt.Sprintf("[%s] %s", a.Severity, a.Title),
		Attachments: []attachment{{
			Color:  color,
			Title:  a.Title,
			Text:   a.Message,
			Fields: fields,
			Footer: a.Source,
			Ts:     a.At.Unix(),
		}},
	}
}
