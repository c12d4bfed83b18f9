// Package alert defines the operational alerting channel.
package alert

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_sink.go -package=mocks . Sink

import (
	"context"
	"time"
)

// Severity of an operational alert
type Severity string

const (
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Alert is a message for the operators
type Alert struct {
	Severity Severity          `json:"severity"`
	Source   string            `json:"source"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	At       time.Time         `json:"at"`
}

// New creates an alert stamped with the current time
func New(severity Severity, source, title, message string) Alert {
	return Alert{
		Severity: severity,
		Source:   source,
		Title:    title,
		Message:  message,
		At:       time.Now().UTC(),
	}
}

// With returns a copy of a with an extra field
func (a Alert) With(key, value string) Alert {
	fields := make(map[string]string, len(a.Fields)+1)
	for k, v := range a.Fields {
		fields[k] = v
	}
	fields[key] = value
	a.Fields = fields
	return a
}

// Sink delivers alerts. Implementations must not block callers for long.
type Sink interface {
	Send(ctx context.Context, a Alert) error
}

// Nop discards every alert
type Nop struct{}

func (Nop) Send(context.Context, Alert) error { return nil }
