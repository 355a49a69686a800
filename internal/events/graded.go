package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// GradedEvent announces that a submission finished grading.
type GradedEvent struct {
	SubmissionID uint      `json:"submission_id"`
	StudentID    uint      `json:"student_id"`
	Lab          string    `json:"lab"`
	Total        float64   `json:"total"`
	MaxPossible  float64   `json:"max_possible"`
	Late         bool      `json:"late"`
	GradedAt     time.Time `json:"graded_at"`
}

// Publisher delivers grade events to downstream consumers.
type Publisher interface {
	PublishGraded(ctx context.Context, event GradedEvent) error
}

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes events as JSON on a single subject.
type NATSPublisher struct {
	conn    Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher wraps a connection. A nil conn or empty subject yields a
// publisher that drops events.
func NewNATSPublisher(conn Conn, subject string, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "grade_events").Logger(),
	}
}

// PublishGraded implements Publisher.
func (p *NATSPublisher) PublishGraded(ctx context.Context, event GradedEvent) error {
	if p == nil || p.conn == nil || p.subject == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode graded event: %w", err)
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish graded event: %w", err)
	}

	p.logger.Debug().
		Uint("submission_id", event.SubmissionID).
		Str("subject", p.subject).
		Msg("graded event published")
	return nil
}

// Connect dials NATS. An empty url disables eventing and returns nil.
func Connect(url, name string) (*nats.Conn, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}
