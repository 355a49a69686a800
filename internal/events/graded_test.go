package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lab-grader/internal/events"
)

type recordingConn struct {
	subject string
	data    []byte
	err     error
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	c.subject = subject
	c.data = data
	return c.err
}

func TestNATSPublisher_PublishGraded(t *testing.T) {
	conn := &recordingConn{}
	publisher := events.NewNATSPublisher(conn, "gema.weblab.graded", zerolog.Nop())

	gradedAt := time.Date(2026, time.January, 20, 8, 0, 0, 0, time.UTC)
	err := publisher.PublishGraded(context.Background(), events.GradedEvent{
		SubmissionID: 12,
		StudentID:    4,
		Lab:          "3-2-More-CSS-main",
		Total:        88.5,
		MaxPossible:  100,
		GradedAt:     gradedAt,
	})
	require.NoError(t, err)
	require.Equal(t, "gema.weblab.graded", conn.subject)

	var decoded events.GradedEvent
	require.NoError(t, json.Unmarshal(conn.data, &decoded))
	require.Equal(t, uint(12), decoded.SubmissionID)
	require.Equal(t, 88.5, decoded.Total)
}

func TestNATSPublisher_Errors(t *testing.T) {
	conn := &recordingConn{err: errors.New("connection closed")}
	publisher := events.NewNATSPublisher(conn, "subject", zerolog.Nop())

	err := publisher.PublishGraded(context.Background(), events.GradedEvent{})
	require.ErrorContains(t, err, "connection closed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, publisher.PublishGraded(ctx, events.GradedEvent{}), context.Canceled)
}

func TestNATSPublisher_Disabled(t *testing.T) {
	require.NoError(t, events.NewNATSPublisher(nil, "subject", zerolog.Nop()).PublishGraded(context.Background(), events.GradedEvent{}))
	require.NoError(t, events.NewNATSPublisher(&recordingConn{}, "", zerolog.Nop()).PublishGraded(context.Background(), events.GradedEvent{}))

	conn, err := events.Connect("", "grader")
	require.NoError(t, err)
	require.Nil(t, conn)
}
