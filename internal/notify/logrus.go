package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var _ Sink = (*LogSink)(nil)

// LogSink writes notifications to the service log. Used when no delivery
// transport is configured, and in tests.
type LogSink struct {
}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (l *LogSink) Notify(ctx context.Context, userID uuid.UUID, kind string, payload map[string]string) error {
	logrus.WithFields(logrus.Fields{
		"user_id": userID.String(),
		"kind":    kind,
		"payload": payload,
	}).Info("notification")

	return nil
}
