// Package sink holds terminal consumers of presence events that sit outside
// the transport path: audit logging, metrics, future integrations.
package sink

import (
	"chat-hub/contract"
	"chat-hub/domain/event"
	"context"
	"log/slog"
)

// LogSink writes every presence transition to the structured log. Useful as
// an audit trail and as a liveness signal when debugging membership issues.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Consume(_ context.Context, e event.PresenceEvent) error {
	switch evt := e.(type) {
	case event.UserJoined:
		s.log.Info("user joined room", "room", evt.RoomID, "user_id", evt.User.ID, "username", evt.User.Username)
	case event.UserLeft:
		s.log.Info("user left room", "room", evt.RoomID, "user_id", evt.User.ID, "username", evt.User.Username)
	default:
		s.log.Debug("presence event", "type", e.EventType())
	}
	return nil
}

// AsHandler adapts a sink to the synchronous dispatch chain of the room
// registry. Sink errors are logged, never propagated: a failing consumer
// must not stall presence mutations.
func AsHandler(log *slog.Logger, s contract.EventSink) event.Handler {
	return event.HandlerFunc(func(e event.PresenceEvent) {
		if err := s.Consume(context.Background(), e); err != nil {
			log.Warn("presence sink failed", "type", e.EventType(), "error", err)
		}
	})
}
