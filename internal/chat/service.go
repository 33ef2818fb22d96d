package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chatapp/chatapp-server/internal/metrics"
	"github.com/chatapp/chatapp-server/internal/store"
)

// Service provides chat operations over the message store. It owns input
// validation and transcript rendering; persistence semantics live in the
// store. After every successful write it refreshes the metrics gauges
// opportunistically; the store stays authoritative.
type Service struct {
	store   store.Store
	metrics *metrics.Metrics
	log     *zerolog.Logger
}

// NewService creates a new chat service.
func NewService(st store.Store, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	return &Service{
		store:   st,
		metrics: m,
		log:     logger,
	}
}

// Post validates and persists a new message in room.
func (s *Service) Post(ctx context.Context, room, username, message string) (*store.Message, error) {
	if username == "" || message == "" {
		return nil, ErrMissingFields
	}

	msg, err := s.store.Post(ctx, room, username, message)
	if err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}

	s.metrics.MessageSent(room, len(message))
	s.refreshGauges(ctx)

	return msg, nil
}

// Transcript renders a room's messages as one line per message in store
// order, joined by newlines. A room with no messages yields "".
func (s *Service) Transcript(ctx context.Context, room string) (string, error) {
	messages, err := s.store.List(ctx, room)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, fmt.Sprintf("[%s %s] %s: %s", msg.Date, msg.Time, msg.Username, msg.Message))
	}

	return strings.Join(lines, "\n"), nil
}

// Rename changes the author name on all of room's messages matching oldName.
// Returns the number of messages updated.
func (s *Service) Rename(ctx context.Context, room, oldName, newName string) (int64, error) {
	if oldName == "" || newName == "" {
		return 0, ErrMissingUsernames
	}
	if oldName == newName {
		return 0, ErrSameUsername
	}

	updated, err := s.store.RenameUser(ctx, room, oldName, newName)
	if err != nil {
		return 0, err
	}

	s.metrics.UsernameChanged()
	s.refreshGauges(ctx)

	return updated, nil
}

// Clear deletes all of room's messages and returns the number removed.
func (s *Service) Clear(ctx context.Context, room string) (int64, error) {
	deleted, err := s.store.Clear(ctx, room)
	if err != nil {
		return 0, fmt.Errorf("clear room: %w", err)
	}

	s.metrics.ChatCleared(room)
	s.refreshGauges(ctx)

	return deleted, nil
}

// Stats recomputes the aggregation snapshot from current store state.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}
	return stats, nil
}

// refreshGauges updates the room/user/today gauges after a write. Failures
// are logged and swallowed: gauges are derived, never a source of truth.
func (s *Service) refreshGauges(ctx context.Context) {
	counts, err := s.store.GaugeCounts(ctx)
	if err != nil {
		s.metrics.SetDatabaseConnected(false)
		s.log.Error().Err(err).Msg("failed to refresh gauges")
		return
	}

	s.metrics.SetGauges(counts.Rooms, counts.Users, counts.MessagesToday)
	s.metrics.SetDatabaseConnected(true)
}
