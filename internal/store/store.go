package store

import (
	"context"
	"errors"
)

var (
	// ErrUsernameTaken is returned when a rename targets a name that already
	// posted in the room.
	ErrUsernameTaken = errors.New("username already exists in this room")
	// ErrNoMessages is returned when a rename matches zero rows.
	ErrNoMessages = errors.New("no messages found for this username in this room")
)

// Message represents a persisted chat message. Date and Time are stamped
// from the UTC clock at insert time.
type Message struct {
	ID       int64  `json:"id"`
	Room     string `json:"room"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// RoomCount is a room with its message count, used for leaderboards.
type RoomCount struct {
	Room         string `json:"room"`
	MessageCount int64  `json:"message_count"`
}

// UserCount is a username with its message count.
type UserCount struct {
	Username     string `json:"username"`
	MessageCount int64  `json:"message_count"`
}

// Stats is a point-in-time aggregation over the whole message table.
// Rooms and users are derived from distinct column values, never stored.
type Stats struct {
	TotalMessages    int64
	TotalRooms       int64
	TotalUsers       int64
	MessagesToday    int64
	ActiveUsersToday int64
	RecentMessages7d int64
	AvgPerRoom       float64
	AvgPerUser       float64
	TopRooms         []RoomCount
	TopUsers         []UserCount
}

// GaugeCounts carries the counters refreshed opportunistically after writes.
type GaugeCounts struct {
	Rooms         int64
	Users         int64
	MessagesToday int64
}

// MessageStore handles message persistence.
type MessageStore interface {
	// Post stamps the current UTC date/time, inserts the message and
	// returns the created row including its assigned ID.
	Post(ctx context.Context, room, username, message string) (*Message, error)

	// List returns all messages for a room in insertion order.
	// A room with no messages yields an empty slice, not an error.
	List(ctx context.Context, room string) ([]*Message, error)

	// Clear deletes all messages for a room and returns the number removed.
	Clear(ctx context.Context, room string) (int64, error)

	// RenameUser updates every message in room authored by oldName to carry
	// newName, inside a single transaction. Returns ErrUsernameTaken if
	// newName already posted in the room, ErrNoMessages if nothing matched.
	// On success the returned count is always >= 1.
	RenameUser(ctx context.Context, room, oldName, newName string) (int64, error)
}

// StatsStore computes derived aggregations at call time.
type StatsStore interface {
	// Stats recomputes the full aggregation snapshot.
	Stats(ctx context.Context) (*Stats, error)

	// GaugeCounts returns the room/user/today counters.
	GaugeCounts(ctx context.Context) (*GaugeCounts, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	MessageStore
	StatsStore

	// Ping verifies store reachability with a trivial round trip.
	Ping(ctx context.Context) error

	// Close closes the underlying database connection.
	Close() error
}
