package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/chatapp/chatapp-server/internal/store"
)

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

const topN = 5

// SQLStore implements store.Store on database/sql, for SQLite or MySQL.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// New opens a database handle for the given driver and DSN. The connection
// is not verified here: first contact is deferred to EnsureSchema/Ping so
// the server can come up before the database does.
func New(driver, dsn string) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if driver == DriverSQLite {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite works best with a single connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	return &SQLStore{db: db, driver: driver}, nil
}

// NewWithSetup opens a store, runs a setup function and verifies the
// connection. Useful for tests to apply schema up front.
func NewWithSetup(driver, dsn string, setup func(*sql.DB) error) (*SQLStore, error) {
	s, err := New(driver, dsn)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := s.db.Ping(); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping verifies store reachability with a trivial round trip.
func (s *SQLStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// EnsureSchema creates the chats table and its indexes if absent.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	var schema string
	switch s.driver {
	case DriverMySQL:
		schema = `
			CREATE TABLE IF NOT EXISTS chats (
				id       INT AUTO_INCREMENT PRIMARY KEY,
				room     VARCHAR(50)  NOT NULL,
				date     VARCHAR(10)  NOT NULL,
				time     VARCHAR(8)   NOT NULL,
				username VARCHAR(50)  NOT NULL,
				message  TEXT         NOT NULL
			)
		`
	default:
		schema = `
			CREATE TABLE IF NOT EXISTS chats (
				id       INTEGER PRIMARY KEY AUTOINCREMENT,
				room     TEXT NOT NULL,
				date     TEXT NOT NULL,
				time     TEXT NOT NULL,
				username TEXT NOT NULL,
				message  TEXT NOT NULL
			)
		`
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create chats table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_chats_room ON chats(room)`,
		`CREATE INDEX IF NOT EXISTS idx_chats_date ON chats(date)`,
	}
	for _, idx := range indexes {
		if _, err := s.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// ==== MessageStore implementation ====

// Post stamps the current UTC date/time, inserts the message and returns
// the created row including its assigned ID.
func (s *SQLStore) Post(ctx context.Context, room, username, message string) (*store.Message, error) {
	now := time.Now().UTC()
	msg := &store.Message{
		Room:     room,
		Date:     now.Format("2006-01-02"),
		Time:     now.Format("15:04:05"),
		Username: username,
		Message:  message,
	}

	query := `
		INSERT INTO chats (room, date, time, username, message)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.Room, msg.Date, msg.Time, msg.Username, msg.Message)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return msg, nil
}

// List returns all messages for a room in insertion order.
func (s *SQLStore) List(ctx context.Context, room string) ([]*store.Message, error) {
	query := `
		SELECT id, room, date, time, username, message
		FROM chats
		WHERE room = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, room)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := []*store.Message{}
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.Room, &msg.Date, &msg.Time, &msg.Username, &msg.Message); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// Clear deletes all messages for a room and returns the number removed.
func (s *SQLStore) Clear(ctx context.Context, room string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE room = ?`, room)
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return deleted, nil
}

// RenameUser updates every message in room authored by oldName to carry
// newName. The conflict check and the bulk update run in one transaction;
// a fault on any step rolls the whole rename back.
func (s *SQLStore) RenameUser(ctx context.Context, room, oldName, newName string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Conflict check runs before the update: renaming onto an existing name
	// would merge identities, which is rejected rather than merged.
	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM chats WHERE room = ? AND username = ? LIMIT 1`,
		room, newName,
	).Scan(&exists)
	switch {
	case err == nil:
		return 0, store.ErrUsernameTaken
	case err != sql.ErrNoRows:
		return 0, fmt.Errorf("check username: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE chats SET username = ? WHERE room = ? AND username = ?`,
		newName, room, oldName,
	)
	if err != nil {
		return 0, fmt.Errorf("update username: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	if updated == 0 {
		// A zero-row rename is a no-op failure, not a silent success.
		return 0, store.ErrNoMessages
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return updated, nil
}

// ==== StatsStore implementation ====

// Stats recomputes the aggregation snapshot from current table state.
func (s *SQLStore) Stats(ctx context.Context) (*store.Stats, error) {
	now := time.Now().UTC()
	today := now.Format("2006-01-02")
	// Inclusive 7-day window: today and the six days before it.
	weekAgo := now.AddDate(0, 0, -6).Format("2006-01-02")

	stats := &store.Stats{
		TopRooms: []store.RoomCount{},
		TopUsers: []store.UserCount{},
	}

	scalars := []struct {
		query string
		args  []interface{}
		dest  *int64
	}{
		{`SELECT COUNT(id) FROM chats`, nil, &stats.TotalMessages},
		{`SELECT COUNT(DISTINCT room) FROM chats`, nil, &stats.TotalRooms},
		{`SELECT COUNT(DISTINCT username) FROM chats`, nil, &stats.TotalUsers},
		{`SELECT COUNT(id) FROM chats WHERE date = ?`, []interface{}{today}, &stats.MessagesToday},
		{`SELECT COUNT(DISTINCT username) FROM chats WHERE date = ?`, []interface{}{today}, &stats.ActiveUsersToday},
		{`SELECT COUNT(id) FROM chats WHERE date >= ?`, []interface{}{weekAgo}, &stats.RecentMessages7d},
	}
	for _, sc := range scalars {
		if err := s.db.QueryRowContext(ctx, sc.query, sc.args...).Scan(sc.dest); err != nil {
			return nil, fmt.Errorf("query stats: %w", err)
		}
	}

	// max(...,1) guards the empty-store division, yielding 0.0 averages.
	stats.AvgPerRoom = round2(float64(stats.TotalMessages) / float64(max(stats.TotalRooms, 1)))
	stats.AvgPerUser = round2(float64(stats.TotalMessages) / float64(max(stats.TotalUsers, 1)))

	rows, err := s.db.QueryContext(ctx, `
		SELECT room, COUNT(id) AS message_count
		FROM chats
		GROUP BY room
		ORDER BY message_count DESC
		LIMIT ?
	`, topN)
	if err != nil {
		return nil, fmt.Errorf("query top rooms: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rc store.RoomCount
		if err := rows.Scan(&rc.Room, &rc.MessageCount); err != nil {
			return nil, fmt.Errorf("scan top room: %w", err)
		}
		stats.TopRooms = append(stats.TopRooms, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top rooms: %w", err)
	}

	userRows, err := s.db.QueryContext(ctx, `
		SELECT username, COUNT(id) AS message_count
		FROM chats
		GROUP BY username
		ORDER BY message_count DESC
		LIMIT ?
	`, topN)
	if err != nil {
		return nil, fmt.Errorf("query top users: %w", err)
	}
	defer userRows.Close()
	for userRows.Next() {
		var uc store.UserCount
		if err := userRows.Scan(&uc.Username, &uc.MessageCount); err != nil {
			return nil, fmt.Errorf("scan top user: %w", err)
		}
		stats.TopUsers = append(stats.TopUsers, uc)
	}
	if err := userRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top users: %w", err)
	}

	return stats, nil
}

// GaugeCounts returns the room/user/today counters refreshed after writes.
func (s *SQLStore) GaugeCounts(ctx context.Context) (*store.GaugeCounts, error) {
	today := time.Now().UTC().Format("2006-01-02")

	var counts store.GaugeCounts
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT room) FROM chats`).Scan(&counts.Rooms); err != nil {
		return nil, fmt.Errorf("query room count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT username) FROM chats`).Scan(&counts.Users); err != nil {
		return nil, fmt.Errorf("query user count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM chats WHERE date = ?`, today).Scan(&counts.MessagesToday); err != nil {
		return nil, fmt.Errorf("query today count: %w", err)
	}

	return &counts, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ensure SQLStore implements store.Store
var _ store.Store = (*SQLStore)(nil)
