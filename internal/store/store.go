// Package store provides SQLite persistence for room messages and read
// receipts, with cursor pagination in both directions and a live
// subscription fan-out for appends.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/parleychat/parley/internal/chat"
)

const defaultSubscribeBuffer = 256

// Store errors.
var (
	ErrInvalidMessage = errors.New("invalid message")
	ErrNoReceipt      = errors.New("no read receipt")
)

// Store is a SQLite-backed message store. Safe for concurrent use.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	subs    map[int]subscriber
	nextSub int
}

type subscriber struct {
	roomID string
	ch     chan chat.Message
}

// Open opens (creating if needed) the database at path.
func Open(path string, busyTimeoutMs int) (*Store, error) {
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = 5000
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path, busyTimeoutMs)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open message database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to message database: %w", err)
	}

	s := &Store{db: db, subs: make(map[int]subscriber)}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database and all live subscriptions.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.mu.Lock()
	for id, sub := range s.subs {
		close(sub.ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			event_id TEXT NOT NULL,
			room_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS messages_room_idx ON messages(room_id, seq)`,
		`CREATE TABLE IF NOT EXISTS read_receipts (
			room_id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize message schema: %w", err)
		}
	}
	return nil
}

// Append stores a message, assigns its sequence, and fans it out to live
// subscribers of its room.
func (s *Store) Append(ctx context.Context, msg *chat.Message) error {
	if msg == nil || !msg.Valid() {
		return ErrInvalidMessage
	}
	if msg.Time.IsZero() {
		msg.Time = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, event_id, room_id, sender, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.EventID, msg.RoomID, msg.Sender, msg.Body, msg.Time.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read message seq: %w", err)
	}
	msg.Seq = seq

	s.fanOut(*msg)
	return nil
}

func (s *Store) fanOut(msg chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.roomID != msg.RoomID {
			continue
		}
		// Slow consumers drop messages rather than block appends; the
		// timeline recovers via forward pagination.
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// Subscribe streams new messages for a room and returns a cancel function.
func (s *Store) Subscribe(roomID string) (<-chan chat.Message, func()) {
	ch := make(chan chat.Message, defaultSubscribeBuffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = subscriber{roomID: roomID, ch: ch}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			close(sub.ch)
			delete(s.subs, id)
		}
	}
	return ch, cancel
}

// Recent returns the newest messages of a room in ascending sequence
// order, and whether older messages exist beyond them.
func (s *Store) Recent(ctx context.Context, roomID string, limit int) ([]chat.Message, bool, error) {
	if limit <= 0 {
		return nil, false, fmt.Errorf("limit must be positive")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, event_id, room_id, sender, body, created_at
		FROM messages WHERE room_id = ?
		ORDER BY seq DESC LIMIT ?
	`, roomID, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query recent messages: %w", err)
	}
	return collectDescending(rows, limit)
}

// PageBefore returns up to limit messages older than the cursor sequence,
// in ascending order, and whether still older messages remain.
func (s *Store) PageBefore(ctx context.Context, roomID string, before int64, limit int) ([]chat.Message, bool, error) {
	if limit <= 0 {
		return nil, false, fmt.Errorf("limit must be positive")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, event_id, room_id, sender, body, created_at
		FROM messages WHERE room_id = ? AND seq < ?
		ORDER BY seq DESC LIMIT ?
	`, roomID, before, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query older messages: %w", err)
	}
	return collectDescending(rows, limit)
}

// PageAfter returns up to limit messages newer than the cursor sequence,
// in ascending order, and whether still newer messages remain.
func (s *Store) PageAfter(ctx context.Context, roomID string, after int64, limit int) ([]chat.Message, bool, error) {
	if limit <= 0 {
		return nil, false, fmt.Errorf("limit must be positive")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, event_id, room_id, sender, body, created_at
		FROM messages WHERE room_id = ? AND seq > ?
		ORDER BY seq ASC LIMIT ?
	`, roomID, after, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query newer messages: %w", err)
	}
	defer rows.Close()

	out := make([]chat.Message, 0, limit)
	hasMore := false
	for rows.Next() {
		if len(out) == limit {
			hasMore = true
			break
		}
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, false, err
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read newer messages: %w", err)
	}
	return out, hasMore, nil
}

// CountRoom returns the number of messages stored for a room.
func (s *Store) CountRoom(ctx context.Context, roomID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE room_id = ?`, roomID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// SaveReadReceipt upserts the room's read marker.
func (s *Store) SaveReadReceipt(ctx context.Context, roomID, eventID string) error {
	if roomID == "" || eventID == "" {
		return fmt.Errorf("room and event are required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO read_receipts (room_id, event_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(room_id) DO UPDATE SET event_id = excluded.event_id, updated_at = excluded.updated_at
	`, roomID, eventID, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save read receipt: %w", err)
	}
	return nil
}

// ReadReceipt returns the room's read marker, or ErrNoReceipt.
func (s *Store) ReadReceipt(ctx context.Context, roomID string) (string, error) {
	var eventID string
	err := s.db.QueryRowContext(ctx, `SELECT event_id FROM read_receipts WHERE room_id = ?`, roomID).Scan(&eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoReceipt
	}
	if err != nil {
		return "", fmt.Errorf("failed to read receipt: %w", err)
	}
	return eventID, nil
}

// collectDescending reverses a seq-DESC result set into ascending order,
// using the limit+1 row to detect whether more remain.
func collectDescending(rows *sql.Rows, limit int) ([]chat.Message, bool, error) {
	defer rows.Close()

	buf := make([]chat.Message, 0, limit)
	hasMore := false
	for rows.Next() {
		if len(buf) == limit {
			hasMore = true
			break
		}
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, false, err
		}
		buf = append(buf, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read messages: %w", err)
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf, hasMore, nil
}

func scanMessage(rows *sql.Rows) (chat.Message, error) {
	var msg chat.Message
	var createdAt string
	if err := rows.Scan(&msg.Seq, &msg.ID, &msg.EventID, &msg.RoomID, &msg.Sender, &msg.Body, &createdAt); err != nil {
		return chat.Message{}, fmt.Errorf("failed to scan message: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		msg.Time = t
	}
	return msg, nil
}
