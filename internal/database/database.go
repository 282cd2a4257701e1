package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mintlabs/mint-backend/internal/models"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrStoreUnavailable is returned when the backend cannot be reached or a
// read/write against it fails.
var ErrStoreUnavailable = errors.New("store unavailable")

// timestampLayout is how sample instants are persisted. It keeps nanoseconds.
const timestampLayout = time.RFC3339Nano

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		value REAL NOT NULL,
		metadata TEXT NOT NULL DEFAULT ''
	);
	`

// Session owns the single connection to the SQLite file.
type Session struct {
	db   *sql.DB
	path string
}

// Open creates a session against the database file at path.
// Parent directories are created if needed.
func Open(ctx context.Context, path string) (*Session, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, unavailable("creating database directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("opening database", err)
	}
	// One physical connection: the pragmas below are per connection and the
	// session is the only writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, unavailable("applying "+p, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, unavailable("pinging database", err)
	}

	log.Info().Str("path", path).Msg("Database session opened")
	return &Session{db: db, path: path}, nil
}

// EnsureSchema creates the users and samples tables if they are missing.
func (s *Session) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return unavailable("creating schema", err)
	}
	return nil
}

// InsertUser stores a user and returns the id assigned by the store.
func (s *Session) InsertUser(ctx context.Context, name, email string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO users(name, email) VALUES(?, ?)", name, email)
	if err != nil {
		return 0, unavailable("inserting user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("reading user id", err)
	}
	return id, nil
}

// Users returns every user in insertion order.
func (s *Session) Users(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email FROM users ORDER BY id")
	if err != nil {
		return nil, unavailable("querying users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, unavailable("scanning user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating users", err)
	}
	return users, nil
}

// InsertSample stores a sample and returns the id assigned by the store.
// The timestamp is written in UTC.
func (s *Session) InsertSample(ctx context.Context, ts time.Time, value float64, metadata string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO samples(timestamp, value, metadata) VALUES(?, ?, ?)",
		ts.UTC().Format(timestampLayout), value, metadata,
	)
	if err != nil {
		return 0, unavailable("inserting sample", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("reading sample id", err)
	}
	return id, nil
}

// Samples returns every sample in insertion order.
func (s *Session) Samples(ctx context.Context) ([]models.Sample, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, timestamp, value, metadata FROM samples ORDER BY id")
	if err != nil {
		return nil, unavailable("querying samples", err)
	}
	defer rows.Close()

	samples := []models.Sample{}
	for rows.Next() {
		var (
			sample models.Sample
			raw    string
		)
		if err := rows.Scan(&sample.ID, &raw, &sample.Value, &sample.Metadata); err != nil {
			return nil, unavailable("scanning sample", err)
		}
		ts, err := time.Parse(timestampLayout, raw)
		if err != nil {
			return nil, unavailable(fmt.Sprintf("parsing timestamp of sample %d", sample.ID), err)
		}
		sample.Timestamp = ts.UTC()
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating samples", err)
	}
	return samples, nil
}

// Path returns the file backing the session.
func (s *Session) Path() string {
	return s.path
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.db.Close()
}

func unavailable(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, step, err)
}
