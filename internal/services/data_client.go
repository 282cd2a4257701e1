package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mintlabs/mint-backend/internal/database"
	"github.com/mintlabs/mint-backend/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// DataClientProvider defines the operations every caller uses against the store.
type DataClientProvider interface {
	Initialize(ctx context.Context) error
	AddUser(ctx context.Context, name, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	AddSample(ctx context.Context, ts time.Time, value float64, metadata string) (models.Sample, error)
	ListSamples(ctx context.Context) ([]models.Sample, error)
}

// sharedSession is the guarded state every DataClient handle points at.
type sharedSession struct {
	session     *database.Session
	sem         *semaphore.Weighted
	initialized bool // guarded by sem

	mu   sync.Mutex
	refs int
}

// DataClient is a handle on the process-wide store session. Handles made with
// Clone share the same session and lock; the session is closed when the last
// handle is closed.
type DataClient struct {
	shared *sharedSession
	closed atomic.Bool
}

// NewDataClient wraps session in the first handle.
func NewDataClient(session *database.Session) *DataClient {
	return &DataClient{
		shared: &sharedSession{
			session: session,
			sem:     semaphore.NewWeighted(1),
			refs:    1,
		},
	}
}

// Clone returns a new handle on the same session. Cloning a closed handle, or
// any handle once the session is gone, yields a handle that is already closed.
func (c *DataClient) Clone() *DataClient {
	c.shared.mu.Lock()
	defer c.shared.mu.Unlock()
	clone := &DataClient{shared: c.shared}
	if c.closed.Load() || c.shared.refs == 0 {
		clone.closed.Store(true)
		return clone
	}
	c.shared.refs++
	return clone
}

// Close releases this handle. The session is closed with the last handle.
func (c *DataClient) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.shared.mu.Lock()
	c.shared.refs--
	last := c.shared.refs == 0
	c.shared.mu.Unlock()

	if !last {
		return nil
	}

	// Wait for any in-flight operation before closing the connection.
	if err := c.shared.sem.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer c.shared.sem.Release(1)
	log.Info().Str("path", c.shared.session.Path()).Msg("Closing database session")
	return c.shared.session.Close()
}

// withSession runs fn with exclusive access to the session. Waiting for the
// lock honours ctx; once held, fn runs to completion even if ctx is cancelled.
func (c *DataClient) withSession(ctx context.Context, op string, fn func(ctx context.Context, s *database.Session) error) error {
	if c.closed.Load() {
		return fmt.Errorf("%s: %w: client handle is closed", op, ErrStoreUnavailable)
	}
	if err := c.shared.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%s: waiting for store: %w", op, err)
	}
	defer c.shared.sem.Release(1)

	if err := fn(context.WithoutCancel(ctx), c.shared.session); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Initialize creates the schema. Only the first successful call touches the
// backend; later calls return nil.
func (c *DataClient) Initialize(ctx context.Context) error {
	return c.withSession(ctx, "initialize", func(ctx context.Context, s *database.Session) error {
		if c.shared.initialized {
			return nil
		}
		if err := s.EnsureSchema(ctx); err != nil {
			return err
		}
		c.shared.initialized = true
		log.Info().Msg("Database schema ensured")
		return nil
	})
}

// AddUser validates and stores a new user.
func (c *DataClient) AddUser(ctx context.Context, name, email string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return models.User{}, fmt.Errorf("add user: %w: name is required", ErrValidation)
	}
	if email == "" {
		return models.User{}, fmt.Errorf("add user: %w: email is required", ErrValidation)
	}

	user := models.User{Name: name, Email: email}
	err := c.withSession(ctx, "add user", func(ctx context.Context, s *database.Session) error {
		id, err := s.InsertUser(ctx, name, email)
		if err != nil {
			return err
		}
		user.ID = id
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ListUsers returns every user in insertion order.
func (c *DataClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.withSession(ctx, "list users", func(ctx context.Context, s *database.Session) error {
		var err error
		users, err = s.Users(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// AddSample normalizes ts to UTC and stores the sample. Invalid instants and
// non-finite values are rejected before anything is written.
func (c *DataClient) AddSample(ctx context.Context, ts time.Time, value float64, metadata string) (models.Sample, error) {
	if err := checkInstant(ts); err != nil {
		return models.Sample{}, fmt.Errorf("add sample: %w", err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return models.Sample{}, fmt.Errorf("add sample: %w: value must be finite, got %v", ErrValidation, value)
	}

	sample := models.Sample{Timestamp: ts.UTC(), Value: value, Metadata: metadata}
	err := c.withSession(ctx, "add sample", func(ctx context.Context, s *database.Session) error {
		id, err := s.InsertSample(ctx, sample.Timestamp, sample.Value, sample.Metadata)
		if err != nil {
			return err
		}
		sample.ID = id
		return nil
	})
	if err != nil {
		return models.Sample{}, err
	}
	return sample, nil
}

// ListSamples returns every sample in insertion order.
func (c *DataClient) ListSamples(ctx context.Context) ([]models.Sample, error) {
	var samples []models.Sample
	err := c.withSession(ctx, "list samples", func(ctx context.Context, s *database.Session) error {
		var err error
		samples, err = s.Samples(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}
