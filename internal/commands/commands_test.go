package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mintlabs/mint-backend/internal/database"
	"github.com/mintlabs/mint-backend/internal/models"
	"github.com/mintlabs/mint-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommands(t *testing.T) *Commands {
	t.Helper()
	session, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "mint.db"))
	require.NoError(t, err)
	client := services.NewDataClient(session)
	t.Cleanup(func() { client.Close() })
	return New(client)
}

// failingClient reports the store as unavailable for every operation.
type failingClient struct{}

func (failingClient) Initialize(context.Context) error {
	return fmt.Errorf("initialize: %w: disk gone", services.ErrStoreUnavailable)
}

func (failingClient) AddUser(context.Context, string, string) (models.User, error) {
	return models.User{}, fmt.Errorf("add user: %w: disk gone", services.ErrStoreUnavailable)
}

func (failingClient) ListUsers(context.Context) ([]models.User, error) {
	return nil, fmt.Errorf("list users: %w: disk gone", services.ErrStoreUnavailable)
}

func (failingClient) AddSample(context.Context, time.Time, float64, string) (models.Sample, error) {
	return models.Sample{}, fmt.Errorf("add sample: %w: disk gone", services.ErrStoreUnavailable)
}

func (failingClient) ListSamples(context.Context) ([]models.Sample, error) {
	return nil, fmt.Errorf("list samples: %w: disk gone", services.ErrStoreUnavailable)
}

func TestInitializeDB(t *testing.T) {
	c := newTestCommands(t)
	ctx := context.Background()

	msg, err := c.InitializeDB(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Database initialized", msg)

	msg, err = c.InitializeDB(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Database initialized", msg)
}

func TestAddAndListUsers(t *testing.T) {
	c := newTestCommands(t)
	ctx := context.Background()
	_, err := c.InitializeDB(ctx)
	require.NoError(t, err)

	msg, err := c.AddUser(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "User Ada added with id 1", msg)

	rows, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.UserRow{{ID: 1, Name: "Ada", Email: "ada@example.com"}}, rows)
}

func TestAddUser_EmptyName(t *testing.T) {
	c := newTestCommands(t)
	ctx := context.Background()
	_, err := c.InitializeDB(ctx)
	require.NoError(t, err)

	_, err = c.AddUser(ctx, "", "a@b.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "name is required")

	rows, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAddAndListSamples(t *testing.T) {
	c := newTestCommands(t)
	ctx := context.Background()
	_, err := c.InitializeDB(ctx)
	require.NoError(t, err)

	msg, err := c.AddSample(ctx, 1700000000000, 42.5, "ch1")
	require.NoError(t, err)
	assert.Equal(t, "Sample 1 recorded at 2023-11-14T22:13:20Z", msg)

	rows, err := c.ListSamples(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.SampleRow{
		ID:        1,
		Timestamp: "2023-11-14T22:13:20Z",
		Value:     42.5,
		Metadata:  "ch1",
	}, rows[0])
}

func TestAddSample_MillisecondsSurvive(t *testing.T) {
	c := newTestCommands(t)
	ctx := context.Background()
	_, err := c.InitializeDB(ctx)
	require.NoError(t, err)

	_, err = c.AddSample(ctx, 1700000000123, 1, "")
	require.NoError(t, err)

	rows, err := c.ListSamples(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2023-11-14T22:13:20.123Z", rows[0].Timestamp)

	parsed, err := time.Parse(time.RFC3339Nano, rows[0].Timestamp)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), services.ToMillis(parsed))
}

func TestAddSample_InvalidTimestamp(t *testing.T) {
	c := newTestCommands(t)
	ctx := context.Background()
	_, err := c.InitializeDB(ctx)
	require.NoError(t, err)

	_, err = c.AddSample(ctx, -5, 1, "neg")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrInvalidTimestamp)
	assert.Contains(t, err.Error(), "failed to add sample")

	rows, err := c.ListSamples(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStoreUnavailableIsSurfaced(t *testing.T) {
	c := New(failingClient{})
	ctx := context.Background()

	_, err := c.InitializeDB(ctx)
	assert.True(t, errors.Is(err, services.ErrStoreUnavailable))

	_, err = c.AddUser(ctx, "a", "b")
	assert.ErrorIs(t, err, services.ErrStoreUnavailable)

	_, err = c.ListUsers(ctx)
	assert.ErrorIs(t, err, services.ErrStoreUnavailable)

	_, err = c.AddSample(ctx, 1, 1, "")
	assert.ErrorIs(t, err, services.ErrStoreUnavailable)

	_, err = c.ListSamples(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}
