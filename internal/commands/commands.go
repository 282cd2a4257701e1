// Package commands translates caller-facing arguments into data client
// operations. Timestamps cross this boundary as milliseconds since the Unix
// epoch and leave it as RFC3339 text.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/mintlabs/mint-backend/internal/models"
	"github.com/mintlabs/mint-backend/internal/services"
)

// Commands holds one adapter per data operation.
type Commands struct {
	client services.DataClientProvider
}

// New creates the adapters over client.
func New(client services.DataClientProvider) *Commands {
	return &Commands{client: client}
}

// InitializeDB ensures the schema exists.
func (c *Commands) InitializeDB(ctx context.Context) (string, error) {
	if err := c.client.Initialize(ctx); err != nil {
		return "", fmt.Errorf("failed to initialize database: %w", err)
	}
	return "Database initialized", nil
}

// AddUser stores a user.
func (c *Commands) AddUser(ctx context.Context, name, email string) (string, error) {
	user, err := c.client.AddUser(ctx, name, email)
	if err != nil {
		return "", fmt.Errorf("failed to add user: %w", err)
	}
	return fmt.Sprintf("User %s added with id %d", user.Name, user.ID), nil
}

// ListUsers returns every user.
func (c *Commands) ListUsers(ctx context.Context) ([]models.UserRow, error) {
	users, err := c.client.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	rows := make([]models.UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, u.Row())
	}
	return rows, nil
}

// AddSample stores a sample whose timestamp is given in epoch milliseconds.
func (c *Commands) AddSample(ctx context.Context, timestampMs int64, value float64, metadata string) (string, error) {
	ts, err := services.FromMillis(timestampMs)
	if err != nil {
		return "", fmt.Errorf("failed to add sample: %w", err)
	}
	sample, err := c.client.AddSample(ctx, ts, value, metadata)
	if err != nil {
		return "", fmt.Errorf("failed to add sample: %w", err)
	}
	return fmt.Sprintf("Sample %d recorded at %s", sample.ID, sample.Timestamp.Format(time.RFC3339Nano)), nil
}

// ListSamples returns every sample with RFC3339 timestamps.
func (c *Commands) ListSamples(ctx context.Context) ([]models.SampleRow, error) {
	samples, err := c.client.ListSamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	rows := make([]models.SampleRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, s.Row())
	}
	return rows, nil
}
