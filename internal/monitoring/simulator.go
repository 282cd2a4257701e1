package monitoring

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mintlabs/mint-backend/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Simulated signal range, in microvolts.
const (
	minValue = 10.0
	maxValue = 20.0
)

// Submitter accepts readings for ingestion.
type Submitter interface {
	Submit(ctx context.Context, readings ...models.Reading) error
}

// Simulator produces a batch of synthetic EEG readings on a cron schedule and
// hands them to the listener as if they had arrived over the network.
type Simulator struct {
	sink     Submitter
	cron     *cron.Cron
	channels []string
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

// NewSimulator creates a simulator that fires on schedule, e.g. "@every 1s".
func NewSimulator(sink Submitter, schedule string) (*Simulator, error) {
	s := &Simulator{
		sink:     sink,
		cron:     cron.New(),
		channels: []string{"1", "2", "3"},
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid simulator schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run starts the simulator and blocks until Stop. It returns once any
// in-flight tick has finished.
func (s *Simulator) Run() {
	log.Info().Msg("Starting signal simulator...")
	s.cron.Start()
	<-s.done
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopping signal simulator.")
}

// Stop halts the simulator.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Batch returns one reading per channel stamped with the current time.
func (s *Simulator) Batch() []models.Reading {
	ts := s.now().UnixMilli()
	batch := make([]models.Reading, 0, len(s.channels))
	for _, ch := range s.channels {
		batch = append(batch, models.Reading{
			Timestamp: ts,
			Channel:   ch,
			Value:     minValue + rand.Float64()*(maxValue-minValue),
		})
	}
	return batch
}

func (s *Simulator) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sink.Submit(ctx, s.Batch()...); err != nil {
		log.Warn().Err(err).Msg("Simulator: Failed to submit readings")
	}
}
