// Package listener runs the background task that ingests arriving readings
// into the store.
package listener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mintlabs/mint-backend/internal/models"
	"github.com/mintlabs/mint-backend/internal/services"
	"github.com/mintlabs/mint-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// ErrStopped is returned by Submit once the listener has been stopped.
var ErrStopped = errors.New("listener stopped")

// opTimeout bounds a single ingestion, including the wait for the store lock.
const opTimeout = 10 * time.Second

// Publisher fans stored samples out to live subscribers.
type Publisher interface {
	Publish(topic string, message []byte)
}

// Listener drains a queue of readings into the data client, one at a time.
// A failed reading is logged and counted; it never stops the loop.
type Listener struct {
	client    services.DataClientProvider
	publisher Publisher
	readings  chan models.Reading

	// sending is held for reading by every in-flight send. Run takes it for
	// writing after done closes, so no send can land behind the final drain.
	sending  sync.RWMutex
	done     chan struct{}
	stopOnce sync.Once
	finished chan struct{}

	ingested atomic.Int64
	failed   atomic.Int64
}

// New creates a listener with a queue of queueSize readings. publisher may be nil.
func New(client services.DataClientProvider, publisher Publisher, queueSize int) *Listener {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Listener{
		client:    client,
		publisher: publisher,
		readings:  make(chan models.Reading, queueSize),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
	}
}

// Submit queues readings for ingestion, blocking while the queue is full.
// A nil return means every reading will be handled, even if Stop follows.
func (l *Listener) Submit(ctx context.Context, readings ...models.Reading) error {
	for _, r := range readings {
		if err := l.send(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (l *Listener) send(ctx context.Context, r models.Reading) error {
	l.sending.RLock()
	defer l.sending.RUnlock()

	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.readings <- r:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes readings until Stop is called, then drains what is queued.
func (l *Listener) Run() {
	defer close(l.finished)
	log.Info().Msg("Starting background listener...")

	for {
		select {
		case <-l.done:
			// Wait out sends that raced with Stop; later ones see done.
			l.sending.Lock()
			l.sending.Unlock()
			l.drain()
			log.Info().Int64("ingested", l.ingested.Load()).Int64("failed", l.failed.Load()).Msg("Stopping background listener.")
			return
		case r := <-l.readings:
			l.handle(r)
		}
	}
}

// Stop halts the listener. Readings already queued are still stored; use
// Wait to block until that is done.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Wait blocks until Run has returned.
func (l *Listener) Wait() {
	<-l.finished
}

// Stats returns how many readings were stored and how many failed.
func (l *Listener) Stats() (ingested, failed int64) {
	return l.ingested.Load(), l.failed.Load()
}

func (l *Listener) drain() {
	for {
		select {
		case r := <-l.readings:
			l.handle(r)
		default:
			return
		}
	}
}

func (l *Listener) handle(r models.Reading) {
	sample, err := l.ingest(r)
	if err != nil {
		l.failed.Add(1)
		log.Error().Err(err).Int64("timestamp", r.Timestamp).Str("channel", r.Channel).Msg("Listener: Failed to ingest reading")
		return
	}
	l.ingested.Add(1)
	if l.publisher != nil {
		l.publisher.Publish(websocket.TopicSamples, websocket.NewSampleAddedMessage(sample.Row()))
	}
}

// ingest stores one reading. A panic inside the store call is turned into an
// error so the loop keeps running.
func (l *Listener) ingest(r models.Reading) (sample models.Sample, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while ingesting reading: %v", rec)
		}
	}()

	ts, err := services.FromMillis(r.Timestamp)
	if err != nil {
		return models.Sample{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return l.client.AddSample(ctx, ts, r.Value, r.Label())
}
