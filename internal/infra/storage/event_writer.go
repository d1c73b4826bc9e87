package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/platform/metrics"
)

// ErrWriterClosed is returned by Append after Close.
var ErrWriterClosed = errors.New("event writer closed")

const (
	defaultWriterBuffer = 1024
	writerBatchSize     = 128
	writerFlushInterval = 250 * time.Millisecond
)

// EventWriter persists events off the tick goroutine. It satisfies
// events.EventPersister: Append only queues, a background goroutine writes
// batches to the repository.
type EventWriter struct {
	repo    EventRepository
	logger  *logger.Logger
	metrics *metrics.Collector

	mu     sync.RWMutex
	closed bool
	queue  chan EventRecord
	done   chan struct{}
}

var _ events.EventPersister = (*EventWriter)(nil)

// NewEventWriter starts a writer over repo. buffer <= 0 uses the default.
func NewEventWriter(repo EventRepository, log *logger.Logger, buffer int) *EventWriter {
	if buffer <= 0 {
		buffer = defaultWriterBuffer
	}
	w := &EventWriter{
		repo:    repo,
		logger:  log,
		metrics: metrics.Get(),
		queue:   make(chan EventRecord, buffer),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Append queues one event. It blocks only while the buffer is full.
func (w *EventWriter) Append(event events.GameEvent) error {
	rec, err := ToRecord(event)
	if err != nil {
		return err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWriterClosed
	}
	w.queue <- rec
	return nil
}

// Close stops accepting events and waits until the queue is written.
func (w *EventWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()
	<-w.done
}

func (w *EventWriter) run() {
	defer close(w.done)
	ticker := time.NewTicker(writerFlushInterval)
	defer ticker.Stop()

	batch := make([]EventRecord, 0, writerBatchSize)
	for {
		select {
		case rec, ok := <-w.queue:
			if !ok {
				w.flush(batch)
				return
			}
			batch = append(batch, rec)
			if len(batch) >= writerBatchSize {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (w *EventWriter) flush(batch []EventRecord) {
	if len(batch) == 0 {
		return
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := w.repo.Append(ctx, batch...)
	w.metrics.RecordEventWrite(time.Since(start), err)
	if err != nil {
		w.logger.Error("event writer: dropped %d events: %v", len(batch), err)
	}
}

// ToRecord converts a log event into its stored form.
func ToRecord(event events.GameEvent) (EventRecord, error) {
	rec := EventRecord{
		ID:        event.ID,
		MatchID:   event.MatchID,
		Tick:      event.Tick,
		MatchTime: event.MatchTime,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		TargetID:  event.TargetID,
	}
	if event.Payload == nil {
		return rec, nil
	}
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return rec, err
	}
	// Non-object payloads (plain strings, numbers) are wrapped.
	if err := json.Unmarshal(payloadBytes, &rec.Payload); err != nil {
		rec.Payload = map[string]interface{}{"value": json.RawMessage(payloadBytes)}
	}
	return rec, nil
}
