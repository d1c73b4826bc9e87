package engine

import (
	"context"
	"sync"
	"time"

	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/platform/metrics"
)

// DefaultTickRate is one frame at 60 Hz.
const DefaultTickRate = time.Second / 60

// Ticker drives a fixed-timestep loop in real time. Every frame advances the
// simulation by exactly rate, however late the wall clock fires.
type Ticker struct {
	rate   time.Duration
	step   func(dt float64)
	logger *logger.Logger

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewTicker creates a loop calling step every rate. A non-positive rate uses
// DefaultTickRate.
func NewTicker(rate time.Duration, step func(dt float64), log *logger.Logger) *Ticker {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return &Ticker{
		rate:     rate,
		step:     step,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// Rate returns the frame duration.
func (t *Ticker) Rate() time.Duration { return t.rate }

// Start runs the loop until ctx is cancelled or Stop is called. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Info("ticker started at %v per frame", t.rate)

	ticker := time.NewTicker(t.rate)
	defer ticker.Stop()

	dt := t.rate.Seconds()
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("ticker stopped by context")
			return
		case <-t.stopChan:
			t.logger.Info("ticker stopped manually")
			return
		case <-ticker.C:
			start := time.Now()
			t.step(dt)
			metrics.Get().RecordTick(time.Since(start))
		}
	}
}

// Stop halts the loop. It is safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
}
