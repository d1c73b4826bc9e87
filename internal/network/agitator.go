package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/engine"
)

// AgitatorConfig describes a load run against a running server.
type AgitatorConfig struct {
	URL      string
	Clients  int
	Interval time.Duration
	// Stagger is the pause between client connects.
	Stagger time.Duration
	Seed    int64
}

// AgitatorStats counts what a load run saw.
type AgitatorStats struct {
	Connected int64 `json:"connected"`
	Sent      int64 `json:"sent"`
	Received  int64 `json:"received"`
	Rejected  int64 `json:"rejected"`
	Errors    int64 `json:"errors"`

	mu        sync.Mutex
	latencies []time.Duration
}

// Latency returns min, mean and max write latency.
func (s *AgitatorStats) Latency() (lo, mean, hi time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.latencies) == 0 {
		return 0, 0, 0
	}
	var total time.Duration
	for _, l := range s.latencies {
		total += l
	}
	return slices.Min(s.latencies), total / time.Duration(len(s.latencies)), slices.Max(s.latencies)
}

// ErrorRate is errors plus rejected commands over commands sent.
func (s *AgitatorStats) ErrorRate() float64 {
	sent := atomic.LoadInt64(&s.Sent)
	if sent == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&s.Errors)+atomic.LoadInt64(&s.Rejected)) / float64(sent)
}

// Agitate connects cfg.Clients websocket players that spam random commands
// until ctx ends. progress, when set, is called every few seconds.
func Agitate(ctx context.Context, cfg AgitatorConfig, progress func(*AgitatorStats)) (*AgitatorStats, error) {
	if cfg.Clients < 1 {
		return nil, fmt.Errorf("agitator needs at least one client, got %d", cfg.Clients)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("agitator interval must be positive, got %v", cfg.Interval)
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("bad server url: %w", err)
	}

	stats := &AgitatorStats{}
	var wg sync.WaitGroup
	for i := 0; i < cfg.Clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			agitateClient(ctx, cfg, rand.New(rand.NewSource(cfg.Seed+int64(id))), stats)
		}(i)

		if cfg.Stagger > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.Stagger):
			}
		}
	}

	if progress != nil {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		for {
			select {
			case <-done:
				return stats, nil
			case <-ticker.C:
				progress(stats)
			}
		}
	}
	wg.Wait()
	return stats, nil
}

func agitateClient(ctx context.Context, cfg AgitatorConfig, rng *rand.Rand, stats *AgitatorStats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()
	atomic.AddInt64(&stats.Connected, 1)

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			// The write pump may batch several messages into one frame.
			for _, line := range bytes.Split(data, newline) {
				var msg ServerMessage
				if json.Unmarshal(line, &msg) != nil {
					continue
				}
				atomic.AddInt64(&stats.Received, 1)
				if msg.Type == MsgError {
					atomic.AddInt64(&stats.Rejected, 1)
				}
			}
		}
	}()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			start := time.Now()
			conn.SetWriteDeadline(start.Add(writeWait))
			if err := conn.WriteJSON(randomCommand(rng)); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}
			atomic.AddInt64(&stats.Sent, 1)
			stats.mu.Lock()
			stats.latencies = append(stats.latencies, time.Since(start))
			stats.mu.Unlock()
		}
	}
}

var groomKeys = []engine.Step{engine.StepBrush, engine.StepClean, engine.StepDry}

// randomCommand favours movement, the way a real player's input stream does.
func randomCommand(rng *rand.Rand) PlayerCommand {
	switch n := rng.Intn(10); {
	case n < 5:
		return PlayerCommand{Type: CmdMove, Move: &arena.Vec2{X: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}}
	case n < 7:
		return PlayerCommand{Type: CmdInteract}
	case n < 8:
		return PlayerCommand{Type: CmdSkill, Slot: rng.Intn(3)}
	case n < 9:
		return PlayerCommand{Type: CmdGroom, Key: groomKeys[rng.Intn(len(groomKeys))]}
	default:
		return PlayerCommand{Type: CmdRelease}
	}
}
