// Package metrics provides observability for the grooming server and simulator.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers engine and server counters.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Match metrics
	MatchesStarted int64
	GroomerWins    int64
	PetWins        int64
	MatchesAborted int64

	// Rule metrics
	Captures         int64
	CaptureFailures  int64
	Escapes          int64
	PetsGroomed      int64
	SkillActivations int64
	MischiefTotal    int64

	// Event metrics
	EventsWritten    int64
	EventWriteLatSum int64
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = NewCollector()

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{StartTime: time.Now()}
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))
	storeMax(&c.TickLatencyMax, int64(latency))

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordMatchStart counts a started match.
func (c *Collector) RecordMatchStart() {
	atomic.AddInt64(&c.MatchesStarted, 1)
}

// RecordMatchEnd counts a finished match by winner.
func (c *Collector) RecordMatchEnd(groomerWon bool) {
	if groomerWon {
		atomic.AddInt64(&c.GroomerWins, 1)
	} else {
		atomic.AddInt64(&c.PetWins, 1)
	}
}

// RecordMatchAbort counts an aborted match.
func (c *Collector) RecordMatchAbort() {
	atomic.AddInt64(&c.MatchesAborted, 1)
}

// RecordCapture counts a capture attempt.
func (c *Collector) RecordCapture(ok bool) {
	if ok {
		atomic.AddInt64(&c.Captures, 1)
	} else {
		atomic.AddInt64(&c.CaptureFailures, 1)
	}
}

// RecordEscape counts a pet breaking free.
func (c *Collector) RecordEscape() {
	atomic.AddInt64(&c.Escapes, 1)
}

// RecordGroomed counts a finished grooming.
func (c *Collector) RecordGroomed() {
	atomic.AddInt64(&c.PetsGroomed, 1)
}

// RecordSkill counts a successful skill activation.
func (c *Collector) RecordSkill() {
	atomic.AddInt64(&c.SkillActivations, 1)
}

// RecordMischief adds to the mischief total across matches.
func (c *Collector) RecordMischief(amount int) {
	atomic.AddInt64(&c.MischiefTotal, int64(amount))
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))
	storeMax(&c.EventWriteLatMax, int64(latency))

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

func storeMax(addr *int64, v int64) {
	for {
		cur := atomic.LoadInt64(addr)
		if v <= cur || atomic.CompareAndSwapInt64(addr, cur, v) {
			return
		}
	}
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	var tickAvg, eventAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"matches": map[string]interface{}{
			"started":      atomic.LoadInt64(&c.MatchesStarted),
			"groomer_wins": atomic.LoadInt64(&c.GroomerWins),
			"pet_wins":     atomic.LoadInt64(&c.PetWins),
			"aborted":      atomic.LoadInt64(&c.MatchesAborted),
		},

		"rules": map[string]interface{}{
			"captures":          atomic.LoadInt64(&c.Captures),
			"capture_failures":  atomic.LoadInt64(&c.CaptureFailures),
			"escapes":           atomic.LoadInt64(&c.Escapes),
			"pets_groomed":      atomic.LoadInt64(&c.PetsGroomed),
			"skill_activations": atomic.LoadInt64(&c.SkillActivations),
			"mischief_total":    atomic.LoadInt64(&c.MischiefTotal),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint of the global collector.
func Handler() http.HandlerFunc {
	return collector.Handler()
}

// PrometheusHandler returns the global collector in Prometheus text format.
func PrometheusHandler() http.HandlerFunc {
	return collector.PrometheusHandler()
}

// Handler serves the JSON snapshot.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler serves the counters in Prometheus text format.
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		metric := func(name, kind, help string, value any) {
			fmt.Fprintf(w, "# HELP %s %s\n", name, help)
			fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
			fmt.Fprintf(w, "%s %v\n\n", name, value)
		}

		metric("groom_tick_count", "counter", "Total tick cycles", atomic.LoadInt64(&c.TickCount))
		metric("groom_tick_latency_max_ms", "gauge", "Maximum tick latency",
			fmt.Sprintf("%.2f", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6))

		fmt.Fprintf(w, "# HELP groom_matches_total Finished matches by result\n")
		fmt.Fprintf(w, "# TYPE groom_matches_total counter\n")
		fmt.Fprintf(w, "groom_matches_total{result=\"groomer_win\"} %d\n", atomic.LoadInt64(&c.GroomerWins))
		fmt.Fprintf(w, "groom_matches_total{result=\"pet_win\"} %d\n", atomic.LoadInt64(&c.PetWins))
		fmt.Fprintf(w, "groom_matches_total{result=\"aborted\"} %d\n\n", atomic.LoadInt64(&c.MatchesAborted))

		metric("groom_captures_total", "counter", "Successful captures", atomic.LoadInt64(&c.Captures))
		metric("groom_escapes_total", "counter", "Pets that struggled free", atomic.LoadInt64(&c.Escapes))
		metric("groom_pets_groomed_total", "counter", "Pets fully groomed", atomic.LoadInt64(&c.PetsGroomed))
		metric("groom_skill_activations_total", "counter", "Successful skill activations", atomic.LoadInt64(&c.SkillActivations))
		metric("groom_mischief_total", "counter", "Mischief points accrued", atomic.LoadInt64(&c.MischiefTotal))

		metric("groom_events_written", "counter", "Total events written", atomic.LoadInt64(&c.EventsWritten))
		metric("groom_event_write_errors", "counter", "Total event write errors", atomic.LoadInt64(&c.EventWriteErrors))

		metric("groom_ws_connections", "gauge", "Active WebSocket connections", atomic.LoadInt64(&c.WSConnectionsActive))
		fmt.Fprintf(w, "# HELP groom_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE groom_ws_messages_total counter\n")
		fmt.Fprintf(w, "groom_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "groom_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
