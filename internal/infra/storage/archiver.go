package storage

import (
	"context"
	"time"

	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// MatchArchiver stores every finished match announced on an event log.
type MatchArchiver struct {
	repo   MatchRepository
	logger *logger.Logger
}

// NewMatchArchiver creates an archiver writing to repo.
func NewMatchArchiver(repo MatchRepository, log *logger.Logger) *MatchArchiver {
	return &MatchArchiver{repo: repo, logger: log}
}

// Attach subscribes the archiver to MATCH_ENDED on el.
func (a *MatchArchiver) Attach(el *events.EventLog) {
	el.Subscribe(events.EventTypeMatchEnded, a.onMatchEnded)
}

func (a *MatchArchiver) onMatchEnded(ev events.GameEvent) {
	rec, ok := MatchFromEvent(ev)
	if !ok {
		a.logger.Warn("archiver: MATCH_ENDED %s without match payload", ev.ID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.repo.Save(ctx, rec); err != nil {
		a.logger.Error("archiver: %v", err)
		return
	}
	a.logger.Info("archived match %s (%s)", rec.MatchID, rec.Result)
}

// MatchFromEvent builds a match record from a MATCH_ENDED event.
func MatchFromEvent(ev events.GameEvent) (MatchRecord, bool) {
	var p events.MatchPayload
	switch v := ev.Payload.(type) {
	case events.MatchPayload:
		p = v
	case *events.MatchPayload:
		p = *v
	default:
		return MatchRecord{}, false
	}
	return MatchRecord{
		MatchID:     ev.MatchID,
		Mode:        p.Mode,
		Result:      p.Result,
		Reason:      p.Reason,
		Duration:    p.Duration,
		Mischief:    p.Mischief,
		Threshold:   p.Threshold,
		PetCount:    p.PetCount,
		PetsGroomed: p.PetsGroomed,
		EndedAt:     ev.Timestamp,
	}, true
}
