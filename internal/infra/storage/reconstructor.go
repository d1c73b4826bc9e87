package storage

import (
	"context"
	"fmt"
	"sort"
)

// Reconstructor rebuilds match summaries from the event ledger. It backs the
// history view and the replay endpoint, and is handy for auditing a match.
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new match reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// MatchSummary is the state of a match folded from its events.
type MatchSummary struct {
	MatchID     string         `json:"match_id"`
	Mode        string         `json:"mode"`
	Result      string         `json:"result"`
	Reason      string         `json:"reason"`
	Duration    float64        `json:"duration"`
	Mischief    int            `json:"mischief"`
	AlertAt     float64        `json:"alert_at"` // Match time of ALERT_STARTED, -1 if never
	Captures    int            `json:"captures"`
	Escapes     int            `json:"escapes"`
	Groomed     int            `json:"groomed"`
	Caged       int            `json:"caged"`
	ToolsStolen int            `json:"tools_stolen"`
	Knockbacks  int            `json:"knockbacks"`
	SkillUses   map[string]int `json:"skill_uses"`
	MischiefBy  map[string]int `json:"mischief_by"`
	Events      int            `json:"events"`
}

// TimelineEntry is one line of a readable match recap.
type TimelineEntry struct {
	Tick      int64   `json:"tick"`
	MatchTime float64 `json:"match_time"`
	EventType string  `json:"event_type"`
	Summary   string  `json:"summary"`
	Impact    string  `json:"impact"` // "GROOMER", "PETS", "NEUTRAL"
}

// Summarize folds every stored event of matchID.
func (r *Reconstructor) Summarize(ctx context.Context, matchID string) (*MatchSummary, error) {
	events, err := r.eventRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for match: %w", err)
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}

	s := &MatchSummary{
		MatchID:    matchID,
		AlertAt:    -1,
		SkillUses:  make(map[string]int),
		MischiefBy: make(map[string]int),
		Events:     len(events),
	}
	for _, e := range events {
		r.applyEvent(s, e)
	}
	return s, nil
}

// Timeline returns the notable events of a match as readable lines.
// Bookkeeping events (state changes, cooldowns, expiries) are left out.
func (r *Reconstructor) Timeline(ctx context.Context, matchID string) ([]TimelineEntry, error) {
	events, err := r.eventRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var out []TimelineEntry
	for _, e := range events {
		summary := r.summarizeEvent(e)
		if summary == "" {
			continue
		}
		out = append(out, TimelineEntry{
			Tick:      e.Tick,
			MatchTime: e.MatchTime,
			EventType: e.EventType,
			Summary:   summary,
			Impact:    r.determineImpact(e),
		})
	}
	return out, nil
}

func (r *Reconstructor) applyEvent(s *MatchSummary, e EventRecord) {
	switch e.EventType {
	case "MATCH_STARTED":
		s.Mode = str(e.Payload, "mode")
	case "MATCH_ENDED":
		s.Result = str(e.Payload, "result")
		s.Reason = str(e.Payload, "reason")
		s.Duration = num(e.Payload, "duration")
		s.Mischief = int(num(e.Payload, "mischief"))
	case "MATCH_ABORTED":
		s.Result = "Aborted"
		s.Duration = num(e.Payload, "duration")
	case "CAPTURE_SUCCEEDED":
		s.Captures++
	case "PET_ESCAPED":
		s.Escapes++
	case "PET_GROOMED":
		s.Groomed++
	case "CAGE_STORED":
		s.Caged++
	case "TOOL_STOLEN":
		s.ToolsStolen++
	case "KNOCKBACK":
		s.Knockbacks++
	case "SKILL_ACTIVATED":
		s.SkillUses[str(e.Payload, "skill")]++
	case "MISCHIEF_ADDED":
		s.Mischief = int(num(e.Payload, "value"))
		s.MischiefBy[e.ActorID] += int(num(e.Payload, "amount"))
	case "ALERT_STARTED":
		if s.AlertAt < 0 {
			s.AlertAt = e.MatchTime
		}
	}
}

// summarizeEvent creates a human-readable summary, or "" for bookkeeping.
func (r *Reconstructor) summarizeEvent(e EventRecord) string {
	switch e.EventType {
	case "MATCH_STARTED":
		return fmt.Sprintf("Match started in %s mode with %d pets", str(e.Payload, "mode"), int(num(e.Payload, "pet_count")))
	case "MATCH_ENDED":
		return fmt.Sprintf("%s (%s)", str(e.Payload, "result"), str(e.Payload, "reason"))
	case "MATCH_ABORTED":
		return "Match aborted"
	case "CAPTURE_SUCCEEDED":
		return fmt.Sprintf("Groomer caught %s", e.TargetID)
	case "PET_ESCAPED":
		return fmt.Sprintf("%s escaped (%s)", e.ActorID, str(e.Payload, "reason"))
	case "GROOMING_STARTED":
		return fmt.Sprintf("%s put on %s", e.ActorID, e.TargetID)
	case "GROOMING_ABORTED":
		return fmt.Sprintf("Grooming of %s interrupted", e.ActorID)
	case "PET_GROOMED":
		return fmt.Sprintf("%s is groomed", e.ActorID)
	case "TOOL_STOLEN":
		return fmt.Sprintf("%s stole a tool from %s", e.ActorID, e.TargetID)
	case "CAGE_STORED":
		return fmt.Sprintf("%s locked in the cage", e.ActorID)
	case "CAGE_RELEASED":
		return fmt.Sprintf("%s left the cage (%s)", e.ActorID, str(e.Payload, "reason"))
	case "SKILL_ACTIVATED":
		if hit, _ := e.Payload["hit_groomer"].(bool); hit {
			return fmt.Sprintf("%s used %s on the Groomer", e.ActorID, str(e.Payload, "skill"))
		}
		return fmt.Sprintf("%s used %s", e.ActorID, str(e.Payload, "skill"))
	case "NET_HIT":
		return fmt.Sprintf("Net hit %s", e.TargetID)
	case "LEASH_BROKEN":
		return fmt.Sprintf("%s broke the leash", e.TargetID)
	case "MISCHIEF_ADDED":
		return fmt.Sprintf("+%d mischief from %s (%s)", int(num(e.Payload, "amount")), e.ActorID, str(e.Payload, "cause"))
	case "ALERT_STARTED":
		return "Alert! The Groomer speeds up"
	case "KNOCKBACK":
		return fmt.Sprintf("%s bumped the Groomer", e.ActorID)
	default:
		return ""
	}
}

// determineImpact tells which side an event favours.
func (r *Reconstructor) determineImpact(e EventRecord) string {
	switch e.EventType {
	case "CAPTURE_SUCCEEDED", "PET_GROOMED", "CAGE_STORED", "NET_HIT":
		return "GROOMER"
	case "PET_ESCAPED", "GROOMING_ABORTED", "TOOL_STOLEN", "MISCHIEF_ADDED", "ALERT_STARTED", "LEASH_BROKEN", "KNOCKBACK":
		return "PETS"
	case "MATCH_ENDED":
		if str(e.Payload, "result") == "GroomerWin" {
			return "GROOMER"
		}
		return "PETS"
	default:
		return "NEUTRAL"
	}
}

// TopMischiefMakers returns the actors of s ordered by mischief caused.
func (s *MatchSummary) TopMischiefMakers() []string {
	ids := make([]string, 0, len(s.MischiefBy))
	for id := range s.MischiefBy {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if s.MischiefBy[ids[i]] != s.MischiefBy[ids[j]] {
			return s.MischiefBy[ids[i]] > s.MischiefBy[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func str(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

func num(m map[string]interface{}, key string) float64 {
	v, _ := m[key].(float64)
	return v
}
