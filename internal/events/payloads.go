package events

// SkillPayload accompanies SKILL_ACTIVATED, SKILL_FAILED and SKILL_READY.
type SkillPayload struct {
	Skill      string `json:"skill"`
	HitGroomer bool   `json:"hit_groomer,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// EffectPayload accompanies EFFECT_APPLIED and EFFECT_EXPIRED.
type EffectPayload struct {
	Kind      string  `json:"kind"`
	Magnitude float64 `json:"magnitude,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Source    string  `json:"source,omitempty"`
}

// StateChangePayload accompanies PET_STATE_CHANGED.
type StateChangePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CapturePayload accompanies capture and escape events.
type CapturePayload struct {
	Distance float64 `json:"distance"`
	Reason   string  `json:"reason,omitempty"`
	Chance   float64 `json:"chance,omitempty"`
}

// MischiefPayload accompanies MISCHIEF_ADDED and ALERT_STARTED.
type MischiefPayload struct {
	Amount    int    `json:"amount"`
	Value     int    `json:"value"`
	Threshold int    `json:"threshold"`
	Cause     string `json:"cause"`
}

// GroomingPayload accompanies grooming events and TOOL_STOLEN.
type GroomingPayload struct {
	StationID     string `json:"station_id"`
	Step          string `json:"step,omitempty"`
	StepsDone     int    `json:"steps_done"`
	StepsRequired int    `json:"steps_required"`
	Reason        string `json:"reason,omitempty"`
}

// CagePayload accompanies cage events.
type CagePayload struct {
	CageID    string  `json:"cage_id"`
	Remaining float64 `json:"remaining"`
	Reason    string  `json:"reason,omitempty"`
}

// MatchPayload accompanies MATCH_STARTED, MATCH_ENDED and MATCH_ABORTED.
type MatchPayload struct {
	Mode        string  `json:"mode"`
	PetCount    int     `json:"pet_count"`
	Threshold   int     `json:"threshold"`
	Duration    float64 `json:"duration"`
	Result      string  `json:"result,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Mischief    int     `json:"mischief"`
	PetsGroomed int     `json:"pets_groomed"`
}

// KnockbackPayload accompanies KNOCKBACK.
type KnockbackPayload struct {
	ImpulseX float64 `json:"impulse_x"`
	ImpulseZ float64 `json:"impulse_z"`
}
