package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/groomer"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/platform/metrics"
	"github.com/MRamiBalles/PetGrooming/internal/skills"
)

// Engine is the match context. It owns every subsystem of one match and is
// driven by Tick from a single goroutine.
type Engine struct {
	cfg      *config.Config
	eventLog *events.EventLog
	logger   *logger.Logger
	metrics  *metrics.Collector
	rng      rules.Roller
	terrain  arena.Terrain
	bounds   arena.Bounds

	// Sub-systems
	roster     *Roster
	controller *MatchController
	mischief   *MischiefSystem
	alert      *AlertSystem
	capture    *CaptureSystem
	grooming   *GroomingSystem
	cage       *CageSystem
	spawner    *SpawnSystem
	behavior   *BehaviorSystem
	skills     *SkillSystem
	collisions *CollisionSystem

	// Frame state
	tick      int64
	result    *MatchResult
	teleports []Teleport
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRoller injects the random source used for every probability roll.
func WithRoller(r rules.Roller) Option {
	return func(e *Engine) { e.rng = r }
}

// WithTerrain injects the navigation capability queries.
func WithTerrain(t arena.Terrain) Option {
	return func(e *Engine) { e.terrain = t }
}

// WithMetrics records into c instead of the global collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// NewEngine wires every subsystem to eventLog. The config is validated when a
// match starts.
func NewEngine(cfg *config.Config, eventLog *events.EventLog, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		eventLog: eventLog,
		logger:   log,
		metrics:  metrics.Get(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		terrain:  arena.FlatTerrain{},
		bounds: arena.Bounds{
			Min: arena.Vec2{X: cfg.Arena.Min.X, Z: cfg.Arena.Min.Z},
			Max: arena.Vec2{X: cfg.Arena.Max.X, Z: cfg.Arena.Max.Z},
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	cagePos := arena.Vec2{X: cfg.Arena.Cage.X, Z: cfg.Arena.Cage.Z}
	e.roster = NewRoster()
	e.controller = NewMatchController(eventLog, log)
	e.mischief = NewMischiefSystem(eventLog, log)
	e.alert = NewAlertSystem(eventLog, log, cfg.Mischief.GroomerSpeedBonus)
	e.capture = NewCaptureSystem(eventLog, log, cfg.Match)
	e.grooming = NewGroomingSystem(eventLog, log, cfg.Match, cfg.Arena.Stations)
	e.cage = NewCageSystem(eventLog, log, cfg.Cage, cagePos, cfg.Match.CageRange, e.bounds)
	e.spawner = NewSpawnSystem(log, cfg, e.bounds, e.terrain)
	e.behavior = NewBehaviorSystem(eventLog, log, cfg, e.bounds, e.terrain)
	e.skills = NewSkillSystem(eventLog, log)
	e.collisions = NewCollisionSystem(eventLog, log, cfg, e.mischief)

	for _, t := range []events.EventType{
		events.EventTypeMatchStarted, events.EventTypeMatchEnded, events.EventTypeMatchAborted,
		events.EventTypeCaptureSucceed, events.EventTypeCaptureFailed, events.EventTypePetEscaped,
		events.EventTypePetGroomed, events.EventTypeSkillActivated, events.EventTypeMischiefAdded,
	} {
		eventLog.Subscribe(t, e.dispatch)
	}
	return e
}

// dispatch routes recorded events to the metrics collector.
func (e *Engine) dispatch(event events.GameEvent) {
	switch event.Type {
	case events.EventTypeMatchStarted:
		e.metrics.RecordMatchStart()
	case events.EventTypeMatchEnded:
		if p, ok := event.Payload.(events.MatchPayload); ok {
			e.metrics.RecordMatchEnd(p.Result == string(PhaseGroomerWin))
		}
	case events.EventTypeMatchAborted:
		e.metrics.RecordMatchAbort()
	case events.EventTypeCaptureSucceed:
		e.metrics.RecordCapture(true)
	case events.EventTypeCaptureFailed:
		e.metrics.RecordCapture(false)
	case events.EventTypePetEscaped:
		e.metrics.RecordEscape()
	case events.EventTypePetGroomed:
		e.metrics.RecordGroomed()
	case events.EventTypeSkillActivated:
		e.metrics.RecordSkill()
	case events.EventTypeMischiefAdded:
		if p, ok := event.Payload.(events.MischiefPayload); ok {
			e.metrics.RecordMischief(p.Amount)
		}
	}
}

// StartMatch resets every subsystem and starts a match of the given mode
// (the configured default when empty). It returns the new match ID.
func (e *Engine) StartMatch(mode string) (string, error) {
	if err := e.cfg.Validate(); err != nil {
		return "", err
	}
	if mode == "" {
		mode = e.cfg.Match.DefaultMode
	}
	m, ok := e.cfg.Mode(mode)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	threshold, ok := e.cfg.ThresholdFor(len(m.Pets))
	if !ok {
		return "", fmt.Errorf("%w: no mischief threshold for %d pets", config.ErrInvalidConfig, len(m.Pets))
	}

	e.resetAll()
	e.eventLog.Reset()
	matchID := uuid.NewString()
	e.eventLog.SetStamp(events.Stamp{MatchID: matchID})

	g := groomer.New(arena.Vec2{X: e.cfg.Arena.GroomerSpawn.X, Z: e.cfg.Arena.GroomerSpawn.Z}, e.cfg.Groomer.BaseSpeed)
	e.roster.SetGroomer(g)
	set, err := skills.NewSet(g.ID, false, e.cfg.Groomer.Skills, e.cfg)
	if err != nil {
		return "", err
	}
	e.skills.Register(set)

	pets, err := e.spawner.Spawn(m.Pets, g.Position, e.rng)
	if err != nil {
		return "", err
	}
	for _, p := range pets {
		if err := e.registerPet(p); err != nil {
			return "", err
		}
	}

	e.mischief.Start(threshold, e.cfg.Mischief.AlertOffset)
	e.controller.Start(matchID, mode, e.cfg.Match.Duration, len(pets), threshold)
	return matchID, nil
}

// registerPet adds a spawned pet to the roster and gives it its skills.
func (e *Engine) registerPet(p *pet.Pet) error {
	prof, _ := e.cfg.Pet(string(p.Type))
	set, err := skills.NewSet(p.ID, true, prof.Skills, e.cfg)
	if err != nil {
		return err
	}
	e.roster.Add(p)
	e.skills.Register(set)
	return nil
}

// Abort tears the match down without a result and returns to NotStarted.
func (e *Engine) Abort() {
	if e.controller.Phase() == PhaseNotStarted {
		return
	}
	e.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeMatchAborted,
		ActorID: events.ActorSystem,
		Payload: events.MatchPayload{
			Mode:     e.controller.Mode(),
			PetCount: e.roster.Spawned(),
			Duration: e.controller.Elapsed(),
			Mischief: e.mischief.Value(),
		},
	})
	e.logger.Warn("match %s aborted", e.controller.MatchID())
	e.resetAll()
}

func (e *Engine) resetAll() {
	e.roster.Reset()
	e.controller.Reset()
	e.mischief.Reset()
	e.alert.Reset()
	e.capture.Reset()
	e.grooming.Reset()
	e.cage.Reset()
	e.behavior.Reset()
	e.skills.Reset()
	e.tick = 0
	e.result = nil
	e.teleports = nil
}

// Tick advances the match by dt seconds. Outside Playing it changes nothing
// and returns the last snapshot.
func (e *Engine) Tick(dt float64, in FrameInput) FrameOutput {
	if e.controller.Phase() != PhasePlaying {
		return FrameOutput{Tick: e.tick, HUD: e.hud(), Result: e.result}
	}
	e.tick++
	e.eventLog.SetStamp(events.Stamp{MatchID: e.controller.MatchID(), Tick: e.tick, MatchTime: e.controller.Elapsed()})
	e.teleports = nil
	e.cage.BeginFrame()
	g := e.roster.Groomer()

	// 1. External positions.
	e.applyInputs(in)

	// 2. Cooldowns and effects.
	e.skills.TickCooldowns(dt)
	e.tickEffects(dt)

	// 3. Projectiles and leashes.
	e.skills.AdvanceNets(dt, e)
	e.skills.AdvanceLeashes(dt, g.Position, e)

	// 4. Groomer input.
	velocity, speed := e.groomerInput(in)

	// 5. Pet decisions and pet skills.
	moves := e.behavior.Decide(dt, g, e.roster.Pets(), e.rng, e.skills.Leashed)
	e.petSkills()

	// 6. Struggle.
	for _, p := range e.capture.Struggle(dt, e.roster, e.rng) {
		e.escape(p, "struggle")
	}

	// 7. Collisions.
	knockbacks := e.collisions.Resolve(in.Collisions, e.roster)

	// 8. Cage.
	if id := e.cage.Tick(dt); id != "" {
		e.releaseCaged(id, "timeout")
	}

	// 9. Timer and win conditions.
	e.controller.Advance(dt)
	if e.controller.Evaluate(e.mischief.ThresholdReached(), e.roster.AllGroomed()) {
		res := e.Result()
		e.result = &res
		e.controller.Announce(res)
	}

	// 10. Output.
	e.syncCarried()
	drained := e.eventLog.Drain()
	out := FrameOutput{
		Tick:            e.tick,
		Moves:           moves,
		GroomerVelocity: velocity,
		GroomerSpeed:    speed,
		Teleports:       e.teleports,
		Knockbacks:      knockbacks,
		Triggers:        triggersFor(drained),
		HUD:             e.hud(),
		Events:          drained,
		Result:          e.result,
	}
	if g.IsCarrying() {
		anchor := e.carryAnchor()
		out.CarryAnchor = &anchor
	}
	return out
}

func (e *Engine) applyInputs(in FrameInput) {
	g := e.roster.Groomer()
	if in.GroomerPosition != nil {
		g.Position = e.bounds.Clamp(*in.GroomerPosition)
	}
	if !in.Move.IsZero() {
		g.Facing = in.Move.Normalize()
	}
	for _, pi := range in.Pets {
		p := e.roster.Pet(pi.ID)
		if p == nil || !p.IsFree() {
			continue
		}
		p.Position = pi.Position
		p.Moving = pi.Moving
	}
	e.syncCarried()
}

func (e *Engine) carryAnchor() arena.Vec2 {
	g := e.roster.Groomer()
	return g.Position.Add(g.Facing.Scale(e.cfg.Match.CarryOffset))
}

// syncCarried keeps the carried pet on the Groomer's carry anchor.
func (e *Engine) syncCarried() {
	g := e.roster.Groomer()
	if p := e.roster.Pet(g.Carried()); p != nil {
		p.Position = e.carryAnchor()
		p.Moving = false
	}
}

func (e *Engine) tickEffects(dt float64) {
	g := e.roster.Groomer()
	for _, k := range g.Effects.Tick(dt) {
		e.effectExpired(g.ID, k)
	}
	for _, p := range e.roster.Pets() {
		for _, k := range p.Effects.Tick(dt) {
			e.effectExpired(p.ID, k)
		}
	}
}

func (e *Engine) effectExpired(actorID string, k effect.Kind) {
	e.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeEffectExpired,
		ActorID: actorID,
		Payload: events.EffectPayload{Kind: string(k)},
	})
}

func (e *Engine) groomerInput(in FrameInput) (arena.Vec2, float64) {
	g := e.roster.Groomer()
	if in.Skill != nil {
		_, _ = e.ActivateSkill(in.Skill.Slot, in.Skill.Aim)
	}
	if in.Interact {
		_ = e.Interact()
	}
	if in.Release {
		_ = e.ReleaseCage()
	}
	if in.GroomKey != "" && in.GroomKey != StepNone {
		_, _ = e.PressGroomStep(in.GroomKey)
	}

	speed := rules.GroomerSpeed(g.BaseSpeed, g.Effects.SpeedMultiplier(), e.alert.Active(), e.alert.Bonus())
	move := in.Move
	if move.Length() > 1 {
		move = move.Normalize()
	}
	return move.Scale(speed), speed
}

func (e *Engine) petSkills() {
	g := e.roster.Groomer()
	for _, p := range e.roster.Pets() {
		if e.controller.Phase() != PhasePlaying {
			return
		}
		if e.skills.Leashed(p.ID) {
			continue
		}
		kind := e.behavior.ChooseSkill(p, g, e.skills.Set(p.ID), e.grooming.Stations())
		if kind == "" {
			continue
		}
		_, _ = e.skills.Activate(petCaster(p), 0, kind, arena.Vec2{}, e)
	}
}

func petCaster(p *pet.Pet) skills.Caster {
	return skills.Caster{ID: p.ID, IsPet: true, Position: p.Position, Effects: p.Effects}
}

// escape frees a held or groomed pet and drops it escape_distance from the
// Groomer, fleeing.
func (e *Engine) escape(p *pet.Pet, cause string) {
	g := e.roster.Groomer()
	if p.State() == pet.StateBeingGroomed {
		e.grooming.Abort(p, cause)
	}
	if g.Carried() == p.ID {
		g.Release()
	}
	e.capture.StopStruggle(p.ID)
	e.skills.DropLeash(p.ID)

	p.Position = rules.EscapePosition(g.Position, p.Position, e.cfg.Match.EscapeDistance)
	transition(e.eventLog, e.logger, p, pet.StateFleeing)
	e.eventLog.Append(events.GameEvent{
		Type:     events.EventTypePetEscaped,
		ActorID:  p.ID,
		TargetID: g.ID,
		Payload:  events.CapturePayload{Distance: e.cfg.Match.EscapeDistance, Reason: cause},
	})
	e.logger.Event(string(events.EventTypePetEscaped), p.ID, cause)
	e.teleport(p.ID, p.Position)
}

func (e *Engine) teleport(actorID string, pos arena.Vec2) {
	e.teleports = append(e.teleports, Teleport{ActorID: actorID, Position: pos})
}

func (e *Engine) releaseCaged(petID, reason string) {
	pos, err := e.cage.Release(e.roster.Pet(petID), reason)
	if err != nil {
		e.logger.Error("cage release of %s: %v", petID, err)
		return
	}
	e.teleport(petID, pos)
}

// Result summarizes the match so far.
func (e *Engine) Result() MatchResult {
	return MatchResult{
		MatchID:     e.controller.MatchID(),
		Mode:        e.controller.Mode(),
		Phase:       e.controller.Phase(),
		Reason:      e.controller.Reason(),
		Elapsed:     e.controller.Elapsed(),
		Mischief:    e.mischief.Value(),
		Threshold:   e.mischief.Threshold(),
		PetCount:    e.roster.Spawned(),
		PetsGroomed: e.roster.Groomed(),
	}
}

func (e *Engine) playing() error {
	if e.controller.Phase() != PhasePlaying {
		return ErrNoMatch
	}
	return nil
}

// nearestPet returns the closest active pet to pos that satisfies keep.
func (e *Engine) nearestPet(pos arena.Vec2, keep func(*pet.Pet) bool) *pet.Pet {
	var best *pet.Pet
	bestDist := math.Inf(1)
	for _, p := range e.roster.Pets() {
		if !keep(p) {
			continue
		}
		if d := arena.Distance(pos, p.Position); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}
