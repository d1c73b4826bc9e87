package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/engine"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// ErrNoResult means a run stopped before the match was decided.
var ErrNoResult = errors.New("match ended without a result")

// DefaultReactTime is the bot's delay between grooming key presses.
const DefaultReactTime = 0.3

// Runner couples an engine, the motion model and the Groomer bot.
// It is not safe for concurrent use.
type Runner struct {
	cfg    *config.Config
	logger *logger.Logger
	dt     float64

	engine *engine.Engine
	kin    *Kinematics
	bot    *GroomerBot
}

// NewRunner builds a runner whose randomness all derives from seed.
func NewRunner(cfg *config.Config, el *events.EventLog, log *logger.Logger, seed int64, opts ...engine.Option) *Runner {
	opts = append([]engine.Option{engine.WithRoller(rand.New(rand.NewSource(seed)))}, opts...)
	return &Runner{
		cfg:    cfg,
		logger: log,
		dt:     cfg.Sim.Dt,
		engine: engine.NewEngine(cfg, el, log, opts...),
		kin:    NewKinematics(cfg, rand.New(rand.NewSource(seed+1))),
		bot:    NewGroomerBot(cfg, DefaultReactTime),
	}
}

// Engine exposes the simulated match.
func (r *Runner) Engine() *engine.Engine { return r.engine }

// Kinematics exposes the motion model.
func (r *Runner) Kinematics() *Kinematics { return r.kin }

// Dt is the fixed frame length.
func (r *Runner) Dt() float64 { return r.dt }

// SetDt changes the frame length, e.g. to follow a live ticker.
func (r *Runner) SetDt(dt float64) { r.dt = dt }

// Start begins a match and lines the motion model up with the spawn.
func (r *Runner) Start(mode string) (string, error) {
	id, err := r.engine.StartMatch(mode)
	if err != nil {
		return "", err
	}
	r.kin.Reset(r.engine.Groomer().Position, r.engine.Pets())
	return id, nil
}

// Step plays one frame. A nil intent lets the bot play the Groomer.
func (r *Runner) Step(intent *Intent) engine.FrameOutput {
	in := r.kin.Input()
	if intent == nil {
		i := r.bot.Decide(r.dt, r.bot.Perceive(r.engine))
		intent = &i
	}
	intent.Fill(&in)
	out := r.engine.Tick(r.dt, in)
	r.kin.Apply(r.dt, out, r.engine.Pets())
	return out
}

// MaxFrames bounds a run: the match timer plus one frame of slack.
func (r *Runner) MaxFrames() int {
	return int(math.Ceil(r.cfg.Match.Duration/r.dt)) + 1
}

// Run plays a whole bot match. onFrame, when set, sees every frame.
func (r *Runner) Run(ctx context.Context, mode string, onFrame func(engine.FrameOutput)) (engine.MatchResult, error) {
	if _, err := r.Start(mode); err != nil {
		return engine.MatchResult{}, err
	}
	for i := 0; i < r.MaxFrames(); i++ {
		if err := ctx.Err(); err != nil {
			r.engine.Abort()
			return engine.MatchResult{}, err
		}
		out := r.Step(nil)
		if onFrame != nil {
			onFrame(out)
		}
		if out.Result != nil {
			return *out.Result, nil
		}
	}
	r.logger.Warn("sim: match %s undecided after %d frames", r.engine.MatchID(), r.MaxFrames())
	return engine.MatchResult{}, ErrNoResult
}
