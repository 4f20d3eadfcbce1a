package scenario

import (
	"context"
	"log/slog"

	"github.com/vietddude/faultline/internal/core/clock"
	"github.com/vietddude/faultline/internal/core/config"
	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/resilience"
)

// Result is the engine state after a step.
type Result struct {
	Step    string
	Elapsed string
	Stats   domain.Stats
}

// Runner drives a Session through a script on simulated time.
type Runner struct {
	Session *Session
	Engine  *resilience.Engine
	Clock   *clock.Fake
}

// NewRunner builds an engine over a fresh session with the given regions.
func NewRunner(cfg resilience.Config, regions []config.RegionConfig, presenter resilience.Presenter, log *slog.Logger) (*Runner, error) {
	s := NewSession()
	fc := clock.NewFake(clock.New().Now())

	e := resilience.New(resilience.Options{
		Config:    cfg,
		Clock:     fc,
		Surface:   s.Surface,
		Presenter: presenter,
		Reinit:    s.Reinit,
		Logger:    log,
	})

	for _, rc := range regions {
		region, err := rc.EngineRegion()
		if err != nil {
			e.Close()
			return nil, err
		}
		if err := e.RegisterRegion(rc.Name, region); err != nil {
			e.Close()
			return nil, err
		}
	}

	return &Runner{Session: s, Engine: e, Clock: fc}, nil
}

// Run executes steps in order, calling observe after each.
func (r *Runner) Run(ctx context.Context, steps []Step, observe func(Result)) {
	start := r.Clock.Now()
	r.Engine.Start(ctx)
	defer r.Engine.Close()

	for _, step := range steps {
		if step.Act != nil {
			step.Act(ctx, r.Session, r.Engine)
		}
		if step.Wait > 0 {
			r.Clock.Advance(step.Wait)
		}
		if observe != nil {
			observe(Result{
				Step:    step.Name,
				Elapsed: r.Clock.Now().Sub(start).String(),
				Stats:   r.Engine.GetErrorStats(),
			})
		}
	}
}
