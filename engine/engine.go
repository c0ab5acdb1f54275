// Package engine is the entry point to the tournament structure engine.
//
// Every operation takes the tournament aggregate, works on a private copy and
// writes the copy back only when it succeeds, so a rejected call never leaves
// a half-applied change behind. The engine is synchronous and does no I/O;
// callers serialize writers per tournament.
package engine

import (
	"time"

	"github.com/MichaelPain/FutHaxball-sub001/brackets"
	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
	"github.com/MichaelPain/FutHaxball-sub001/results"
	"github.com/MichaelPain/FutHaxball-sub001/stages"
	"github.com/MichaelPain/FutHaxball-sub001/standings"
)

type options struct {
	scoring               models.ScoringTable
	seeding               brackets.SeedingPolicy
	placement             brackets.Placement
	allowDirectCompletion bool
	now                   func() time.Time
}

type Option func(*options)

func WithScoring(s models.ScoringTable) Option {
	return func(o *options) { o.scoring = s }
}

func WithSeeding(p brackets.SeedingPolicy) Option {
	return func(o *options) { o.seeding = p }
}

func WithPlacement(p brackets.Placement) Option {
	return func(o *options) { o.placement = p }
}

// WithDirectCompletion lets results be reported for matches that were never started.
func WithDirectCompletion(allow bool) Option {
	return func(o *options) { o.allowDirectCompletion = allow }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type Engine struct {
	calc        *standings.Calculator
	processor   *results.Processor
	coordinator *stages.Coordinator
	now         func() time.Time
}

func New(opts ...Option) *Engine {
	o := options{
		scoring:   models.DefaultScoring,
		seeding:   brackets.AsGiven{},
		placement: brackets.PlacementFold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	calc := standings.NewCalculator(o.scoring)
	return &Engine{
		calc:      calc,
		processor: results.NewProcessor(o.allowDirectCompletion, o.now),
		coordinator: stages.NewCoordinator(
			brackets.NewRegistry(o.placement),
			o.seeding,
			stages.NewQualifierSelector(calc),
			o.now,
		),
		now: o.now,
	}
}

func (e *Engine) mutate(t *models.Tournament, fn func(work *models.Tournament) error) error {
	if t == nil {
		return errs.Validation("no tournament given")
	}
	work := t.Clone()
	if err := fn(work); err != nil {
		return err
	}
	work.UpdatedAt = e.now().UTC()
	*t = *work
	return nil
}

// GenerateStage builds and activates the stage with the given order.
func (e *Engine) GenerateStage(t *models.Tournament, order int) (*models.Stage, error) {
	var stage *models.Stage
	err := e.mutate(t, func(work *models.Tournament) error {
		var err error
		stage, err = e.coordinator.StartStage(work, order)
		return err
	})
	return stage, err
}

// ApplyMatchResult records a result. An empty winnerID reports a draw.
func (e *Engine) ApplyMatchResult(t *models.Tournament, matchID string, scores []int, winnerID string) (*results.Outcome, error) {
	var out *results.Outcome
	err := e.mutate(t, func(work *models.Tournament) error {
		stage, err := e.activeStageOf(work, matchID)
		if err != nil {
			return err
		}
		out, err = e.processor.Apply(stage, work.ParticipantIndex(), matchID, results.Result{Scores: scores, WinnerID: winnerID})
		return err
	})
	return out, err
}

func (e *Engine) StartMatch(t *models.Tournament, matchID string) (*models.Match, error) {
	var m *models.Match
	err := e.mutate(t, func(work *models.Tournament) error {
		stage, err := e.activeStageOf(work, matchID)
		if err != nil {
			return err
		}
		m, err = e.processor.Start(stage, matchID)
		return err
	})
	return m, err
}

func (e *Engine) CancelMatch(t *models.Tournament, matchID string) (*results.Outcome, error) {
	var out *results.Outcome
	err := e.mutate(t, func(work *models.Tournament) error {
		stage, err := e.activeStageOf(work, matchID)
		if err != nil {
			return err
		}
		out, err = e.processor.Cancel(stage, matchID)
		return err
	})
	return out, err
}

func (e *Engine) activeStageOf(t *models.Tournament, matchID string) (*models.Stage, error) {
	if t.Status != models.StatusActive {
		return nil, errs.State("tournament %q is %s", t.ID, t.Status)
	}
	stage, _ := t.MatchByID(matchID)
	if stage == nil {
		return nil, errs.NotFound("match %q not found", matchID)
	}
	return stage, nil
}

// ComputeStandings ranks the stage's entrants from its completed matches.
func (e *Engine) ComputeStandings(stage *models.Stage) []models.Standing {
	if stage == nil {
		return nil
	}
	return e.calc.Calculate(stage.Entrants, stage.Matches)
}

// CompleteStage closes the stage and returns its qualifiers.
func (e *Engine) CompleteStage(t *models.Tournament, stageID string) (*stages.Completion, error) {
	var done *stages.Completion
	err := e.mutate(t, func(work *models.Tournament) error {
		var err error
		done, err = e.coordinator.CompleteStage(work, stageID)
		return err
	})
	return done, err
}

// AdvanceTournament completes the active stage and starts the next one, or
// completes the tournament after its last stage.
func (e *Engine) AdvanceTournament(t *models.Tournament) (*stages.Completion, *models.Stage, error) {
	var (
		done    *stages.Completion
		started *models.Stage
	)
	err := e.mutate(t, func(work *models.Tournament) error {
		var err error
		done, started, err = e.coordinator.Advance(work)
		return err
	})
	return done, started, err
}
