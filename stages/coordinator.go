// Package stages drives a tournament through its stages.
package stages

import (
	"fmt"
	"time"

	"github.com/MichaelPain/FutHaxball-sub001/brackets"
	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

type Coordinator struct {
	registry *brackets.Registry
	seeding  brackets.SeedingPolicy
	selector *QualifierSelector
	now      func() time.Time
}

func NewCoordinator(registry *brackets.Registry, seeding brackets.SeedingPolicy, selector *QualifierSelector, now func() time.Time) *Coordinator {
	if seeding == nil {
		seeding = brackets.AsGiven{}
	}
	if now == nil {
		now = time.Now
	}
	return &Coordinator{registry: registry, seeding: seeding, selector: selector, now: now}
}

// Completion describes the outcome of closing a stage.
type Completion struct {
	Stage               *models.Stage
	Qualifiers          []string
	TournamentCompleted bool
}

// EnsureStages gives a tournament without explicit stages its implicit single stage.
func EnsureStages(t *models.Tournament) error {
	if len(t.Stages) > 0 {
		t.SortStages()
		return nil
	}
	if t.Format == models.FormatMultiStage {
		return errs.Validation("tournament %q is multi_stage but has no stages", t.ID)
	}
	t.Stages = []*models.Stage{{
		ID:     fmt.Sprintf("%s-stage-1", t.ID),
		Format: t.Format,
		Order:  1,
		Status: models.StageStatusPending,
	}}
	return nil
}

// StartStage generates the matches of the stage with the given order and activates it.
// The first stage draws from the checked-in pool; every later one from the
// qualifiers of the stage before it, which must be completed.
func (c *Coordinator) StartStage(t *models.Tournament, order int) (*models.Stage, error) {
	if err := EnsureStages(t); err != nil {
		return nil, err
	}
	stage := t.StageByOrder(order)
	if stage == nil {
		return nil, errs.NotFound("tournament %q has no stage with order %d", t.ID, order)
	}
	if stage.Status != models.StageStatusPending {
		return nil, errs.State("stage %d is %s, only pending stages can start", order, stage.Status)
	}

	prev := previousStage(t, stage)
	if prev == nil {
		if t.Status != models.StatusRegistration && t.Status != models.StatusUpcoming {
			return nil, errs.State("tournament %q is %s, the first stage starts after registration", t.ID, t.Status)
		}
	} else {
		if t.Status != models.StatusActive {
			return nil, errs.State("tournament %q is %s", t.ID, t.Status)
		}
		if prev.Status != models.StageStatusCompleted {
			return nil, errs.State("stage %d cannot start while stage %d is %s", order, prev.Order, prev.Status)
		}
	}

	sources, err := c.sources(t, prev)
	if err != nil {
		return nil, err
	}

	strategy, err := c.registry.Strategy(stage.Format)
	if err != nil {
		return nil, err
	}
	ordered, rngSeed := c.draw(stage, sources)
	matches, err := strategy.Generate(brackets.GenerateParams{
		StageID:  stage.ID,
		Entrants: ordered,
		Settings: stage.Settings,
	})
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	stage.Matches = matches
	stage.Entrants = make([]string, len(ordered))
	for i, p := range ordered {
		stage.Entrants[i] = p.ID
		p.Status = models.ParticipantActive
	}
	stage.Qualifiers = nil
	stage.RNGSeed = rngSeed
	stage.Status = models.StageStatusActive
	stage.StartedAt = &now
	t.Status = models.StatusActive
	return stage, nil
}

func (c *Coordinator) draw(stage *models.Stage, pool []*models.Participant) ([]*models.Participant, int64) {
	if d, ok := c.seeding.(brackets.Drawer); ok {
		return d.Draw(stage.ID, pool)
	}
	return c.seeding.Order(pool), 0
}

func (c *Coordinator) sources(t *models.Tournament, prev *models.Stage) ([]*models.Participant, error) {
	if prev == nil {
		pool := t.ParticipantsWithStatus(models.ParticipantCheckedIn)
		if len(pool) == 0 {
			return nil, errs.Validation("no checked-in participants")
		}
		if len(pool) < t.MinParticipants {
			return nil, errs.Validation("%d checked-in participants, at least %d required", len(pool), t.MinParticipants)
		}
		return pool, nil
	}

	idx := t.ParticipantIndex()
	pool := make([]*models.Participant, 0, len(prev.Qualifiers))
	for _, id := range prev.Qualifiers {
		p := idx[id]
		if p == nil {
			return nil, errs.NotFound("qualifier %q is not a participant", id)
		}
		if p.Status == models.ParticipantDisqualified {
			continue
		}
		pool = append(pool, p)
	}
	if len(pool) == 0 {
		return nil, errs.Validation("stage %d produced no qualifiers", prev.Order)
	}
	return pool, nil
}

// CompleteStage closes an active stage whose matches are all resolved, stores its
// qualifiers and, when it is the last stage, completes the tournament.
func (c *Coordinator) CompleteStage(t *models.Tournament, stageID string) (*Completion, error) {
	stage := t.StageByID(stageID)
	if stage == nil {
		return nil, errs.NotFound("stage %q not found", stageID)
	}
	if stage.Status != models.StageStatusActive {
		return nil, errs.State("stage %q is %s, only active stages can complete", stage.ID, stage.Status)
	}
	if !stage.Resolved() {
		return nil, errs.State("stage %q still has unresolved matches", stage.ID)
	}

	next := t.NextStage(stage)
	if stage.Terminal() && next != nil {
		return nil, errs.Validation("stage %q has no qualification count but stage %d follows it", stage.ID, next.Order)
	}

	pool := t.ParticipantIndex()
	count := stage.QualificationCount
	if stage.Terminal() {
		count = 1
	}
	qualifiers, err := c.selector.Select(stage, pool, count)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	stage.Qualifiers = qualifiers
	stage.Status = models.StageStatusCompleted
	stage.CompletedAt = &now

	qualified := make(map[string]bool, len(qualifiers))
	for _, id := range qualifiers {
		qualified[id] = true
	}
	for _, id := range stage.Entrants {
		if p := pool[id]; p != nil && !qualified[id] && p.Status == models.ParticipantActive {
			p.Status = models.ParticipantEliminated
		}
	}

	done := &Completion{Stage: stage, Qualifiers: qualifiers}
	if next == nil {
		completeTournament(t, qualifiers)
		done.TournamentCompleted = true
	}
	return done, nil
}

func completeTournament(t *models.Tournament, ranked []string) {
	t.Status = models.StatusCompleted
	if len(ranked) > 0 {
		t.Winner = ranked[0]
	}
	for _, p := range t.Participants {
		switch {
		case p.ID == t.Winner:
			p.Status = models.ParticipantWinner
		case p.Status == models.ParticipantActive:
			p.Status = models.ParticipantEliminated
		}
	}
}

// Advance completes the active stage and starts the next one. With no stage
// active it starts the first pending stage whose predecessor is completed.
func (c *Coordinator) Advance(t *models.Tournament) (*Completion, *models.Stage, error) {
	if err := EnsureStages(t); err != nil {
		return nil, nil, err
	}
	active := t.ActiveStage()
	if active == nil {
		next := startable(t)
		if next == nil {
			return nil, nil, errs.State("tournament %q has no active stage and no stage ready to start", t.ID)
		}
		started, err := c.StartStage(t, next.Order)
		return nil, started, err
	}

	done, err := c.CompleteStage(t, active.ID)
	if err != nil {
		return nil, nil, err
	}
	if done.TournamentCompleted {
		return done, nil, nil
	}
	started, err := c.StartStage(t, t.NextStage(active).Order)
	if err != nil {
		return nil, nil, err
	}
	return done, started, nil
}

// Standings ranks a stage's entrants with the configured scoring table.
func (c *Coordinator) Standings(stage *models.Stage) []models.Standing {
	return c.selector.Standings(stage)
}

// startable returns the lowest-order pending stage that has no predecessor or
// follows a completed one. Stages must be sorted.
func startable(t *models.Tournament) *models.Stage {
	for _, s := range t.Stages {
		if s.Status != models.StageStatusPending {
			continue
		}
		prev := previousStage(t, s)
		if prev == nil || prev.Status == models.StageStatusCompleted {
			return s
		}
		return nil
	}
	return nil
}

func previousStage(t *models.Tournament, s *models.Stage) *models.Stage {
	var prev *models.Stage
	for _, candidate := range t.Stages {
		if candidate.Order >= s.Order {
			continue
		}
		if prev == nil || candidate.Order > prev.Order {
			prev = candidate
		}
	}
	return prev
}
