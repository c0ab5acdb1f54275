// Package results applies reported match outcomes to a stage.
package results

import (
	"time"

	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

type Processor struct {
	// AllowDirectCompletion accepts results for scheduled matches that were never started.
	AllowDirectCompletion bool
	Now                   func() time.Time
}

func NewProcessor(allowDirectCompletion bool, now func() time.Time) *Processor {
	if now == nil {
		now = time.Now
	}
	return &Processor{AllowDirectCompletion: allowDirectCompletion, Now: now}
}

type Result struct {
	Scores   []int
	WinnerID string // empty for a draw
}

type Outcome struct {
	Match *models.Match
	// Next is the match the winner moved into, if any.
	Next *models.Match
	// StageResolved signals that every match of the stage is completed or cancelled.
	// Completing the stage is left to the caller.
	StageResolved bool
}

// Apply records res on the match matchID of stage and moves the winner on.
// pool holds the tournament's participants so their running stats can be updated.
// Nothing is modified unless every check passes.
func (p *Processor) Apply(stage *models.Stage, pool map[string]*models.Participant, matchID string, res Result) (*Outcome, error) {
	if stage.Status != models.StageStatusActive {
		return nil, errs.State("stage %q is %s, results need an active stage", stage.ID, stage.Status)
	}
	arena := stage.Arena()
	m, ok := arena[matchID]
	if !ok {
		return nil, errs.NotFound("match %q not found in stage %q", matchID, stage.ID)
	}

	switch m.Status {
	case models.MatchInProgress:
	case models.MatchScheduled:
		if !p.AllowDirectCompletion {
			return nil, errs.State("match %q has not started", m.ID)
		}
	default:
		return nil, errs.State("match %q is %s and cannot take a result", m.ID, m.Status)
	}
	if !m.Filled() {
		return nil, errs.State("match %q is missing a participant", m.ID)
	}
	if err := validate(stage, m, res); err != nil {
		return nil, err
	}

	var next *models.Match
	if m.NextMatchID != "" {
		next, ok = arena[m.NextMatchID]
		if !ok {
			return nil, errs.State("match %q points to missing match %q", m.ID, m.NextMatchID)
		}
		if slot := next.Participants[m.FeedSlot()]; slot != "" {
			return nil, errs.State("slot %d of match %q is already taken by %q", m.FeedSlot(), next.ID, slot)
		}
	}

	now := p.Now().UTC()
	m.Scores = []int{res.Scores[0], res.Scores[1]}
	m.Winner = res.WinnerID
	m.Status = models.MatchCompleted
	m.CompletedAt = &now
	if m.StartedAt == nil {
		m.StartedAt = &now
	}
	updateStats(pool, m)

	if next != nil {
		next.Participants[m.FeedSlot()] = m.Winner
		if next.Filled() && next.Status == models.MatchPending {
			next.Status = models.MatchScheduled
		}
	}
	if stage.Terminal() && stage.Format.Elimination() {
		if loser := pool[m.Loser()]; loser != nil && loser.Status == models.ParticipantActive {
			loser.Status = models.ParticipantEliminated
		}
	}

	return &Outcome{Match: m, Next: next, StageResolved: stage.Resolved()}, nil
}

func validate(stage *models.Stage, m *models.Match, res Result) error {
	if len(res.Scores) != 2 {
		return errs.Validation("a result needs exactly two scores, got %d", len(res.Scores))
	}
	if res.Scores[0] < 0 || res.Scores[1] < 0 {
		return errs.Validation("scores cannot be negative")
	}
	if res.WinnerID == "" {
		if !stage.DrawsAllowed() || m.NextMatchID != "" {
			return errs.Validation("match %q cannot end in a draw", m.ID)
		}
		if res.Scores[0] != res.Scores[1] {
			return errs.Validation("a draw needs level scores, got %d-%d", res.Scores[0], res.Scores[1])
		}
		return nil
	}
	if !m.Occupies(res.WinnerID) {
		return errs.Validation("winner %q is not playing in match %q", res.WinnerID, m.ID)
	}
	winnerGoals, loserGoals := res.Scores[0], res.Scores[1]
	if m.Participants[1] == res.WinnerID {
		winnerGoals, loserGoals = loserGoals, winnerGoals
	}
	if winnerGoals < loserGoals {
		return errs.Validation("winner %q scored fewer goals than the loser", res.WinnerID)
	}
	return nil
}

func updateStats(pool map[string]*models.Participant, m *models.Match) {
	for slot, id := range m.Participants {
		p := pool[id]
		if p == nil {
			continue
		}
		p.Stats.GoalsFor += m.Scores[slot]
		p.Stats.GoalsAgainst += m.Scores[1-slot]
		switch m.Winner {
		case "":
			p.Stats.Draws++
		case id:
			p.Stats.Wins++
		default:
			p.Stats.Losses++
		}
	}
}

// Start moves a scheduled match to in_progress.
func (p *Processor) Start(stage *models.Stage, matchID string) (*models.Match, error) {
	if stage.Status != models.StageStatusActive {
		return nil, errs.State("stage %q is not active", stage.ID)
	}
	m, ok := stage.Arena()[matchID]
	if !ok {
		return nil, errs.NotFound("match %q not found in stage %q", matchID, stage.ID)
	}
	if m.Status != models.MatchScheduled {
		return nil, errs.State("match %q is %s, only scheduled matches can start", m.ID, m.Status)
	}
	now := p.Now().UTC()
	m.Status = models.MatchInProgress
	m.StartedAt = &now
	return m, nil
}

// Cancel withdraws an unresolved match. Matches that feed another match cannot be
// cancelled since the bracket above them would never fill.
func (p *Processor) Cancel(stage *models.Stage, matchID string) (*Outcome, error) {
	if stage.Status != models.StageStatusActive {
		return nil, errs.State("stage %q is not active", stage.ID)
	}
	m, ok := stage.Arena()[matchID]
	if !ok {
		return nil, errs.NotFound("match %q not found in stage %q", matchID, stage.ID)
	}
	if m.Status.Resolved() {
		return nil, errs.State("match %q is already %s", m.ID, m.Status)
	}
	if m.NextMatchID != "" {
		return nil, errs.State("match %q feeds match %q and cannot be cancelled", m.ID, m.NextMatchID)
	}
	now := p.Now().UTC()
	m.Status = models.MatchCancelled
	m.CompletedAt = &now
	return &Outcome{Match: m, StageResolved: stage.Resolved()}, nil
}
