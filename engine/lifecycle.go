package engine

import (
	"slices"
	"strings"

	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

var allowedTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusDraft:        {models.StatusRegistration, models.StatusCancelled},
	models.StatusRegistration: {models.StatusUpcoming, models.StatusActive, models.StatusCancelled},
	models.StatusUpcoming:     {models.StatusActive, models.StatusCancelled},
	models.StatusActive:       {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted:    {},
	models.StatusCancelled:    {},
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	return slices.Contains(allowedTransitions[current], next)
}

func transition(t *models.Tournament, next models.TournamentStatus) error {
	if !isValidStatusTransition(t.Status, next) {
		return errs.State("tournament %q cannot go from %s to %s", t.ID, t.Status, next)
	}
	t.Status = next
	return nil
}

// ValidateTournament checks a freshly described tournament before it is stored.
func ValidateTournament(t *models.Tournament) error {
	if strings.TrimSpace(t.Name) == "" {
		return errs.Validation("tournament name is required")
	}
	if _, err := models.ParseFormat(string(t.Format)); err != nil {
		return errs.Validation("%v", err)
	}
	if t.MinParticipants < 0 {
		return errs.Validation("minimum participants cannot be negative")
	}
	if t.MaxParticipants < 0 || (t.MaxParticipants > 0 && t.MaxParticipants < t.MinParticipants) {
		return errs.Validation("maximum participants must be 0 (unlimited) or at least %d", t.MinParticipants)
	}
	return nil
}

func (e *Engine) OpenRegistration(t *models.Tournament) error {
	return e.mutate(t, func(work *models.Tournament) error {
		return transition(work, models.StatusRegistration)
	})
}

func (e *Engine) CloseRegistration(t *models.Tournament) error {
	return e.mutate(t, func(work *models.Tournament) error {
		if work.Status != models.StatusRegistration {
			return errs.State("tournament %q is %s, registration is not open", work.ID, work.Status)
		}
		return transition(work, models.StatusUpcoming)
	})
}

func (e *Engine) Cancel(t *models.Tournament) error {
	return e.mutate(t, func(work *models.Tournament) error {
		return transition(work, models.StatusCancelled)
	})
}

// RegisterParticipant adds p to the pool while registration is open.
func (e *Engine) RegisterParticipant(t *models.Tournament, p models.Participant) (*models.Participant, error) {
	var added *models.Participant
	err := e.mutate(t, func(work *models.Tournament) error {
		if work.Status != models.StatusRegistration {
			return errs.State("tournament %q is %s, registration is not open", work.ID, work.Status)
		}
		if p.ID == "" {
			return errs.Validation("participant id is required")
		}
		if strings.TrimSpace(p.Name) == "" {
			return errs.Validation("participant name is required")
		}
		if p.Seed < 0 {
			return errs.Validation("seed cannot be negative")
		}
		if work.Participant(p.ID) != nil {
			return errs.Validation("participant %q is already registered", p.ID)
		}
		if work.MaxParticipants > 0 && len(work.Participants) >= work.MaxParticipants {
			return errs.Validation("tournament %q is full (%d participants)", work.ID, work.MaxParticipants)
		}
		added = &models.Participant{
			ID:           p.ID,
			Name:         p.Name,
			TeamID:       p.TeamID,
			Seed:         p.Seed,
			Status:       models.ParticipantRegistered,
			RegisteredAt: e.now().UTC(),
		}
		work.Participants = append(work.Participants, added)
		return nil
	})
	return added, err
}

// CheckIn confirms a registered participant for the first stage.
func (e *Engine) CheckIn(t *models.Tournament, participantID string) (*models.Participant, error) {
	var p *models.Participant
	err := e.mutate(t, func(work *models.Tournament) error {
		if work.Status != models.StatusRegistration && work.Status != models.StatusUpcoming {
			return errs.State("tournament %q is %s, check-in is closed", work.ID, work.Status)
		}
		p = work.Participant(participantID)
		if p == nil {
			return errs.NotFound("participant %q not found", participantID)
		}
		if p.Status != models.ParticipantRegistered {
			return errs.State("participant %q is %s", p.ID, p.Status)
		}
		p.Status = models.ParticipantCheckedIn
		return nil
	})
	return p, err
}

// Disqualify removes a participant from further qualification. Matches already
// generated are left as they are.
func (e *Engine) Disqualify(t *models.Tournament, participantID string) (*models.Participant, error) {
	var p *models.Participant
	err := e.mutate(t, func(work *models.Tournament) error {
		if work.Status.Terminal() {
			return errs.State("tournament %q is %s", work.ID, work.Status)
		}
		p = work.Participant(participantID)
		if p == nil {
			return errs.NotFound("participant %q not found", participantID)
		}
		if p.Status == models.ParticipantDisqualified || p.Status == models.ParticipantWinner {
			return errs.State("participant %q is %s", p.ID, p.Status)
		}
		p.Status = models.ParticipantDisqualified
		return nil
	})
	return p, err
}

type StageSpec struct {
	ID                 string
	Name               string
	Format             models.Format
	Order              int
	QualificationCount int
	Settings           models.StageSettings
}

// AddStage appends a pending stage to a tournament that has not started yet.
func (e *Engine) AddStage(t *models.Tournament, spec StageSpec) (*models.Stage, error) {
	var stage *models.Stage
	err := e.mutate(t, func(work *models.Tournament) error {
		switch work.Status {
		case models.StatusDraft, models.StatusRegistration, models.StatusUpcoming:
		default:
			return errs.State("tournament %q is %s, stages are fixed", work.ID, work.Status)
		}
		if spec.ID == "" {
			return errs.Validation("stage id is required")
		}
		if spec.Order <= 0 {
			return errs.Validation("stage order must be positive")
		}
		if _, err := models.ParseFormat(string(spec.Format)); err != nil {
			return errs.Validation("%v", err)
		}
		if spec.Format == models.FormatMultiStage {
			return errs.Validation("a stage needs a concrete format")
		}
		if spec.QualificationCount < 0 {
			return errs.Validation("qualification count cannot be negative")
		}
		if work.StageByOrder(spec.Order) != nil {
			return errs.Validation("stage order %d is taken", spec.Order)
		}
		if work.StageByID(spec.ID) != nil {
			return errs.Validation("stage %q already exists", spec.ID)
		}
		// Only the last stage may go without a qualification count.
		for _, s := range work.Stages {
			if spec.QualificationCount == 0 && s.Order > spec.Order {
				return errs.Validation("stage %q needs a qualification count, stage %d follows it", spec.ID, s.Order)
			}
			if s.Terminal() && s.Order < spec.Order {
				return errs.Validation("stage %q has no qualification count, no stage can follow it", s.ID)
			}
		}
		stage = &models.Stage{
			ID:                 spec.ID,
			Name:               spec.Name,
			Format:             spec.Format,
			Order:              spec.Order,
			Status:             models.StageStatusPending,
			QualificationCount: spec.QualificationCount,
			Settings:           spec.Settings,
		}
		work.Stages = append(work.Stages, stage)
		work.SortStages()
		return nil
	})
	return stage, err
}
