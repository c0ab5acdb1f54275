package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/MichaelPain/FutHaxball-sub001/engine"
	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
	"github.com/MichaelPain/FutHaxball-sub001/repositories"
	"github.com/MichaelPain/FutHaxball-sub001/results"
	"github.com/MichaelPain/FutHaxball-sub001/stages"
	"github.com/MichaelPain/FutHaxball-sub001/storage"
)

type CreateTournamentInput struct {
	Name                 string
	Format               models.Format
	MinParticipants      int
	MaxParticipants      int
	RegistrationClosesAt *time.Time
	Stages               []engine.StageSpec
}

type RegisterParticipantInput struct {
	ID     string
	Name   string
	TeamID string
	Seed   int
}

type MatchResultInput struct {
	Scores   []int
	WinnerID string
}

// TournamentArchiver exports a completed tournament. Failures never undo the completion.
type TournamentArchiver interface {
	Archive(ctx context.Context, t *models.Tournament, final []models.Standing) (*storage.Archive, error)
}

type TournamentService interface {
	Create(ctx context.Context, in CreateTournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)

	OpenRegistration(ctx context.Context, id string) (*models.Tournament, error)
	CloseRegistration(ctx context.Context, id string) (*models.Tournament, error)
	Cancel(ctx context.Context, id string) (*models.Tournament, error)
	RegisterParticipant(ctx context.Context, id string, in RegisterParticipantInput) (*models.Participant, error)
	CheckIn(ctx context.Context, id, participantID string) (*models.Participant, error)
	Disqualify(ctx context.Context, id, participantID string) (*models.Participant, error)

	AddStage(ctx context.Context, id string, spec engine.StageSpec) (*models.Stage, error)
	GenerateStage(ctx context.Context, id string, order int) (*models.Stage, error)
	Standings(ctx context.Context, id, stageID string) ([]models.Standing, error)
	CompleteStage(ctx context.Context, id, stageID string) (*stages.Completion, error)
	Advance(ctx context.Context, id string) (*stages.Completion, *models.Stage, error)

	StartMatch(ctx context.Context, id, matchID string) (*models.Match, error)
	SubmitResult(ctx context.Context, id, matchID string, in MatchResultInput) (*results.Outcome, error)
	CancelMatch(ctx context.Context, id, matchID string) (*results.Outcome, error)

	AutoCloseRegistrations(ctx context.Context, now time.Time) (int, error)
}

type tournamentService struct {
	repo     repositories.TournamentRepository
	engine   *engine.Engine
	archiver TournamentArchiver
	locks    *tournamentLocks
	reads    singleflight.Group
	logger   *slog.Logger
	now      func() time.Time
}

// NewTournamentService wires the engine to a repository. archiver may be nil.
func NewTournamentService(
	repo repositories.TournamentRepository,
	eng *engine.Engine,
	archiver TournamentArchiver,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		repo:     repo,
		engine:   eng,
		archiver: archiver,
		locks:    newTournamentLocks(),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *tournamentService) Create(ctx context.Context, in CreateTournamentInput) (*models.Tournament, error) {
	now := s.now().UTC()
	t := &models.Tournament{
		ID:                   uuid.NewString(),
		Name:                 in.Name,
		Format:               in.Format,
		Status:               models.StatusDraft,
		MinParticipants:      in.MinParticipants,
		MaxParticipants:      in.MaxParticipants,
		RegistrationClosesAt: in.RegistrationClosesAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := engine.ValidateTournament(t); err != nil {
		return nil, err
	}
	for _, spec := range in.Stages {
		if spec.ID == "" {
			spec.ID = uuid.NewString()
		}
		if _, err := s.engine.AddStage(t, spec); err != nil {
			return nil, fmt.Errorf("stage %d: %w", spec.Order, err)
		}
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "tournament created",
		slog.String("tournament_id", t.ID),
		slog.String("format", string(t.Format)),
		slog.Int("stages", len(t.Stages)))
	return t, nil
}

// Get returns a private copy of the stored aggregate. Concurrent reads of the
// same id share one repository call, which no single caller can cancel.
func (s *tournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	ch := s.reads.DoChan(id, func() (interface{}, error) {
		return s.repo.GetByID(context.WithoutCancel(ctx), id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, handleRepositoryError(res.Err)
		}
		return res.Val.(*models.Tournament).Clone(), nil
	}
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	ts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return ts, nil
}

func (s *tournamentService) OpenRegistration(ctx context.Context, id string) (*models.Tournament, error) {
	return s.update(ctx, id, "open registration", s.engine.OpenRegistration)
}

func (s *tournamentService) CloseRegistration(ctx context.Context, id string) (*models.Tournament, error) {
	return s.update(ctx, id, "close registration", s.engine.CloseRegistration)
}

func (s *tournamentService) Cancel(ctx context.Context, id string) (*models.Tournament, error) {
	return s.update(ctx, id, "cancel", s.engine.Cancel)
}

func (s *tournamentService) RegisterParticipant(ctx context.Context, id string, in RegisterParticipantInput) (*models.Participant, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	var p *models.Participant
	_, err := s.update(ctx, id, "register participant", func(t *models.Tournament) error {
		var err error
		p, err = s.engine.RegisterParticipant(t, models.Participant{ID: in.ID, Name: in.Name, TeamID: in.TeamID, Seed: in.Seed})
		return err
	})
	return p, err
}

func (s *tournamentService) CheckIn(ctx context.Context, id, participantID string) (*models.Participant, error) {
	var p *models.Participant
	_, err := s.update(ctx, id, "check in", func(t *models.Tournament) error {
		var err error
		p, err = s.engine.CheckIn(t, participantID)
		return err
	})
	return p, err
}

func (s *tournamentService) Disqualify(ctx context.Context, id, participantID string) (*models.Participant, error) {
	var p *models.Participant
	_, err := s.update(ctx, id, "disqualify", func(t *models.Tournament) error {
		var err error
		p, err = s.engine.Disqualify(t, participantID)
		return err
	})
	return p, err
}

func (s *tournamentService) AddStage(ctx context.Context, id string, spec engine.StageSpec) (*models.Stage, error) {
	if spec.ID == "" {
		spec.ID = uuid.NewString()
	}
	var stage *models.Stage
	_, err := s.update(ctx, id, "add stage", func(t *models.Tournament) error {
		var err error
		stage, err = s.engine.AddStage(t, spec)
		return err
	})
	return stage, err
}

func (s *tournamentService) GenerateStage(ctx context.Context, id string, order int) (*models.Stage, error) {
	var stage *models.Stage
	_, err := s.update(ctx, id, "generate stage", func(t *models.Tournament) error {
		var err error
		stage, err = s.engine.GenerateStage(t, order)
		return err
	})
	return stage, err
}

func (s *tournamentService) Standings(ctx context.Context, id, stageID string) ([]models.Standing, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stage := t.StageByID(stageID)
	if stage == nil {
		return nil, fmt.Errorf("%w: %s", ErrStageNotFound, stageID)
	}
	return s.engine.ComputeStandings(stage), nil
}

func (s *tournamentService) CompleteStage(ctx context.Context, id, stageID string) (*stages.Completion, error) {
	var done *stages.Completion
	_, err := s.update(ctx, id, "complete stage", func(t *models.Tournament) error {
		var err error
		done, err = s.engine.CompleteStage(t, stageID)
		return err
	})
	return done, err
}

func (s *tournamentService) Advance(ctx context.Context, id string) (*stages.Completion, *models.Stage, error) {
	var (
		done    *stages.Completion
		started *models.Stage
	)
	_, err := s.update(ctx, id, "advance", func(t *models.Tournament) error {
		var err error
		done, started, err = s.engine.AdvanceTournament(t)
		return err
	})
	return done, started, err
}

func (s *tournamentService) StartMatch(ctx context.Context, id, matchID string) (*models.Match, error) {
	var m *models.Match
	_, err := s.update(ctx, id, "start match", func(t *models.Tournament) error {
		var err error
		m, err = s.engine.StartMatch(t, matchID)
		return err
	})
	return m, err
}

func (s *tournamentService) SubmitResult(ctx context.Context, id, matchID string, in MatchResultInput) (*results.Outcome, error) {
	var out *results.Outcome
	_, err := s.update(ctx, id, "submit result", func(t *models.Tournament) error {
		var err error
		out, err = s.engine.ApplyMatchResult(t, matchID, in.Scores, in.WinnerID)
		return err
	})
	if err == nil && out.StageResolved {
		s.logger.InfoContext(ctx, "all matches of the stage are resolved",
			slog.String("tournament_id", id),
			slog.String("match_id", matchID))
	}
	return out, err
}

func (s *tournamentService) CancelMatch(ctx context.Context, id, matchID string) (*results.Outcome, error) {
	var out *results.Outcome
	_, err := s.update(ctx, id, "cancel match", func(t *models.Tournament) error {
		var err error
		out, err = s.engine.CancelMatch(t, matchID)
		return err
	})
	return out, err
}

// AutoCloseRegistrations closes every registration whose deadline has passed.
// Tournaments that moved on in the meantime are skipped.
func (s *tournamentService) AutoCloseRegistrations(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListRegistrationDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list tournaments with due registration: %w", err)
	}

	closed := 0
	for _, t := range due {
		if _, err := s.update(ctx, t.ID, "auto close registration", s.engine.CloseRegistration); err != nil {
			if errors.Is(err, errs.ErrState) || errors.Is(err, ErrTournamentNotFound) {
				continue
			}
			s.logger.ErrorContext(ctx, "failed to close registration",
				slog.String("tournament_id", t.ID),
				slog.Any("error", err))
			continue
		}
		closed++
	}
	return closed, nil
}

// update runs one engine operation under the tournament's writer lock and
// saves the result.
func (s *tournamentService) update(ctx context.Context, id, op string, fn func(t *models.Tournament) error) (*models.Tournament, error) {
	release, err := s.locks.acquire(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: waiting for tournament %s: %w", op, id, err)
	}
	defer release()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	wasCompleted := t.Status == models.StatusCompleted

	if err := fn(t); err != nil {
		s.logger.DebugContext(ctx, "tournament operation rejected",
			slog.String("op", op),
			slog.String("tournament_id", id),
			slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.reads.Forget(id)

	s.logger.InfoContext(ctx, "tournament updated",
		slog.String("op", op),
		slog.String("tournament_id", id),
		slog.String("status", string(t.Status)),
		slog.Int64("version", t.Version))

	if !wasCompleted && t.Status == models.StatusCompleted {
		s.archive(ctx, t)
	}
	return t, nil
}

func (s *tournamentService) archive(ctx context.Context, t *models.Tournament) {
	if s.archiver == nil {
		return
	}
	archive, err := s.archiver.Archive(ctx, t, s.engine.ComputeStandings(t.LastStage()))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to archive completed tournament",
			slog.String("tournament_id", t.ID),
			slog.Any("error", err))
		return
	}
	s.logger.InfoContext(ctx, "tournament archived",
		slog.String("tournament_id", t.ID),
		slog.String("winner", t.Winner),
		slog.String("location", archive.TournamentURL))
}
