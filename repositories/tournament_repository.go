package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentExists   = errors.New("tournament id already exists")
	// ErrVersionConflict means the stored aggregate moved on since it was loaded.
	ErrVersionConflict = errors.New("tournament was modified concurrently")
)

type ListTournamentsFilter struct {
	Statuses []models.TournamentStatus
	Format   *models.Format
	Limit    int
	Offset   int
}

// TournamentRepository stores whole tournament aggregates. Save is optimistic:
// it succeeds only when the stored version equals t.Version, and bumps it.
type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	Save(ctx context.Context, tournament *models.Tournament) error
	ListRegistrationDue(ctx context.Context, now time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	t.Version = 1
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	query := `
		INSERT INTO tournaments (
			id, name, format, status, registration_closes_at, version, created_at, updated_at, document
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Format, t.Status, t.RegistrationClosesAt, t.Version, t.CreatedAt, t.UpdatedAt, doc,
	)
	if err != nil {
		t.Version = 0
		return r.handleTournamentError(err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT version, document FROM tournaments WHERE id = $1`

	var (
		version int64
		doc     []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&version, &doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return decodeTournament(doc, version)
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	query := `SELECT version, document FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", argID)
		args = append(args, pq.Array(statuses))
		argID++
	}
	if filter.Format != nil {
		query += fmt.Sprintf(" AND format = $%d", argID)
		args = append(args, *filter.Format)
		argID++
	}

	query += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	return r.queryTournaments(ctx, query, args...)
}

func (r *postgresTournamentRepository) Save(ctx context.Context, t *models.Tournament) error {
	next := *t
	next.Version = t.Version + 1
	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	query := `
		UPDATE tournaments SET
			name = $1,
			format = $2,
			status = $3,
			registration_closes_at = $4,
			version = $5,
			updated_at = $6,
			document = $7
		WHERE id = $8 AND version = $9`

	result, err := r.db.ExecContext(ctx, query,
		next.Name, next.Format, next.Status, next.RegistrationClosesAt, next.Version, next.UpdatedAt, doc,
		t.ID, t.Version,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	if err := checkAffectedRows(result, ErrVersionConflict); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return r.missingOrConflict(ctx, t.ID)
		}
		return err
	}
	t.Version = next.Version
	return nil
}

// missingOrConflict tells a vanished row from a stale version after an update hit nothing.
func (r *postgresTournamentRepository) missingOrConflict(ctx context.Context, id string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tournaments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check tournament %s: %w", id, err)
	}
	if !exists {
		return ErrTournamentNotFound
	}
	return ErrVersionConflict
}

func (r *postgresTournamentRepository) ListRegistrationDue(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `
		SELECT version, document
		FROM tournaments
		WHERE status = $1
		AND registration_closes_at IS NOT NULL
		AND registration_closes_at <= $2
		ORDER BY registration_closes_at`

	tournaments, err := r.queryTournaments(ctx, query, models.StatusRegistration, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments with due registration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) queryTournaments(ctx context.Context, query string, args ...interface{}) ([]*models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var (
			version int64
			doc     []byte
		)
		if scanErr := rows.Scan(&version, &doc); scanErr != nil {
			return nil, scanErr
		}
		t, err := decodeTournament(doc, version)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func decodeTournament(doc []byte, version int64) (*models.Tournament, error) {
	t := &models.Tournament{}
	if err := json.Unmarshal(doc, t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament document: %w", err)
	}
	// The column is authoritative.
	t.Version = version
	return t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_pkey" {
				return ErrTournamentExists
			}
		}
	}
	return err
}
