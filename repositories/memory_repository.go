package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

// memoryTournamentRepository keeps deep copies so callers never share state with the store.
type memoryTournamentRepository struct {
	mu          sync.RWMutex
	tournaments map[string]*models.Tournament
}

func NewMemoryTournamentRepository() TournamentRepository {
	return &memoryTournamentRepository{tournaments: make(map[string]*models.Tournament)}
}

func (r *memoryTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; ok {
		return ErrTournamentExists
	}
	t.Version = 1
	r.tournaments[t.ID] = t.Clone()
	return nil
}

func (r *memoryTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func (r *memoryTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		if filter.matches(t) {
			out = append(out, t.Clone())
		}
	}
	return filter.page(out), nil
}

func (r *memoryTournamentRepository) Save(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tournaments[t.ID]
	if !ok {
		return ErrTournamentNotFound
	}
	if stored.Version != t.Version {
		return ErrVersionConflict
	}
	next := t.Clone()
	next.Version++
	r.tournaments[t.ID] = next
	t.Version = next.Version
	return nil
}

func (r *memoryTournamentRepository) ListRegistrationDue(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.Status == models.StatusRegistration && t.RegistrationClosesAt != nil && !t.RegistrationClosesAt.After(now) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}
