package services

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/MichaelPain/FutHaxball-sub001/repositories"
)

func handleRepositoryError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentExists):
		return ErrTournamentExists
	case errors.Is(err, repositories.ErrVersionConflict):
		return ErrVersionConflict
	}
	return err
}

// tournamentLocks hands out one writer slot per tournament id.
type tournamentLocks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func newTournamentLocks() *tournamentLocks {
	return &tournamentLocks{sems: make(map[string]*semaphore.Weighted)}
}

func (l *tournamentLocks) acquire(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.sems[id]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[id] = sem
	}
	l.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}
