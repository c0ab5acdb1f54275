package repositories

import (
	"database/sql"
	"fmt"
	"slices"
	"sort"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func (f ListTournamentsFilter) matches(t *models.Tournament) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
		return false
	}
	if f.Format != nil && t.Format != *f.Format {
		return false
	}
	return true
}

// page sorts newest first and applies Offset and Limit.
func (f ListTournamentsFilter) page(ts []*models.Tournament) []*models.Tournament {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].ID < ts[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(ts) {
			return []*models.Tournament{}
		}
		ts = ts[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(ts) {
		ts = ts[:f.Limit]
	}
	return ts
}
