package brackets

import (
	"fmt"

	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

type GenerateParams struct {
	StageID string
	// Entrants are already ordered by the seeding policy.
	Entrants []*models.Participant
	Settings models.StageSettings
}

// FormatStrategy produces the matches of one stage.
type FormatStrategy interface {
	Format() models.Format
	Generate(params GenerateParams) ([]*models.Match, error)

	GetName() string
}

// Registry is the strategy table keyed by format.
type Registry struct {
	strategies map[models.Format]FormatStrategy
}

// NewRegistry registers a strategy for every known format.
func NewRegistry(placement Placement) *Registry {
	r := &Registry{strategies: make(map[models.Format]FormatStrategy)}
	r.Register(NewSingleEliminationGenerator(placement))
	r.Register(NewRoundRobinGenerator())
	r.Register(newUnsupportedGenerator(models.FormatDoubleElimination, "DoubleElimination", "double elimination brackets are not supported"))
	r.Register(newUnsupportedGenerator(models.FormatSwiss, "Swiss", "swiss pairing is not supported"))
	r.Register(newUnsupportedGenerator(models.FormatMultiStage, "MultiStage", "multi_stage is a tournament layout, a stage needs a concrete format"))
	return r
}

func (r *Registry) Register(s FormatStrategy) {
	r.strategies[s.Format()] = s
}

func (r *Registry) Strategy(format models.Format) (FormatStrategy, error) {
	s, ok := r.strategies[format]
	if !ok {
		return nil, errs.Validation("no strategy registered for format %q", format)
	}
	return s, nil
}

func participantIDs(entrants []*models.Participant) ([]string, error) {
	ids := make([]string, len(entrants))
	seen := make(map[string]struct{}, len(entrants))
	for i, p := range entrants {
		if p == nil || p.ID == "" {
			return nil, errs.Validation("entrant %d has no id", i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, errs.Validation("participant %q entered twice", p.ID)
		}
		seen[p.ID] = struct{}{}
		ids[i] = p.ID
	}
	return ids, nil
}

func matchID(stageID string, round, number int) string {
	if stageID == "" {
		return fmt.Sprintf("R%dM%d", round, number)
	}
	return fmt.Sprintf("%s-R%dM%d", stageID, round, number)
}
