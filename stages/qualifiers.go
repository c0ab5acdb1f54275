package stages

import (
	"sort"

	"github.com/MichaelPain/FutHaxball-sub001/brackets"
	"github.com/MichaelPain/FutHaxball-sub001/models"
	"github.com/MichaelPain/FutHaxball-sub001/standings"
)

// QualifierSelector picks the participants a completed stage sends on.
type QualifierSelector struct {
	standings *standings.Calculator
}

func NewQualifierSelector(calc *standings.Calculator) *QualifierSelector {
	return &QualifierSelector{standings: calc}
}

// Select returns up to count participant ids, best first. Fewer are returned when
// the stage cannot rank that many. Disqualified participants never qualify.
func (q *QualifierSelector) Select(stage *models.Stage, pool map[string]*models.Participant, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	var ranked []string
	if stage.Format.Elimination() {
		var err error
		ranked, err = eliminationOrder(stage)
		if err != nil {
			return nil, err
		}
	} else {
		for _, row := range q.standings.Calculate(stage.Entrants, stage.Matches) {
			ranked = append(ranked, row.ParticipantID)
		}
	}

	out := make([]string, 0, count)
	for _, id := range ranked {
		if p := pool[id]; p != nil && p.Status == models.ParticipantDisqualified {
			continue
		}
		out = append(out, id)
		if len(out) == count {
			break
		}
	}
	return out, nil
}

// Standings exposes the calculator the selector ranks with.
func (q *QualifierSelector) Standings(stage *models.Stage) []models.Standing {
	return q.standings.Calculate(stage.Entrants, stage.Matches)
}

// eliminationOrder ranks a bracket: the final's winner, the final's loser, then the
// losers of each earlier round, latest round first and by match number within a round.
func eliminationOrder(stage *models.Stage) ([]string, error) {
	if len(stage.Matches) == 0 {
		return append([]string(nil), stage.Entrants...), nil
	}
	lg, err := brackets.NewLinkageGraph(stage.Matches)
	if err != nil {
		return nil, err
	}
	depth, err := lg.Depth()
	if err != nil {
		return nil, err
	}

	matches := append([]*models.Match(nil), stage.Matches...)
	sort.SliceStable(matches, func(i, j int) bool {
		di, dj := depth[matches[i].ID], depth[matches[j].ID]
		if di != dj {
			return di < dj
		}
		return matches[i].MatchNumber < matches[j].MatchNumber
	})

	var ranked []string
	final := stage.Arena()[lg.Final()]
	if final.Status == models.MatchCompleted && final.Winner != "" {
		ranked = append(ranked, final.Winner)
	}
	for _, m := range matches {
		if loser := m.Loser(); loser != "" {
			ranked = append(ranked, loser)
		}
	}
	return ranked, nil
}
