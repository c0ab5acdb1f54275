package brackets

import (
	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() FormatStrategy {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Format() models.Format {
	return models.FormatRoundRobin
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate schedules every pairing once per leg with the circle method.
// An odd field gets a placeholder; whoever draws it has a bye that round.
// The second leg repeats the rounds with the slots swapped.
func (g *RoundRobinGenerator) Generate(params GenerateParams) ([]*models.Match, error) {
	ids, err := participantIDs(params.Entrants)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errs.Validation("cannot generate a round robin with zero participants")
	}

	legs := params.Settings.Legs
	if legs == 0 {
		legs = 1
	}
	if legs < 1 || legs > 2 {
		return nil, errs.Validation("round robin legs must be 1 or 2, got %d", legs)
	}
	if len(ids) == 1 {
		return []*models.Match{}, nil
	}

	slots := ids
	if len(slots)%2 == 1 {
		slots = append(append(make([]string, 0, len(ids)+1), ids...), "")
	}
	n := len(slots)
	roundsPerLeg := n - 1

	matches := make([]*models.Match, 0, legs*roundsPerLeg*n/2)
	for leg := 0; leg < legs; leg++ {
		for r := 0; r < roundsPerLeg; r++ {
			round := leg*roundsPerLeg + r + 1
			number := 0
			for k := 0; k < n/2; k++ {
				home := slots[roundRobinCircleIndex(k, n, r)]
				away := slots[roundRobinCircleIndex(n-1-k, n, r)]
				// The fixed entrant alternates sides round by round.
				if (k == 0 && r%2 == 1) != (leg == 1) {
					home, away = away, home
				}

				number++
				m := &models.Match{
					ID:          matchID(params.StageID, round, number),
					Round:       round,
					MatchNumber: number,
					Status:      models.MatchScheduled,
				}
				switch {
				case home == "":
					m.Participants = [2]string{away, ""}
				case away == "":
					m.Participants = [2]string{home, ""}
				default:
					m.Participants = [2]string{home, away}
				}
				if m.Participants[1] == "" {
					m.Bye = true
					m.Winner = m.Participants[0]
					m.Status = models.MatchCompleted
				}
				matches = append(matches, m)
			}
		}
	}
	return matches, nil
}

// roundRobinCircleIndex maps position index to the participant index for a round:
// index 0 stays put, the others rotate by one position each round.
func roundRobinCircleIndex(index, length, round int) int {
	if index == 0 {
		return 0
	}
	index -= 1
	index -= round
	index += length - 1
	index %= length - 1
	index += 1
	return index
}
