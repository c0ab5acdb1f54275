package brackets

import (
	"fmt"
	"math/bits"

	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

// Placement decides how ordered entrants are laid into the first round.
type Placement string

const (
	// PlacementFold gives the byes to the first entrants and pairs the rest first against last.
	PlacementFold Placement = "fold"
	// PlacementSeeded uses the standard seed arrangement: seeds 1 and 2 can only meet in the final.
	PlacementSeeded Placement = "seeded"
)

func ParsePlacement(s string) (Placement, error) {
	switch Placement(s) {
	case "", PlacementFold:
		return PlacementFold, nil
	case PlacementSeeded:
		return PlacementSeeded, nil
	}
	return "", fmt.Errorf("unknown bracket placement %q", s)
}

type SingleEliminationGenerator struct {
	placement Placement
}

func NewSingleEliminationGenerator(placement Placement) FormatStrategy {
	if placement == "" {
		placement = PlacementFold
	}
	return &SingleEliminationGenerator{placement: placement}
}

func (g *SingleEliminationGenerator) Format() models.Format {
	return models.FormatSingleElimination
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// Generate builds the full bracket up front. Later-round matches start pending with
// empty slots, except where a bye winner has already been written in.
func (g *SingleEliminationGenerator) Generate(params GenerateParams) ([]*models.Match, error) {
	ids, err := participantIDs(params.Entrants)
	if err != nil {
		return nil, err
	}
	n := len(ids)
	if n == 0 {
		return nil, errs.Validation("cannot generate a bracket with zero participants")
	}
	if n == 1 {
		// Nothing to play: the lone entrant wins the stage outright.
		return []*models.Match{}, nil
	}

	size := nextPowerOfTwo(n)
	numRounds := bits.TrailingZeros(uint(size))

	var pairs [][2]string
	switch g.placement {
	case PlacementSeeded:
		pairs = seededPairs(ids, size, numRounds)
	default:
		pairs = foldPairs(ids, size)
	}

	all := make([]*models.Match, 0, size-1)
	previous := make([]*models.Match, 0, len(pairs))
	for i, pair := range pairs {
		m := &models.Match{
			ID:           matchID(params.StageID, 1, i+1),
			Round:        1,
			MatchNumber:  i + 1,
			Participants: pair,
			Status:       models.MatchScheduled,
		}
		if pair[1] == "" {
			m.Bye = true
			m.Winner = pair[0]
			m.Status = models.MatchCompleted
		}
		previous = append(previous, m)
		all = append(all, m)
	}

	for round := 2; round <= numRounds; round++ {
		current := make([]*models.Match, 0, (len(previous)+1)/2)
		for i := 0; i < len(previous); i += 2 {
			m := &models.Match{
				ID:          matchID(params.StageID, round, len(current)+1),
				Round:       round,
				MatchNumber: len(current) + 1,
				Status:      models.MatchPending,
			}
			for _, feeder := range previous[i:min(i+2, len(previous))] {
				feeder.NextMatchID = m.ID
				m.PreviousMatches = append(m.PreviousMatches, feeder.ID)
			}
			current = append(current, m)
			all = append(all, m)
		}
		previous = current
	}

	arena := make(models.MatchArena, len(all))
	for _, m := range all {
		arena[m.ID] = m
	}
	for _, m := range all {
		if !m.Bye || m.NextMatchID == "" {
			continue
		}
		next := arena[m.NextMatchID]
		next.Participants[m.FeedSlot()] = m.Winner
		if next.Filled() {
			next.Status = models.MatchScheduled
		}
	}

	if _, err := NewLinkageGraph(all); err != nil {
		return nil, fmt.Errorf("single elimination linkage: %w", err)
	}
	return all, nil
}

func foldPairs(ids []string, size int) [][2]string {
	byes := size - len(ids)
	pairs := make([][2]string, 0, size/2)
	for i := 0; i < byes; i++ {
		pairs = append(pairs, [2]string{ids[i], ""})
	}
	rest := ids[byes:]
	for i := 0; i < len(rest)/2; i++ {
		pairs = append(pairs, [2]string{rest[i], rest[len(rest)-1-i]})
	}
	return pairs
}

type seedMatchup struct {
	seed1 int
	seed2 int
}

func seededPairs(ids []string, size, numRounds int) [][2]string {
	at := func(seed int) string {
		if seed < len(ids) {
			return ids[seed]
		}
		return ""
	}
	matchups := arrangeSeeds(numRounds)
	pairs := make([][2]string, 0, size/2)
	for _, mu := range matchups {
		pairs = append(pairs, [2]string{at(mu.seed1), at(mu.seed2)})
	}
	return pairs
}

// arrangeSeeds returns first-round seed matchups so that the seeds are kept
// apart for as long as possible. seed1 is always the better seed.
func arrangeSeeds(numRounds int) []seedMatchup {
	matchups := []seedMatchup{{0, 1}}
	totalSeeds := 2
	for i := 1; i < numRounds; i++ {
		next := make([]seedMatchup, 0, totalSeeds)
		totalSeeds *= 2
		for _, parent := range matchups {
			next = append(next,
				seedMatchup{parent.seed1, totalSeeds - 1 - parent.seed1},
				seedMatchup{parent.seed2, totalSeeds - 1 - parent.seed2},
			)
		}
		matchups = next
	}
	return matchups
}

func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}
