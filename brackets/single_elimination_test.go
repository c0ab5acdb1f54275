package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

func entrants(n int) []*models.Participant {
	out := make([]*models.Participant, n)
	for i := range out {
		out[i] = &models.Participant{ID: fmt.Sprintf("p%d", i+1), Seed: i + 1}
	}
	return out
}

func countBy(matches []*models.Match, keep func(*models.Match) bool) int {
	n := 0
	for _, m := range matches {
		if keep(m) {
			n++
		}
	}
	return n
}

func TestSingleEliminationFivePlayers(t *testing.T) {
	gen := NewSingleEliminationGenerator(PlacementFold)
	matches, err := gen.Generate(GenerateParams{StageID: "s1", Entrants: entrants(5)})
	require.NoError(t, err)

	assert.Len(t, matches, 7)
	firstRound := countBy(matches, func(m *models.Match) bool { return m.Round == 1 })
	byes := countBy(matches, func(m *models.Match) bool { return m.Bye })
	rounds := 0
	for _, m := range matches {
		rounds = max(rounds, m.Round)
	}
	assert.Equal(t, 4, firstRound)
	assert.Equal(t, 3, byes)
	assert.Equal(t, 3, rounds)

	arena := (&models.Stage{Matches: matches}).Arena()

	// The first three entrants get the byes, the last two play each other.
	for i, id := range []string{"p1", "p2", "p3"} {
		m := arena[fmt.Sprintf("s1-R1M%d", i+1)]
		assert.True(t, m.Bye)
		assert.Equal(t, models.MatchCompleted, m.Status)
		assert.Equal(t, [2]string{id, ""}, m.Participants)
		assert.Equal(t, id, m.Winner)
	}
	real := arena["s1-R1M4"]
	assert.Equal(t, [2]string{"p4", "p5"}, real.Participants)
	assert.Equal(t, models.MatchScheduled, real.Status)

	// Bye winners are already in round two.
	assert.Equal(t, [2]string{"p1", "p2"}, arena["s1-R2M1"].Participants)
	assert.Equal(t, models.MatchScheduled, arena["s1-R2M1"].Status)
	assert.Equal(t, [2]string{"p3", ""}, arena["s1-R2M2"].Participants)
	assert.Equal(t, models.MatchPending, arena["s1-R2M2"].Status)

	final := arena["s1-R3M1"]
	assert.Empty(t, final.NextMatchID)
	assert.Equal(t, []string{"s1-R2M1", "s1-R2M2"}, final.PreviousMatches)
}

func TestSingleEliminationMatchCounts(t *testing.T) {
	for _, placement := range []Placement{PlacementFold, PlacementSeeded} {
		for p := 2; p <= 33; p++ {
			matches, err := NewSingleEliminationGenerator(placement).Generate(GenerateParams{Entrants: entrants(p)})
			require.NoError(t, err)

			size := nextPowerOfTwo(p)
			assert.Len(t, matches, size-1, "placement %s, %d players", placement, p)
			assert.Equal(t, size-p, countBy(matches, func(m *models.Match) bool { return m.Bye }))

			lg, err := NewLinkageGraph(matches)
			require.NoError(t, err)
			assert.NotEmpty(t, lg.Final())

			// Every entrant appears exactly once in round one.
			seen := map[string]int{}
			for _, m := range matches {
				if m.Round != 1 {
					continue
				}
				for _, id := range m.Participants {
					if id != "" {
						seen[id]++
					}
				}
				assert.NotEmpty(t, m.Participants[0], "slot 0 always holds a real participant")
			}
			assert.Len(t, seen, p)
			for id, n := range seen {
				assert.Equal(t, 1, n, id)
			}
		}
	}
}

func TestSingleEliminationSlotsFollowMatchNumber(t *testing.T) {
	matches, err := NewSingleEliminationGenerator(PlacementFold).Generate(GenerateParams{Entrants: entrants(8)})
	require.NoError(t, err)

	arena := (&models.Stage{Matches: matches}).Arena()
	for _, m := range matches {
		if m.NextMatchID == "" {
			continue
		}
		next := arena[m.NextMatchID]
		assert.Equal(t, next.Round, m.Round+1)
		assert.Equal(t, (m.MatchNumber+1)/2, next.MatchNumber)
		assert.Equal(t, m.ID, next.PreviousMatches[m.FeedSlot()])
	}
}

func TestSingleEliminationSeededPlacement(t *testing.T) {
	matches, err := NewSingleEliminationGenerator(PlacementSeeded).Generate(GenerateParams{Entrants: entrants(6)})
	require.NoError(t, err)

	// Top two seeds take the byes.
	var byeHolders []string
	for _, m := range matches {
		if m.Bye {
			byeHolders = append(byeHolders, m.Participants[0])
		}
	}
	assert.ElementsMatch(t, []string{"p1", "p2"}, byeHolders)

	// Seeds 1 and 2 sit in different halves of the bracket.
	lg, err := NewLinkageGraph(matches)
	require.NoError(t, err)
	arena := (&models.Stage{Matches: matches}).Arena()
	final := arena[lg.Final()]
	half := func(id string) string {
		for _, m := range matches {
			if m.Round == 1 && m.Occupies(id) {
				cur := m
				for cur.NextMatchID != final.ID {
					cur = arena[cur.NextMatchID]
				}
				return cur.ID
			}
		}
		return ""
	}
	assert.NotEqual(t, half("p1"), half("p2"))
}

func TestSingleEliminationEdgeSizes(t *testing.T) {
	gen := NewSingleEliminationGenerator(PlacementFold)

	_, err := gen.Generate(GenerateParams{})
	assert.ErrorIs(t, err, errs.ErrValidation)

	matches, err := gen.Generate(GenerateParams{Entrants: entrants(1)})
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = gen.Generate(GenerateParams{Entrants: entrants(2)})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, models.MatchScheduled, matches[0].Status)
	assert.Empty(t, matches[0].NextMatchID)
}

func TestSingleEliminationRejectsDuplicates(t *testing.T) {
	ps := entrants(3)
	ps[2].ID = ps[0].ID
	_, err := NewSingleEliminationGenerator(PlacementFold).Generate(GenerateParams{Entrants: ps})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestArrangeSeeds(t *testing.T) {
	assert.Equal(t, []seedMatchup{{0, 7}, {3, 4}, {1, 6}, {2, 5}}, arrangeSeeds(3))
}
