package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func TestRoundRobinPairsOnce(t *testing.T) {
	for n := 2; n <= 12; n++ {
		matches, err := NewRoundRobinGenerator().Generate(GenerateParams{StageID: "rr", Entrants: entrants(n)})
		require.NoError(t, err)

		pairs := map[[2]string]int{}
		real := 0
		rounds := 0
		for _, m := range matches {
			rounds = max(rounds, m.Round)
			assert.Empty(t, m.NextMatchID)
			if m.Bye {
				continue
			}
			real++
			pairs[pairKey(m.Participants[0], m.Participants[1])]++
		}

		assert.Equal(t, n*(n-1)/2, real, "%d players", n)
		for pair, count := range pairs {
			assert.Equal(t, 1, count, "%v meets more than once", pair)
		}

		wantRounds := n - 1
		if n%2 == 1 {
			wantRounds = n
		}
		assert.Equal(t, wantRounds, rounds)
	}
}

func TestRoundRobinEachPlaysOncePerRound(t *testing.T) {
	matches, err := NewRoundRobinGenerator().Generate(GenerateParams{Entrants: entrants(7)})
	require.NoError(t, err)

	perRound := map[int]map[string]int{}
	byes := map[int]int{}
	for _, m := range matches {
		if perRound[m.Round] == nil {
			perRound[m.Round] = map[string]int{}
		}
		for _, id := range m.Participants {
			if id != "" {
				perRound[m.Round][id]++
			}
		}
		if m.Bye {
			byes[m.Round]++
			assert.Equal(t, models.MatchCompleted, m.Status)
		}
	}
	for round, seen := range perRound {
		assert.Len(t, seen, 7, "round %d", round)
		assert.Equal(t, 1, byes[round], "round %d", round)
	}
}

func TestRoundRobinSecondLegMirrorsFirst(t *testing.T) {
	matches, err := NewRoundRobinGenerator().Generate(GenerateParams{
		Entrants: entrants(4),
		Settings: models.StageSettings{Legs: 2},
	})
	require.NoError(t, err)
	require.Len(t, matches, 12)

	home := map[[2]string]int{}
	for _, m := range matches {
		home[m.Participants]++
	}
	for pair, n := range home {
		assert.Equal(t, 1, n, "%v hosted twice", pair)
		assert.Equal(t, 1, home[[2]string{pair[1], pair[0]}], "%v has no return leg", pair)
	}
}

func TestRoundRobinRejectsBadInput(t *testing.T) {
	_, err := NewRoundRobinGenerator().Generate(GenerateParams{})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = NewRoundRobinGenerator().Generate(GenerateParams{Entrants: entrants(4), Settings: models.StageSettings{Legs: 3}})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRoundRobinCircleIndex(t *testing.T) {
	// Position 0 is fixed, the rest shift by one each round.
	assert.Equal(t, 0, roundRobinCircleIndex(0, 6, 3))
	assert.Equal(t, 1, roundRobinCircleIndex(1, 6, 0))
	assert.Equal(t, 5, roundRobinCircleIndex(1, 6, 1))
	assert.Equal(t, 1, roundRobinCircleIndex(2, 6, 1))
}
