package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

func TestRegistryCoversEveryFormat(t *testing.T) {
	r := NewRegistry(PlacementFold)
	for _, f := range knownFormatsForTest {
		s, err := r.Strategy(f)
		require.NoError(t, err, f)
		assert.Equal(t, f, s.Format())
	}

	_, err := r.Strategy(models.Format("ladder"))
	assert.ErrorIs(t, err, errs.ErrValidation)
}

var knownFormatsForTest = []models.Format{
	models.FormatSingleElimination,
	models.FormatDoubleElimination,
	models.FormatRoundRobin,
	models.FormatSwiss,
	models.FormatMultiStage,
}

func TestUnsupportedFormatsRefuseToGenerate(t *testing.T) {
	r := NewRegistry(PlacementFold)
	for _, f := range []models.Format{models.FormatDoubleElimination, models.FormatSwiss, models.FormatMultiStage} {
		s, err := r.Strategy(f)
		require.NoError(t, err)
		matches, err := s.Generate(GenerateParams{Entrants: entrants(8)})
		assert.Nil(t, matches)
		assert.ErrorIs(t, err, errs.ErrValidation, f)
	}
}

func TestLinkageGraphRejectsInconsistentLinks(t *testing.T) {
	matches := []*models.Match{
		{ID: "a", NextMatchID: "c"},
		{ID: "b", NextMatchID: "c"},
		{ID: "c", PreviousMatches: []string{"a"}},
	}
	_, err := NewLinkageGraph(matches)
	assert.ErrorIs(t, err, ErrBrokenLinkage)

	matches[2].PreviousMatches = []string{"a", "b"}
	lg, err := NewLinkageGraph(matches)
	require.NoError(t, err)
	assert.Equal(t, "c", lg.Final())

	depth, err := lg.Depth()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"c": 0, "a": 1, "b": 1}, depth)
}

func TestLinkageGraphRejectsTwoFinals(t *testing.T) {
	_, err := NewLinkageGraph([]*models.Match{{ID: "a"}, {ID: "b"}})
	assert.ErrorIs(t, err, ErrBrokenLinkage)
}
