package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

func finished() *models.Tournament {
	return &models.Tournament{
		ID:      "cup",
		Name:    "Summer Cup",
		Format:  models.FormatSingleElimination,
		Status:  models.StatusCompleted,
		Winner:  "p1",
		Version: 9,
	}
}

func TestArchiveUploadsBothDocuments(t *testing.T) {
	up := NewMemoryUploader("https://files.example.com/archive/")
	a := NewArchiver(up)

	final := []models.Standing{{ParticipantID: "p1", Rank: 1, Won: 3}}
	archive, err := a.Archive(context.Background(), finished(), final)
	require.NoError(t, err)

	assert.Equal(t, "https://files.example.com/archive/tournaments/cup/v9/tournament.json", archive.TournamentURL)
	assert.Equal(t, "https://files.example.com/archive/tournaments/cup/v9/standings.json", archive.StandingsURL)

	body, ok := up.Object("tournaments/cup/v9/tournament.json")
	require.True(t, ok)
	var got models.Tournament
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "p1", got.Winner)

	body, ok = up.Object("tournaments/cup/v9/standings.json")
	require.True(t, ok)
	assert.JSONEq(t, `[{"participantId":"p1","rank":1,"played":0,"won":3,"drawn":0,"lost":0,"goalsFor":0,"goalsAgainst":0,"goalDifference":0,"points":0}]`, string(body))
}

func TestArchiveCleansUpAfterFailure(t *testing.T) {
	up := NewMemoryUploader("https://files.example.com")
	up.FailKeys = map[string]bool{"tournaments/cup/v9/standings.json": true}

	_, err := NewArchiver(up).Archive(context.Background(), finished(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cup")
	assert.Empty(t, up.Keys())
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a/b.json", publicURL("https://cdn.example.com", "/a/b.json"))
	assert.Equal(t, "https://cdn.example.com/x/a.json", publicURL("https://cdn.example.com/x/", "a.json"))
	assert.Empty(t, publicURL("", "a.json"))
	assert.Empty(t, publicURL("https://cdn.example.com", ""))
}

func TestR2ConfigValidation(t *testing.T) {
	assert.False(t, CloudflareR2UploaderConfig{}.Enabled())

	partial := CloudflareR2UploaderConfig{AccountID: "acc", BucketName: "b"}
	assert.True(t, partial.Enabled())
	assert.Error(t, partial.Validate())

	full := CloudflareR2UploaderConfig{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "tournaments",
		PublicBaseURL:   "https://cdn.example.com",
	}
	assert.NoError(t, full.Validate())
}
