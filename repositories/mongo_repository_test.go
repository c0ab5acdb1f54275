package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

func tournamentDoc(id string, status models.TournamentStatus, version int64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Cup " + id},
		{Key: "format", Value: "single_elimination"},
		{Key: "status", Value: string(status)},
		{Key: "version", Value: version},
		{Key: "createdAt", Value: base},
	}
}

func TestMongoGetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes the stored document", func(mt *mtest.T) {
		repo := newMongoTournamentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.tournaments", mtest.FirstBatch,
			tournamentDoc("t1", models.StatusActive, 4)))

		got, err := repo.GetByID(context.Background(), "t1")
		require.NoError(t, err)
		assert.Equal(t, "Cup t1", got.Name)
		assert.Equal(t, models.StatusActive, got.Status)
		assert.Equal(t, int64(4), got.Version)
	})

	mt.Run("missing document", func(mt *mtest.T) {
		repo := newMongoTournamentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.tournaments", mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})
}

func TestMongoCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("inserts with version 1", func(mt *mtest.T) {
		repo := newMongoTournamentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		tour := tournament("t1", models.StatusDraft, base)
		require.NoError(t, repo.Create(context.Background(), tour))
		assert.Equal(t, int64(1), tour.Version)
	})

	mt.Run("duplicate id", func(mt *mtest.T) {
		repo := newMongoTournamentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		tour := tournament("t1", models.StatusDraft, base)
		assert.ErrorIs(t, repo.Create(context.Background(), tour), ErrTournamentExists)
		assert.Equal(t, int64(0), tour.Version)
	})
}

func TestMongoSave(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("bumps the version", func(mt *mtest.T) {
		repo := newMongoTournamentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		tour := tournament("t1", models.StatusRegistration, base)
		tour.Version = 2
		require.NoError(t, repo.Save(context.Background(), tour))
		assert.Equal(t, int64(3), tour.Version)
	})

	mt.Run("stale version", func(mt *mtest.T) {
		repo := newMongoTournamentRepository(mt.Coll)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "test.tournaments", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
		)

		tour := tournament("t1", models.StatusRegistration, base)
		tour.Version = 2
		assert.ErrorIs(t, repo.Save(context.Background(), tour), ErrVersionConflict)
		assert.Equal(t, int64(2), tour.Version)
	})

	mt.Run("gone", func(mt *mtest.T) {
		repo := newMongoTournamentRepository(mt.Coll)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "test.tournaments", mtest.FirstBatch),
		)

		tour := tournament("t1", models.StatusRegistration, base)
		assert.ErrorIs(t, repo.Save(context.Background(), tour), ErrTournamentNotFound)
	})
}

func TestMongoList(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reads every batch", func(mt *mtest.T) {
		repo := newMongoTournamentRepository(mt.Coll)
		first := mtest.CreateCursorResponse(1, "test.tournaments", mtest.FirstBatch,
			tournamentDoc("b", models.StatusActive, 1))
		second := mtest.CreateCursorResponse(1, "test.tournaments", mtest.NextBatch,
			tournamentDoc("a", models.StatusActive, 3))
		last := mtest.CreateCursorResponse(0, "test.tournaments", mtest.NextBatch)
		mt.AddMockResponses(first, second, last)

		got, err := repo.List(context.Background(), ListTournamentsFilter{
			Statuses: []models.TournamentStatus{models.StatusActive},
			Limit:    5,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, ids(got))
	})
}

// TestMongoRoundTrip needs a live server: MONGO_TEST_URI=mongodb://localhost:27017 go test ./repositories
func TestMongoRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	db := client.Database("tournament_engine_test")
	t.Cleanup(func() {
		db.Drop(context.Background())
		client.Disconnect(context.Background())
	})

	repo := NewMongoTournamentRepository(db)
	tour := tournament("roundtrip", models.StatusRegistration, base)
	closes := base.Add(-1)
	tour.RegistrationClosesAt = &closes
	tour.Participants = []*models.Participant{{ID: "p1", Name: "Ana", Status: models.ParticipantRegistered, RegisteredAt: base}}
	require.NoError(t, repo.Create(ctx, tour))

	loaded, err := repo.GetByID(ctx, "roundtrip")
	require.NoError(t, err)
	assert.Equal(t, "Ana", loaded.Participant("p1").Name)

	due, err := repo.ListRegistrationDue(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, []string{"roundtrip"}, ids(due))

	loaded.Status = models.StatusUpcoming
	require.NoError(t, repo.Save(ctx, loaded))
	assert.ErrorIs(t, repo.Save(ctx, tour), ErrVersionConflict)
}
