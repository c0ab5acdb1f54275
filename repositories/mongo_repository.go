package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

const tournamentsCollection = "tournaments"

type mongoTournamentRepository struct {
	coll *mongo.Collection
}

// NewMongoTournamentRepository stores each aggregate as one document keyed by its id.
func NewMongoTournamentRepository(db *mongo.Database) TournamentRepository {
	return newMongoTournamentRepository(db.Collection(tournamentsCollection))
}

func newMongoTournamentRepository(coll *mongo.Collection) *mongoTournamentRepository {
	return &mongoTournamentRepository{coll: coll}
}

func (r *mongoTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	t.Version = 1
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		t.Version = 0
		if mongo.IsDuplicateKeyError(err) {
			return ErrTournamentExists
		}
		return fmt.Errorf("tournament insert failed: %w", err)
	}
	return nil
}

func (r *mongoTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	var t models.Tournament
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to fetch tournament %s: %w", id, err)
	}
	return &t, nil
}

func (r *mongoTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	query := bson.D{}
	if len(filter.Statuses) > 0 {
		query = append(query, bson.E{Key: "status", Value: bson.D{{Key: "$in", Value: filter.Statuses}}})
	}
	if filter.Format != nil {
		query = append(query, bson.E{Key: "format", Value: *filter.Format})
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	return r.find(ctx, query, opts)
}

func (r *mongoTournamentRepository) Save(ctx context.Context, t *models.Tournament) error {
	next := *t
	next.Version = t.Version + 1

	filter := bson.D{{Key: "_id", Value: t.ID}, {Key: "version", Value: t.Version}}
	res, err := r.coll.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return fmt.Errorf("tournament update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: t.ID}})
		if err != nil {
			return fmt.Errorf("failed to check tournament %s: %w", t.ID, err)
		}
		if n == 0 {
			return ErrTournamentNotFound
		}
		return ErrVersionConflict
	}
	t.Version = next.Version
	return nil
}

func (r *mongoTournamentRepository) ListRegistrationDue(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := bson.D{
		{Key: "status", Value: models.StatusRegistration},
		{Key: "registrationClosesAt", Value: bson.D{{Key: "$lte", Value: now}}},
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "registrationClosesAt", Value: 1}}))
}

func (r *mongoTournamentRepository) find(ctx context.Context, query bson.D, opts *options.FindOptions) ([]*models.Tournament, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("tournament query failed: %w", err)
	}
	defer cursor.Close(ctx)

	tournaments := make([]*models.Tournament, 0)
	for cursor.Next(ctx) {
		var t models.Tournament
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("failed to decode tournament: %w", err)
		}
		tournaments = append(tournaments, &t)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}
