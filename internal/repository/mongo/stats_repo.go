package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/repository"
)

const statsCollectionName = "aluno_stats"

// mongoStatsRepository implements repository.StatsRepository
type mongoStatsRepository struct {
	collection *mongo.Collection
}

// NewMongoStatsRepository creates a new stats repository backed by MongoDB.
func NewMongoStatsRepository(db *mongo.Database) repository.StatsRepository {
	return &mongoStatsRepository{
		collection: db.Collection(statsCollectionName),
	}
}

// GetByAlunoID retrieves the gamification aggregate for one aluno.
// Returns ErrNotFound before the aluno's first completed workout.
func (r *mongoStatsRepository) GetByAlunoID(ctx context.Context, alunoID primitive.ObjectID) (*domain.AlunoStats, error) {
	var stats domain.AlunoStats
	err := r.collection.FindOne(ctx, bson.M{"alunoId": alunoID}).Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// Upsert writes the aggregate, creating the row on the first completion.
// Whole-document replacement: concurrent completions from multiple
// devices are last-write-wins by design.
func (r *mongoStatsRepository) Upsert(ctx context.Context, stats *domain.AlunoStats) error {
	if stats.AlunoID == primitive.NilObjectID {
		return errors.New("aluno ID is required")
	}
	stats.UpdatedAt = time.Now().UTC()

	filter := bson.M{"alunoId": stats.AlunoID}
	update := bson.M{
		"$set": bson.M{
			"currentStreak":         stats.CurrentStreak,
			"longestStreak":         stats.LongestStreak,
			"lastWorkoutDate":       stats.LastWorkoutDate,
			"longestWorkoutMinutes": stats.LongestWorkoutMinutes,
			"totalWorkouts":         stats.TotalWorkouts,
			"totalMinutes":          stats.TotalMinutes,
			"totalPoints":           stats.TotalPoints,
			"currentLevel":          stats.CurrentLevel,
			"updatedAt":             stats.UpdatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// EnsureStatsIndexes creates necessary indexes for the aluno_stats collection.
func EnsureStatsIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "alunoId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
