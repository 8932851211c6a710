package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/gamify"
	"fitlink/coach-app/internal/repository"
)

// fakeStatsRepo is an in-memory StatsRepository with an injectable write
// failure.
type fakeStatsRepo struct {
	rows     map[primitive.ObjectID]domain.AlunoStats
	writeErr error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{rows: make(map[primitive.ObjectID]domain.AlunoStats)}
}

func (r *fakeStatsRepo) GetByAlunoID(_ context.Context, alunoID primitive.ObjectID) (*domain.AlunoStats, error) {
	stats, ok := r.rows[alunoID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &stats, nil
}

func (r *fakeStatsRepo) Upsert(_ context.Context, stats *domain.AlunoStats) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.rows[stats.AlunoID] = *stats
	return nil
}

func TestCompleteWorkoutMaterializesStatsLazily(t *testing.T) {
	repo := newFakeStatsRepo()
	svc := NewStatsService(repo)
	alunoID := primitive.NewObjectID()

	res, err := svc.CompleteWorkout(context.Background(), alunoID, time.Now(), 45)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated.TotalWorkouts)
	assert.Equal(t, gamify.RecordStreak, res.NewRecord)

	persisted, ok := repo.rows[alunoID]
	require.True(t, ok, "first completion creates the row")
	assert.Equal(t, res.Updated.TotalPoints, persisted.TotalPoints)
}

func TestCompleteWorkoutAccumulatesAcrossDays(t *testing.T) {
	repo := newFakeStatsRepo()
	svc := NewStatsService(repo)
	alunoID := primitive.NewObjectID()
	day1 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.Local)

	_, err := svc.CompleteWorkout(context.Background(), alunoID, day1, 30)
	require.NoError(t, err)
	res, err := svc.CompleteWorkout(context.Background(), alunoID, day1.AddDate(0, 0, 1), 40)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Updated.CurrentStreak)
	assert.Equal(t, 2, res.Updated.TotalWorkouts)
	assert.Equal(t, 70, res.Updated.TotalMinutes)
}

func TestCompleteWorkoutWriteFailureStillReturnsResult(t *testing.T) {
	repo := newFakeStatsRepo()
	repo.writeErr = errors.New("connection reset")
	svc := NewStatsService(repo)

	res, err := svc.CompleteWorkout(context.Background(), primitive.NewObjectID(), time.Now(), 25)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatsWriteFailed)
	require.NotNil(t, res, "computed result survives the failed write for optimistic display")
	assert.Equal(t, 1, res.Updated.TotalWorkouts)
}

func TestGetStatsMissingRowYieldsZeroAggregate(t *testing.T) {
	svc := NewStatsService(newFakeStatsRepo())
	alunoID := primitive.NewObjectID()

	stats, err := svc.GetStats(context.Background(), alunoID)

	require.NoError(t, err)
	assert.Equal(t, alunoID, stats.AlunoID)
	assert.Equal(t, 0, stats.TotalWorkouts)
	assert.Equal(t, domain.LevelBronze, stats.CurrentLevel)
}
