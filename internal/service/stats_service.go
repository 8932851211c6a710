package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/gamify"
	"fitlink/coach-app/internal/repository"
)

// --- Error Definitions ---
var (
	// ErrStatsWriteFailed wraps a persistence failure after the engine
	// already computed the result. Callers surface "couldn't save
	// progress" but still show the computed result.
	ErrStatsWriteFailed = errors.New("failed to save progress")

	ErrStatsNotFound = errors.New("stats not found for aluno")
)

// --- Service Interface ---
type StatsService interface {
	// CompleteWorkout runs the streak/points engine over the aluno's
	// aggregate and persists the result. The returned CompletionResult
	// is valid even when err is ErrStatsWriteFailed: the calculation
	// succeeded, only the write did not. No automatic retries: whether
	// to retry or queue the write is the caller's decision.
	CompleteWorkout(ctx context.Context, alunoID primitive.ObjectID, completedAt time.Time, durationMinutes int) (*gamify.CompletionResult, error)
	GetStats(ctx context.Context, alunoID primitive.ObjectID) (*domain.AlunoStats, error)
}

// --- Service Implementation ---

// statsService implements the StatsService interface. The read-modify-
// write here is last-write-wins across devices; the backing store owns
// any stronger guarantee.
type statsService struct {
	statsRepo repository.StatsRepository
}

// NewStatsService creates a new instance of statsService.
func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

// CompleteWorkout processes one completed workout. Stats rows are
// materialized lazily: the first completion starts from the zero-valued
// aggregate. Points are awarded per completed workout: a second workout
// on the same calendar day earns base points again, it just never
// double-increments the streak.
func (s *statsService) CompleteWorkout(ctx context.Context, alunoID primitive.ObjectID, completedAt time.Time, durationMinutes int) (*gamify.CompletionResult, error) {
	if alunoID == primitive.NilObjectID {
		return nil, errors.New("aluno ID is required")
	}

	prior, err := s.statsRepo.GetByAlunoID(ctx, alunoID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		prior = domain.NewAlunoStats(alunoID)
	}

	result := gamify.ProcessCompletion(*prior, completedAt, durationMinutes)
	result.Updated.ID = prior.ID
	result.Updated.AlunoID = alunoID

	if err := s.statsRepo.Upsert(ctx, &result.Updated); err != nil {
		// The computed result is still returned for optimistic display;
		// the aggregate write is retried on the next completion at worst.
		return &result, errors.Join(ErrStatsWriteFailed, err)
	}
	return &result, nil
}

// GetStats retrieves the aggregate, mapping a missing row (no completed
// workouts yet) to the zero-valued aggregate rather than an error.
func (s *statsService) GetStats(ctx context.Context, alunoID primitive.ObjectID) (*domain.AlunoStats, error) {
	stats, err := s.statsRepo.GetByAlunoID(ctx, alunoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewAlunoStats(alunoID), nil
		}
		return nil, err
	}
	return stats, nil
}
