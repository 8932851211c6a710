package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddAlunoToProfessor(ctx context.Context, professorID, alunoID primitive.ObjectID) error
	GetAlunosByProfessorID(ctx context.Context, professorID primitive.ObjectID) ([]domain.User, error)
	SetProfessorForAluno(ctx context.Context, alunoID, professorID primitive.ObjectID) error
}

// CatalogRepository defines the interface for interacting with catalog
// exercise data. FetchActiveExercises also backs the in-memory lookup
// cache (catalog.Fetcher).
type CatalogRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByProfessorID(ctx context.Context, professorID primitive.ObjectID) ([]domain.Exercise, error)
	FetchActiveExercises(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Deactivate(ctx context.Context, id, professorID primitive.ObjectID) error // Soft delete; routines keep their references
}

// StatsRepository defines the interface for the per-aluno gamification
// aggregate. The read-modify-write around it is last-write-wins; there
// is no CAS across devices.
type StatsRepository interface {
	GetByAlunoID(ctx context.Context, alunoID primitive.ObjectID) (*domain.AlunoStats, error)
	Upsert(ctx context.Context, stats *domain.AlunoStats) error
}

// DraftMirrorRepository persists in-progress routine drafts keyed by
// aluno so an interrupted authoring session can resume.
type DraftMirrorRepository interface {
	SaveDraft(ctx context.Context, alunoID primitive.ObjectID, draft domain.RoutineDraft) error
	LoadDraft(ctx context.Context, alunoID primitive.ObjectID) (*domain.RoutineDraft, error)
	DeleteDraft(ctx context.Context, alunoID primitive.ObjectID) error
}

// RoutineRepository persists finalized routines and their flattened
// workout/exercise rows.
type RoutineRepository interface {
	CreateRoutine(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	CreateWorkout(ctx context.Context, workout *domain.RoutineWorkout) (primitive.ObjectID, error)
	CreateExercises(ctx context.Context, exercises []domain.RoutineExercise) error
	GetRoutineByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	GetRoutinesByAlunoID(ctx context.Context, alunoID primitive.ObjectID) ([]domain.Routine, error)
	GetWorkoutsByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineWorkout, error)
	GetExercisesByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.RoutineExercise, error)
}
