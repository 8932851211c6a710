package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/catalog"
	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrValidationFailed     = errors.New("exercise validation failed")
)

// --- Service Interface ---
type CatalogService interface {
	CreateExercise(ctx context.Context, professorID primitive.ObjectID, name, description, equipment, muscleGroup, difficulty, exerciseType, videoURL string) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetActiveExercises(ctx context.Context) ([]domain.Exercise, error)
	GetExercisesByProfessor(ctx context.Context, professorID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, professorID, exerciseID primitive.ObjectID, name, description, equipment, muscleGroup, difficulty, exerciseType, videoURL string) (*domain.Exercise, error)
	DeactivateExercise(ctx context.Context, professorID, exerciseID primitive.ObjectID) error
	Info(ctx context.Context, exerciseID primitive.ObjectID) catalog.Info
}

// --- Service Implementation ---

// catalogService implements the CatalogService interface. Writes go to
// the repository and bust the lookup cache; authoring-time reads come
// from the cache.
type catalogService struct {
	catalogRepo repository.CatalogRepository
	lookup      *catalog.Lookup
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(catalogRepo repository.CatalogRepository, lookup *catalog.Lookup) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		lookup:      lookup,
	}
}

// CreateExercise handles the creation of a new catalog exercise by a professor.
func (s *catalogService) CreateExercise(ctx context.Context, professorID primitive.ObjectID, name, description, equipment, muscleGroup, difficulty, exerciseType, videoURL string) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if professorID == primitive.NilObjectID {
		return nil, errors.New("professor ID is required to create an exercise")
	}

	exercise := &domain.Exercise{
		ProfessorID: professorID,
		Name:        name,
		Description: description,
		Equipment:   equipment,
		MuscleGroup: muscleGroup,
		Difficulty:  difficulty,
		Type:        exerciseType,
		VideoURL:    videoURL,
	}

	exerciseID, err := s.catalogRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}

	s.lookup.Invalidate()

	// Fetch again to return DB-populated timestamps.
	return s.catalogRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single catalog exercise, active or not.
func (s *catalogService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.catalogRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetActiveExercises retrieves the catalog served to authoring clients.
func (s *catalogService) GetActiveExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.catalogRepo.FetchActiveExercises(ctx)
}

// GetExercisesByProfessor retrieves a professor's own catalog, including
// deactivated entries.
func (s *catalogService) GetExercisesByProfessor(ctx context.Context, professorID primitive.ObjectID) ([]domain.Exercise, error) {
	if professorID == primitive.NilObjectID {
		return nil, errors.New("professor ID cannot be nil")
	}
	return s.catalogRepo.GetByProfessorID(ctx, professorID)
}

// UpdateExercise handles updating an existing exercise, ensuring ownership.
func (s *catalogService) UpdateExercise(ctx context.Context, professorID, exerciseID primitive.ObjectID, name, description, equipment, muscleGroup, difficulty, exerciseType, videoURL string) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if professorID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, errors.New("professor ID and exercise ID are required")
	}

	existing, err := s.catalogRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if existing.ProfessorID != professorID {
		return nil, ErrExerciseAccessDenied
	}

	existing.Name = name
	existing.Description = description
	existing.Equipment = equipment
	existing.MuscleGroup = muscleGroup
	existing.Difficulty = difficulty
	existing.Type = exerciseType
	existing.VideoURL = videoURL

	if err := s.catalogRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	s.lookup.Invalidate()
	return existing, nil
}

// DeactivateExercise soft-deletes an exercise, ensuring ownership. The
// repository filter enforces ownership at the DB level.
func (s *catalogService) DeactivateExercise(ctx context.Context, professorID, exerciseID primitive.ObjectID) error {
	if professorID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("professor ID and exercise ID are required")
	}

	if err := s.catalogRepo.Deactivate(ctx, exerciseID, professorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	s.lookup.Invalidate()
	return nil
}

// Info resolves cached display metadata; never fails.
func (s *catalogService) Info(ctx context.Context, exerciseID primitive.ObjectID) catalog.Info {
	return s.lookup.Info(ctx, exerciseID)
}
