package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserNotAluno       = errors.New("user with this email is not an aluno")
	ErrAlunoAlreadyLinked = errors.New("aluno is already coached by a professor")
)

// --- Service Interface ---
type ProfessorService interface {
	// AddAlunoByEmail links an existing aluno account to the professor's
	// roster.
	AddAlunoByEmail(ctx context.Context, professorID primitive.ObjectID, alunoEmail string) (*domain.User, error)
	GetManagedAlunos(ctx context.Context, professorID primitive.ObjectID) ([]domain.User, error)
}

// --- Service Implementation ---

// professorService implements the ProfessorService interface.
type professorService struct {
	userRepo repository.UserRepository
}

// NewProfessorService creates a new instance of professorService.
func NewProfessorService(userRepo repository.UserRepository) ProfessorService {
	return &professorService{userRepo: userRepo}
}

// AddAlunoByEmail links the aluno on both sides of the relationship:
// the roster entry on the professor and the back-reference on the aluno.
func (s *professorService) AddAlunoByEmail(ctx context.Context, professorID primitive.ObjectID, alunoEmail string) (*domain.User, error) {
	if professorID == primitive.NilObjectID || alunoEmail == "" {
		return nil, errors.New("professor ID and aluno email are required")
	}

	aluno, err := s.userRepo.GetByEmail(ctx, alunoEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !aluno.IsAluno() {
		return nil, ErrUserNotAluno
	}
	if aluno.ProfessorID != nil && *aluno.ProfessorID != professorID {
		return nil, ErrAlunoAlreadyLinked
	}

	if err := s.userRepo.SetProfessorForAluno(ctx, aluno.ID, professorID); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddAlunoToProfessor(ctx, professorID, aluno.ID); err != nil {
		return nil, err
	}

	professorRef := professorID
	aluno.ProfessorID = &professorRef
	aluno.PasswordHash = ""
	return aluno, nil
}

// GetManagedAlunos retrieves the professor's roster.
func (s *professorService) GetManagedAlunos(ctx context.Context, professorID primitive.ObjectID) ([]domain.User, error) {
	if professorID == primitive.NilObjectID {
		return nil, errors.New("professor ID cannot be nil")
	}
	return s.userRepo.GetAlunosByProfessorID(ctx, professorID)
}
