package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/draft"
	"fitlink/coach-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAlunoNotFound      = errors.New("aluno not found")
	ErrAlunoNotCoached    = errors.New("aluno is not coached by this professor")
	ErrDraftInvalid       = errors.New("draft is not valid for submission: every workout needs at least one exercise")
	ErrDraftEmpty         = errors.New("draft has no workouts to submit")
	ErrRoutineNotFound    = errors.New("routine not found")
	ErrRoutineAccessDenied = errors.New("access denied to this routine")
)

// Draft mirror writes are debounced by this much.
const mirrorDebounce = 2 * time.Second

// --- Service Interface ---
type RoutineService interface {
	// Draft returns the live draft store for an aluno's authoring
	// session, creating it (and resuming from the durable mirror) on
	// first access.
	Draft(ctx context.Context, professorID, alunoID primitive.ObjectID) (*draft.Store, error)
	// DiscardDraft drops the in-memory session and its durable mirror.
	DiscardDraft(ctx context.Context, professorID, alunoID primitive.ObjectID) error
	// Finalize flattens the draft into persisted routine rows.
	Finalize(ctx context.Context, professorID, alunoID primitive.ObjectID) (*domain.Routine, error)
	GetRoutinesForAluno(ctx context.Context, alunoID primitive.ObjectID) ([]domain.Routine, error)
	GetRoutineDetail(ctx context.Context, requesterID, routineID primitive.ObjectID) (*domain.Routine, []domain.RoutineWorkout, map[string][]domain.RoutineExercise, error)
}

// draftSession pairs a store with its mirror decorator.
type draftSession struct {
	store  *draft.Store
	mirror *draft.Mirror
}

// routineService implements the RoutineService interface.
type routineService struct {
	userRepo    repository.UserRepository
	routineRepo repository.RoutineRepository
	mirrorRepo  repository.DraftMirrorRepository
	equipment   draft.EquipmentResolver

	mu       sync.Mutex
	sessions map[primitive.ObjectID]*draftSession // Keyed by aluno
}

// NewRoutineService creates a new instance of routineService.
func NewRoutineService(
	userRepo repository.UserRepository,
	routineRepo repository.RoutineRepository,
	mirrorRepo repository.DraftMirrorRepository,
	equipment draft.EquipmentResolver,
) RoutineService {
	return &routineService{
		userRepo:    userRepo,
		routineRepo: routineRepo,
		mirrorRepo:  mirrorRepo,
		equipment:   equipment,
		sessions:    make(map[primitive.ObjectID]*draftSession),
	}
}

// requireCoached verifies the professor coaches the aluno.
func (s *routineService) requireCoached(ctx context.Context, professorID, alunoID primitive.ObjectID) error {
	aluno, err := s.userRepo.GetByID(ctx, alunoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAlunoNotFound
		}
		return err
	}
	if !aluno.IsAluno() || aluno.ProfessorID == nil || *aluno.ProfessorID != professorID {
		return ErrAlunoNotCoached
	}
	return nil
}

// Draft returns the aluno's authoring session, resuming from the mirror
// when one exists.
func (s *routineService) Draft(ctx context.Context, professorID, alunoID primitive.ObjectID) (*draft.Store, error) {
	if err := s.requireCoached(ctx, professorID, alunoID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if session, ok := s.sessions[alunoID]; ok {
		s.mu.Unlock()
		return session.store, nil
	}
	s.mu.Unlock()

	// Build the session outside the lock: the mirror load is a network
	// call.
	store := draft.NewStore(s.equipment)
	if mirrored, err := s.mirrorRepo.LoadDraft(ctx, alunoID); err == nil {
		if verr := validateDraftTree(*mirrored); verr == nil {
			store.Replace(*mirrored)
		} else {
			// Best-effort resume: a corrupt mirror starts a fresh draft
			// rather than blocking authoring.
			log.Printf("WARN: discarding invalid draft mirror for aluno %s: %v", alunoID.Hex(), verr)
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		// Same policy for a failed load.
		log.Printf("WARN: could not load draft mirror for aluno %s: %v", alunoID.Hex(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[alunoID]; ok {
		// Another request created the session while we were loading.
		return session.store, nil
	}
	session := &draftSession{
		store:  store,
		mirror: draft.NewMirror(store, s.mirrorRepo, alunoID, mirrorDebounce),
	}
	s.sessions[alunoID] = session
	return store, nil
}

// DiscardDraft drops the session and its durable mirror.
func (s *routineService) DiscardDraft(ctx context.Context, professorID, alunoID primitive.ObjectID) error {
	if err := s.requireCoached(ctx, professorID, alunoID); err != nil {
		return err
	}

	s.dropSession(alunoID)
	return s.mirrorRepo.DeleteDraft(ctx, alunoID)
}

// Finalize validates the draft, flattens it into routine rows and clears
// the session. The gate is the derived IsFormValid plus a non-empty
// workout list.
func (s *routineService) Finalize(ctx context.Context, professorID, alunoID primitive.ObjectID) (*domain.Routine, error) {
	if err := s.requireCoached(ctx, professorID, alunoID); err != nil {
		return nil, err
	}

	store, err := s.Draft(ctx, professorID, alunoID)
	if err != nil {
		return nil, err
	}
	tree, summary := store.Snapshot()
	if len(tree.Workouts) == 0 {
		return nil, ErrDraftEmpty
	}
	if !summary.IsFormValid {
		return nil, ErrDraftInvalid
	}

	routine := &domain.Routine{
		ProfessorID:     professorID,
		AlunoID:         alunoID,
		Name:            tree.Config.Name,
		Objective:       tree.Config.Objective,
		Difficulty:      tree.Config.Difficulty,
		DurationWeeks:   tree.Config.DurationWeeks,
		SessionsPerWeek: tree.Config.SessionsPerWeek,
		PaymentTerms:    tree.Config.PaymentTerms,
		StartDate:       tree.Config.StartDate,
		AllowSelfStart:  tree.Config.AllowSelfStart,
		IsActive:        true,
	}
	routineID, err := s.routineRepo.CreateRoutine(ctx, routine)
	if err != nil {
		return nil, err
	}
	routine.ID = routineID

	for _, w := range tree.Workouts {
		workout := &domain.RoutineWorkout{
			RoutineID:        routineID,
			ProfessorID:      professorID,
			AlunoID:          alunoID,
			Name:             w.Name,
			MuscleGroups:     w.MuscleGroups,
			Position:         w.Position,
			EstimatedMinutes: w.EstimatedMinutes,
		}
		workoutID, err := s.routineRepo.CreateWorkout(ctx, workout)
		if err != nil {
			return nil, err
		}

		rows := make([]domain.RoutineExercise, 0, len(w.Exercises))
		for _, e := range w.Exercises {
			rows = append(rows, flattenExercise(routineID, workoutID, e))
		}
		if err := s.routineRepo.CreateExercises(ctx, rows); err != nil {
			return nil, err
		}
	}

	// Submission succeeded: the draft session and its resume point are
	// done.
	s.dropSession(alunoID)
	if err := s.mirrorRepo.DeleteDraft(ctx, alunoID); err != nil {
		log.Printf("WARN: could not delete draft mirror for aluno %s: %v", alunoID.Hex(), err)
	}

	return routine, nil
}

// GetRoutinesForAluno lists an aluno's routines, newest first.
func (s *routineService) GetRoutinesForAluno(ctx context.Context, alunoID primitive.ObjectID) ([]domain.Routine, error) {
	if alunoID == primitive.NilObjectID {
		return nil, errors.New("aluno ID cannot be nil")
	}
	return s.routineRepo.GetRoutinesByAlunoID(ctx, alunoID)
}

// GetRoutineDetail loads a routine with its flattened workout and
// exercise rows, keyed by workout id hex. The requester must be the
// owning professor or the assigned aluno.
func (s *routineService) GetRoutineDetail(ctx context.Context, requesterID, routineID primitive.ObjectID) (*domain.Routine, []domain.RoutineWorkout, map[string][]domain.RoutineExercise, error) {
	routine, err := s.routineRepo.GetRoutineByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil, ErrRoutineNotFound
		}
		return nil, nil, nil, err
	}
	if routine.ProfessorID != requesterID && routine.AlunoID != requesterID {
		return nil, nil, nil, ErrRoutineAccessDenied
	}

	workouts, err := s.routineRepo.GetWorkoutsByRoutineID(ctx, routineID)
	if err != nil {
		return nil, nil, nil, err
	}

	exercisesByWorkout := make(map[string][]domain.RoutineExercise, len(workouts))
	for _, w := range workouts {
		rows, err := s.routineRepo.GetExercisesByWorkoutID(ctx, w.ID)
		if err != nil {
			return nil, nil, nil, err
		}
		exercisesByWorkout[w.ID.Hex()] = rows
	}
	return routine, workouts, exercisesByWorkout, nil
}

func (s *routineService) dropSession(alunoID primitive.ObjectID) {
	s.mu.Lock()
	session, ok := s.sessions[alunoID]
	if ok {
		delete(s.sessions, alunoID)
	}
	s.mu.Unlock()
	if ok {
		session.mirror.Stop()
	}
}

// validateDraftTree re-checks the per-exercise invariants of a decoded
// draft before it is trusted as session state.
func validateDraftTree(d domain.RoutineDraft) error {
	for _, w := range d.Workouts {
		for i := range w.Exercises {
			if err := w.Exercises[i].Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// flattenExercise maps a draft exercise (uuid ids, session-local) onto a
// persisted row.
func flattenExercise(routineID, workoutID primitive.ObjectID, e domain.ExerciseDraft) domain.RoutineExercise {
	row := domain.RoutineExercise{
		RoutineID:   routineID,
		WorkoutID:   workoutID,
		Kind:        e.Kind,
		Exercise1ID: e.Exercise1ID,
		Exercise2ID: e.Exercise2ID,
		Position:    e.Position,
		RestSeconds: e.RestSeconds,
		Sets:        make([]domain.RoutineSet, 0, len(e.Sets)),
	}
	for _, set := range e.Sets {
		row.Sets = append(row.Sets, domain.RoutineSet{
			Number:      set.Number,
			Reps:        set.Reps,
			Load:        set.Load,
			Reps2:       set.Reps2,
			Load2:       set.Load2,
			DropSet:     set.DropSet,
			DropSetLoad: set.DropSetLoad,
			RestSeconds: set.RestSeconds,
		})
	}
	return row
}
