package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/repository"
)

// --- fakes ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, _ *domain.User) (primitive.ObjectID, error) {
	panic("not used")
}
func (r *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}
func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}
func (r *fakeUserRepo) AddAlunoToProfessor(_ context.Context, _, _ primitive.ObjectID) error {
	return nil
}
func (r *fakeUserRepo) GetAlunosByProfessorID(_ context.Context, _ primitive.ObjectID) ([]domain.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) SetProfessorForAluno(_ context.Context, _, _ primitive.ObjectID) error {
	return nil
}

type fakeRoutineRepo struct {
	routines  []domain.Routine
	workouts  []domain.RoutineWorkout
	exercises []domain.RoutineExercise
}

func (r *fakeRoutineRepo) CreateRoutine(_ context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	routine.ID = primitive.NewObjectID()
	r.routines = append(r.routines, *routine)
	return routine.ID, nil
}
func (r *fakeRoutineRepo) CreateWorkout(_ context.Context, workout *domain.RoutineWorkout) (primitive.ObjectID, error) {
	workout.ID = primitive.NewObjectID()
	r.workouts = append(r.workouts, *workout)
	return workout.ID, nil
}
func (r *fakeRoutineRepo) CreateExercises(_ context.Context, exercises []domain.RoutineExercise) error {
	r.exercises = append(r.exercises, exercises...)
	return nil
}
func (r *fakeRoutineRepo) GetRoutineByID(_ context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	for _, routine := range r.routines {
		if routine.ID == id {
			return &routine, nil
		}
	}
	return nil, repository.ErrNotFound
}
func (r *fakeRoutineRepo) GetRoutinesByAlunoID(_ context.Context, alunoID primitive.ObjectID) ([]domain.Routine, error) {
	var out []domain.Routine
	for _, routine := range r.routines {
		if routine.AlunoID == alunoID {
			out = append(out, routine)
		}
	}
	return out, nil
}
func (r *fakeRoutineRepo) GetWorkoutsByRoutineID(_ context.Context, routineID primitive.ObjectID) ([]domain.RoutineWorkout, error) {
	var out []domain.RoutineWorkout
	for _, w := range r.workouts {
		if w.RoutineID == routineID {
			out = append(out, w)
		}
	}
	return out, nil
}
func (r *fakeRoutineRepo) GetExercisesByWorkoutID(_ context.Context, workoutID primitive.ObjectID) ([]domain.RoutineExercise, error) {
	var out []domain.RoutineExercise
	for _, e := range r.exercises {
		if e.WorkoutID == workoutID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeMirrorRepo struct {
	drafts map[primitive.ObjectID]domain.RoutineDraft
}

func newFakeMirrorRepo() *fakeMirrorRepo {
	return &fakeMirrorRepo{drafts: make(map[primitive.ObjectID]domain.RoutineDraft)}
}

func (r *fakeMirrorRepo) SaveDraft(_ context.Context, alunoID primitive.ObjectID, d domain.RoutineDraft) error {
	r.drafts[alunoID] = d
	return nil
}
func (r *fakeMirrorRepo) LoadDraft(_ context.Context, alunoID primitive.ObjectID) (*domain.RoutineDraft, error) {
	d, ok := r.drafts[alunoID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}
func (r *fakeMirrorRepo) DeleteDraft(_ context.Context, alunoID primitive.ObjectID) error {
	delete(r.drafts, alunoID)
	return nil
}

// --- helpers ---

func coachedPair() (*fakeUserRepo, primitive.ObjectID, primitive.ObjectID) {
	professorID := primitive.NewObjectID()
	alunoID := primitive.NewObjectID()
	users := &fakeUserRepo{users: map[primitive.ObjectID]domain.User{
		professorID: {ID: professorID, Role: domain.RoleProfessor},
		alunoID:     {ID: alunoID, Role: domain.RoleAluno, ProfessorID: &professorID},
	}}
	return users, professorID, alunoID
}

// --- tests ---

func TestDraftRequiresCoachedAluno(t *testing.T) {
	users, professorID, alunoID := coachedPair()
	svc := NewRoutineService(users, &fakeRoutineRepo{}, newFakeMirrorRepo(), nil)

	_, err := svc.Draft(context.Background(), professorID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrAlunoNotFound)

	stranger := primitive.NewObjectID()
	_, err = svc.Draft(context.Background(), stranger, alunoID)
	assert.ErrorIs(t, err, ErrAlunoNotCoached)
}

func TestDraftResumesFromMirror(t *testing.T) {
	users, professorID, alunoID := coachedPair()
	mirrors := newFakeMirrorRepo()
	mirrors.drafts[alunoID] = domain.RoutineDraft{
		Workouts: []domain.WorkoutDraft{*domain.NewWorkoutDraft("Day A", 1)},
		Config:   domain.RoutineConfig{Name: "Cut"},
	}
	svc := NewRoutineService(users, &fakeRoutineRepo{}, mirrors, nil)

	store, err := svc.Draft(context.Background(), professorID, alunoID)

	require.NoError(t, err)
	tree, _ := store.Snapshot()
	require.Len(t, tree.Workouts, 1)
	assert.Equal(t, "Day A", tree.Workouts[0].Name)
	assert.Equal(t, "Cut", tree.Config.Name)
}

func TestDraftDiscardsCorruptMirror(t *testing.T) {
	users, professorID, alunoID := coachedPair()
	mirrors := newFakeMirrorRepo()
	// A combined exercise without its second id violates the draft
	// invariant; resuming from it would leave the session in a state
	// later mutations cannot handle.
	workout := *domain.NewWorkoutDraft("Day A", 1)
	workout.Exercises = []domain.ExerciseDraft{{
		ID:          "e1",
		Kind:        domain.KindCombined,
		Exercise1ID: primitive.NewObjectID(),
		Position:    1,
	}}
	mirrors.drafts[alunoID] = domain.RoutineDraft{Workouts: []domain.WorkoutDraft{workout}}
	svc := NewRoutineService(users, &fakeRoutineRepo{}, mirrors, nil)

	store, err := svc.Draft(context.Background(), professorID, alunoID)

	require.NoError(t, err)
	tree, _ := store.Snapshot()
	assert.Empty(t, tree.Workouts, "corrupt mirror starts a fresh draft")
}

func TestDraftReturnsSameSession(t *testing.T) {
	users, professorID, alunoID := coachedPair()
	svc := NewRoutineService(users, &fakeRoutineRepo{}, newFakeMirrorRepo(), nil)

	first, err := svc.Draft(context.Background(), professorID, alunoID)
	require.NoError(t, err)
	second, err := svc.Draft(context.Background(), professorID, alunoID)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestFinalizeRejectsInvalidDraft(t *testing.T) {
	users, professorID, alunoID := coachedPair()
	svc := NewRoutineService(users, &fakeRoutineRepo{}, newFakeMirrorRepo(), nil)

	_, err := svc.Finalize(context.Background(), professorID, alunoID)
	assert.ErrorIs(t, err, ErrDraftEmpty)

	store, err := svc.Draft(context.Background(), professorID, alunoID)
	require.NoError(t, err)
	store.AddWorkout("Day 1") // no exercises → invalid

	_, err = svc.Finalize(context.Background(), professorID, alunoID)
	assert.ErrorIs(t, err, ErrDraftInvalid)
}

func TestFinalizeFlattensDraftIntoRows(t *testing.T) {
	users, professorID, alunoID := coachedPair()
	routines := &fakeRoutineRepo{}
	mirrors := newFakeMirrorRepo()
	svc := NewRoutineService(users, routines, mirrors, nil)

	store, err := svc.Draft(context.Background(), professorID, alunoID)
	require.NoError(t, err)

	w1 := store.AddWorkout("Upper")
	w2 := store.AddWorkout("Lower")
	ex1, err := domain.NewSimpleExerciseDraft(primitive.NewObjectID())
	require.NoError(t, err)
	ex2, err := domain.NewCombinedExerciseDraft(primitive.NewObjectID(), primitive.NewObjectID())
	require.NoError(t, err)
	store.AddExercise(w1.ID, *ex1)
	store.AddExercise(w2.ID, *ex2)
	store.AddSeries(w1.ID, ex1.ID)
	store.AddSeries(w1.ID, ex1.ID)
	store.AddSeries(w2.ID, ex2.ID)
	store.SetConfig(domain.RoutineConfig{
		Name:            "Hypertrophy Block",
		Objective:       domain.ObjectiveHypertrophy,
		Difficulty:      domain.DifficultyIntermediate,
		DurationWeeks:   8,
		SessionsPerWeek: 4,
	})

	routine, err := svc.Finalize(context.Background(), professorID, alunoID)

	require.NoError(t, err)
	assert.Equal(t, "Hypertrophy Block", routine.Name)
	assert.Equal(t, professorID, routine.ProfessorID)
	assert.True(t, routine.IsActive)

	require.Len(t, routines.workouts, 2)
	assert.Equal(t, 1, routines.workouts[0].Position)
	assert.Equal(t, 2, routines.workouts[1].Position)

	require.Len(t, routines.exercises, 2)
	var combined *domain.RoutineExercise
	for i := range routines.exercises {
		if routines.exercises[i].Kind == domain.KindCombined {
			combined = &routines.exercises[i]
		}
	}
	require.NotNil(t, combined)
	require.NotNil(t, combined.Exercise2ID)
	require.Len(t, combined.Sets, 1)
	assert.Equal(t, domain.DefaultReps, combined.Sets[0].Reps)

	// Submission clears the resume point and the in-memory session.
	_, ok := mirrors.drafts[alunoID]
	assert.False(t, ok)
	fresh, err := svc.Draft(context.Background(), professorID, alunoID)
	require.NoError(t, err)
	assert.NotSame(t, store, fresh)
}

func TestGetRoutineDetailEnforcesAccess(t *testing.T) {
	users, professorID, alunoID := coachedPair()
	routines := &fakeRoutineRepo{}
	svc := NewRoutineService(users, routines, newFakeMirrorRepo(), nil)

	store, err := svc.Draft(context.Background(), professorID, alunoID)
	require.NoError(t, err)
	w := store.AddWorkout("Day 1")
	ex, err := domain.NewSimpleExerciseDraft(primitive.NewObjectID())
	require.NoError(t, err)
	store.AddExercise(w.ID, *ex)
	routine, err := svc.Finalize(context.Background(), professorID, alunoID)
	require.NoError(t, err)

	_, _, _, err = svc.GetRoutineDetail(context.Background(), primitive.NewObjectID(), routine.ID)
	assert.ErrorIs(t, err, ErrRoutineAccessDenied)

	got, workouts, byWorkout, err := svc.GetRoutineDetail(context.Background(), alunoID, routine.ID)
	require.NoError(t, err)
	assert.Equal(t, routine.ID, got.ID)
	require.Len(t, workouts, 1)
	assert.Len(t, byWorkout[workouts[0].ID.Hex()], 1)
}
