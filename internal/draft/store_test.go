package draft

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
)

// staticResolver marks a fixed set of catalog ids as bodyweight.
type staticResolver map[primitive.ObjectID]bool

func (r staticResolver) IsBodyweight(_ context.Context, id primitive.ObjectID) bool {
	return r[id]
}

func simpleExercise(t *testing.T) domain.ExerciseDraft {
	t.Helper()
	e, err := domain.NewSimpleExerciseDraft(primitive.NewObjectID())
	require.NoError(t, err)
	return *e
}

func TestAddExerciseAssignsSequentialOrdinals(t *testing.T) {
	s := NewStore(nil)
	w := s.AddWorkout("Day 1")

	for i := 0; i < 3; i++ {
		s.AddExercise(w.ID, simpleExercise(t))
	}

	tree, sum := s.Snapshot()
	require.Len(t, tree.Workouts, 1)
	require.Len(t, tree.Workouts[0].Exercises, 3)
	for i, e := range tree.Workouts[0].Exercises {
		assert.Equal(t, i+1, e.Position)
	}
	assert.Equal(t, 3, sum.TotalExercises)
}

func TestRemoveExerciseKeepsOrdinalGaps(t *testing.T) {
	s := NewStore(nil)
	w := s.AddWorkout("Day 1")
	for i := 0; i < 3; i++ {
		s.AddExercise(w.ID, simpleExercise(t))
	}
	tree, _ := s.Snapshot()
	middle := tree.Workouts[0].Exercises[1]

	s.RemoveExercise(w.ID, middle.ID)

	tree, _ = s.Snapshot()
	require.Len(t, tree.Workouts[0].Exercises, 2)
	// Ordinals are stable insertion handles; the gap at 2 stays.
	assert.Equal(t, 1, tree.Workouts[0].Exercises[0].Position)
	assert.Equal(t, 3, tree.Workouts[0].Exercises[1].Position)

	// The next add continues from the current count, not the max ordinal.
	s.AddExercise(w.ID, simpleExercise(t))
	tree, _ = s.Snapshot()
	assert.Equal(t, 3, tree.Workouts[0].Exercises[2].Position)
}

func TestRemoveWorkoutRenumbersPositions(t *testing.T) {
	s := NewStore(nil)
	s.AddWorkout("A")
	b := s.AddWorkout("B")
	s.AddWorkout("C")

	s.RemoveWorkout(b.ID)

	tree, _ := s.Snapshot()
	require.Len(t, tree.Workouts, 2)
	assert.Equal(t, 1, tree.Workouts[0].Position)
	assert.Equal(t, 2, tree.Workouts[1].Position)
}

func TestAddSeriesDefaults(t *testing.T) {
	s := NewStore(nil)
	w := s.AddWorkout("Day 1")
	e := simpleExercise(t)
	s.AddExercise(w.ID, e)

	s.AddSeries(w.ID, e.ID)
	s.AddSeries(w.ID, e.ID)

	tree, _ := s.Snapshot()
	sets := tree.Workouts[0].Exercises[0].Sets
	require.Len(t, sets, 2)
	assert.Equal(t, 1, sets[0].Number)
	assert.Equal(t, 2, sets[1].Number)
	assert.Equal(t, domain.DefaultReps, sets[0].Reps)
	assert.Equal(t, domain.DefaultLoad, sets[0].Load)
	assert.Equal(t, domain.DefaultRestSeconds, sets[0].RestSeconds)
	assert.False(t, sets[0].DropSet)
}

func TestUpdateSeriesCoercesInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)
	w := s.AddWorkout("Day 1")
	e := simpleExercise(t)
	s.AddExercise(w.ID, e)
	s.AddSeries(w.ID, e.ID)
	tree, _ := s.Snapshot()
	setID := tree.Workouts[0].Exercises[0].Sets[0].ID

	tests := []struct {
		field SeriesField
		raw   string
	}{
		{FieldReps, "8"},
		{FieldLoad, "42.5"},
		{FieldRest, "60"},
	}
	for _, tt := range tests {
		s.UpdateSeries(ctx, w.ID, e.ID, setID, tt.field, tt.raw)
	}
	tree, _ = s.Snapshot()
	set := tree.Workouts[0].Exercises[0].Sets[0]
	assert.Equal(t, 8, set.Reps)
	assert.Equal(t, 42.5, set.Load)
	assert.Equal(t, 60, set.RestSeconds)

	// Empty and garbage input falls back to defaults, silently.
	s.UpdateSeries(ctx, w.ID, e.ID, setID, FieldReps, "")
	s.UpdateSeries(ctx, w.ID, e.ID, setID, FieldLoad, "abc")
	tree, _ = s.Snapshot()
	set = tree.Workouts[0].Exercises[0].Sets[0]
	assert.Equal(t, domain.DefaultReps, set.Reps)
	assert.Equal(t, domain.DefaultLoad, set.Load)
}

func TestBodyweightLoadPatchIsNoOp(t *testing.T) {
	ctx := context.Background()
	bwID := primitive.NewObjectID()
	s := NewStore(staticResolver{bwID: true})
	w := s.AddWorkout("Day 1")
	e, err := domain.NewSimpleExerciseDraft(bwID)
	require.NoError(t, err)
	s.AddExercise(w.ID, *e)
	s.AddSeries(w.ID, e.ID)
	tree, _ := s.Snapshot()
	setID := tree.Workouts[0].Exercises[0].Sets[0].ID

	s.UpdateSeries(ctx, w.ID, e.ID, setID, FieldLoad, "100")

	tree, _ = s.Snapshot()
	assert.Equal(t, domain.DefaultLoad, tree.Workouts[0].Exercises[0].Sets[0].Load)

	// Reps still patch normally.
	s.UpdateSeries(ctx, w.ID, e.ID, setID, FieldReps, "15")
	tree, _ = s.Snapshot()
	assert.Equal(t, 15, tree.Workouts[0].Exercises[0].Sets[0].Reps)
}

func TestUpdateCombinedSeriesPatchesOneSide(t *testing.T) {
	ctx := context.Background()
	first := primitive.NewObjectID()
	bwSecond := primitive.NewObjectID()
	s := NewStore(staticResolver{bwSecond: true})
	w := s.AddWorkout("Day 1")
	e, err := domain.NewCombinedExerciseDraft(first, bwSecond)
	require.NoError(t, err)
	s.AddExercise(w.ID, *e)
	s.AddSeries(w.ID, e.ID)
	tree, _ := s.Snapshot()
	setID := tree.Workouts[0].Exercises[0].Sets[0].ID

	s.UpdateCombinedSeries(ctx, w.ID, e.ID, setID, 0, FieldLoad, "80")
	s.UpdateCombinedSeries(ctx, w.ID, e.ID, setID, 1, FieldReps, "20")
	// Second sub-exercise is bodyweight: load patch must not apply.
	s.UpdateCombinedSeries(ctx, w.ID, e.ID, setID, 1, FieldLoad, "55")

	tree, _ = s.Snapshot()
	set := tree.Workouts[0].Exercises[0].Sets[0]
	assert.Equal(t, 80.0, set.Load)
	assert.Equal(t, 20, set.Reps2)
	assert.Equal(t, domain.DefaultLoad, set.Load2)
}

func TestUpdateCombinedSeriesMissingSecondIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	// A tree decoded from storage can carry a combined exercise without
	// its second id; patching such a set must not panic or apply.
	malformed := domain.RoutineDraft{
		Workouts: []domain.WorkoutDraft{{
			ID:       "w1",
			Name:     "Day 1",
			Position: 1,
			Exercises: []domain.ExerciseDraft{{
				ID:          "e1",
				Kind:        domain.KindCombined,
				Exercise1ID: primitive.NewObjectID(),
				Position:    1,
				Sets:        []domain.SetDraft{{ID: "s1", Number: 1, Reps: domain.DefaultReps}},
			}},
		}},
	}
	s.Replace(malformed)

	s.UpdateCombinedSeries(ctx, "w1", "e1", "s1", 1, FieldReps, "15")
	s.UpdateCombinedSeries(ctx, "w1", "e1", "s1", 0, FieldLoad, "40")

	tree, _ := s.Snapshot()
	set := tree.Workouts[0].Exercises[0].Sets[0]
	assert.Equal(t, domain.DefaultReps, set.Reps)
	assert.Equal(t, 0, set.Reps2)
	assert.Equal(t, 0.0, set.Load)
}

func TestToggleDropSetClearsLoadOnToggleOff(t *testing.T) {
	s := NewStore(nil)
	w := s.AddWorkout("Day 1")
	e := simpleExercise(t)
	s.AddExercise(w.ID, e)
	s.AddSeries(w.ID, e.ID)
	tree, _ := s.Snapshot()
	setID := tree.Workouts[0].Exercises[0].Sets[0].ID

	s.ToggleDropSet(w.ID, e.ID, setID)
	s.UpdateDropSet(w.ID, e.ID, setID, "35")
	tree, _ = s.Snapshot()
	set := tree.Workouts[0].Exercises[0].Sets[0]
	require.True(t, set.DropSet)
	assert.Equal(t, 35.0, set.DropSetLoad)

	s.ToggleDropSet(w.ID, e.ID, setID)
	tree, _ = s.Snapshot()
	set = tree.Workouts[0].Exercises[0].Sets[0]
	assert.False(t, set.DropSet)
	assert.Equal(t, 0.0, set.DropSetLoad, "toggle off clears the reduced load")

	// Patching while off is ignored.
	s.UpdateDropSet(w.ID, e.ID, setID, "99")
	tree, _ = s.Snapshot()
	assert.Equal(t, 0.0, tree.Workouts[0].Exercises[0].Sets[0].DropSetLoad)
}

func TestMutationsAgainstMissingNodesAreNoOps(t *testing.T) {
	s := NewStore(nil)
	w := s.AddWorkout("Day 1")

	// None of these should panic or alter state.
	s.RemoveExercise(w.ID, "missing")
	s.RemoveExercise("missing-workout", "missing")
	s.AddSeries(w.ID, "missing")
	s.RemoveSeries(w.ID, "missing", "missing")
	s.UpdateSeries(context.Background(), w.ID, "missing", "missing", FieldReps, "10")
	s.ToggleDropSet(w.ID, "missing", "missing")

	_, sum := s.Snapshot()
	assert.Equal(t, 0, sum.TotalExercises)
}

func TestCombinedExerciseConstructorContract(t *testing.T) {
	id := primitive.NewObjectID()

	_, err := domain.NewCombinedExerciseDraft(id, primitive.NilObjectID)
	assert.ErrorIs(t, err, domain.ErrCombinedNeedsTwo)

	_, err = domain.NewCombinedExerciseDraft(id, id)
	assert.ErrorIs(t, err, domain.ErrCombinedNeedsTwo, "the two catalog ids must be distinct")

	e, err := domain.NewSimpleExerciseDraft(id)
	require.NoError(t, err)
	assert.Equal(t, domain.KindSimple, e.Kind)
	assert.Nil(t, e.Exercise2ID)
	assert.NoError(t, e.Validate())

	// A decoded draft that smuggled in a second id fails validation.
	second := primitive.NewObjectID()
	e.Exercise2ID = &second
	assert.ErrorIs(t, e.Validate(), domain.ErrSimpleHasSecondID)
}

// TestValidityInvariantRandomized drives the store with random
// add/remove sequences and checks that IsFormValid always equals
// "every workout has at least one exercise", recomputed independently.
func TestValidityInvariantRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 20; round++ {
		s := NewStore(nil)
		var workoutIDs []string

		for op := 0; op < 200; op++ {
			switch n := rng.Intn(10); {
			case n < 2:
				w := s.AddWorkout("w")
				workoutIDs = append(workoutIDs, w.ID)
			case n < 7 && len(workoutIDs) > 0:
				wid := workoutIDs[rng.Intn(len(workoutIDs))]
				s.AddExercise(wid, simpleExercise(t))
			case len(workoutIDs) > 0:
				wid := workoutIDs[rng.Intn(len(workoutIDs))]
				tree, _ := s.Snapshot()
				for _, w := range tree.Workouts {
					if w.ID == wid && len(w.Exercises) > 0 {
						s.RemoveExercise(wid, w.Exercises[rng.Intn(len(w.Exercises))].ID)
					}
				}
			}

			tree, sum := s.Snapshot()
			want := true
			for _, w := range tree.Workouts {
				if len(w.Exercises) == 0 {
					want = false
				}
			}
			require.Equal(t, want, sum.IsFormValid, "round %d op %d", round, op)
		}
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore(nil)
	w := s.AddWorkout("Day 1")
	e := simpleExercise(t)
	s.AddExercise(w.ID, e)
	s.AddSeries(w.ID, e.ID)

	tree, _ := s.Snapshot()
	tree.Workouts[0].Exercises[0].Sets[0].Reps = 999
	tree.Workouts[0].Name = "tampered"

	fresh, _ := s.Snapshot()
	assert.Equal(t, domain.DefaultReps, fresh.Workouts[0].Exercises[0].Sets[0].Reps)
	assert.Equal(t, "Day 1", fresh.Workouts[0].Name)
}

func TestClearExercisesResetsDraft(t *testing.T) {
	s := NewStore(nil)
	w := s.AddWorkout("Day 1")
	s.AddExercise(w.ID, simpleExercise(t))
	s.SetConfig(domain.RoutineConfig{Name: "Bulk"})

	s.ClearExercises()

	tree, sum := s.Snapshot()
	assert.Empty(t, tree.Workouts)
	assert.Equal(t, domain.RoutineConfig{}, tree.Config)
	assert.Equal(t, 0, sum.TotalExercises)
}
