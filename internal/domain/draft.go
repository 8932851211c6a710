// internal/domain/draft.go
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseKind distinguishes a single exercise from a paired superset.
type ExerciseKind string

const (
	KindSimple   ExerciseKind = "simple"
	KindCombined ExerciseKind = "combined" // Two catalog exercises performed back to back
)

// Constructor contract violations. These indicate a bug at the call site,
// not user input; the store never produces drafts that violate them.
var (
	ErrCombinedNeedsTwo  = errors.New("combined exercise requires two distinct catalog exercise ids")
	ErrSimpleHasSecondID = errors.New("simple exercise must not carry a second catalog exercise id")
)

// Defaults applied to newly added sets and to empty/invalid numeric input.
const (
	DefaultReps        = 12
	DefaultLoad        = 0.0
	DefaultRestSeconds = 90
)

// SetDraft is one unit of repetitions+load within an ExerciseDraft.
// For combined exercises the Reps2/Load2 pair mirrors the second
// sub-exercise; for simple exercises those fields stay zero and unused.
type SetDraft struct {
	ID     string `bson:"id" json:"id"`
	Number int    `bson:"number" json:"number"` // 1-based, contiguous at creation time

	Reps  int     `bson:"reps" json:"reps"`
	Load  float64 `bson:"load" json:"load"`
	Reps2 int     `bson:"reps2,omitempty" json:"reps2,omitempty"`
	Load2 float64 `bson:"load2,omitempty" json:"load2,omitempty"`

	DropSet     bool    `bson:"dropSet" json:"dropSet"`
	DropSetLoad float64 `bson:"dropSetLoad,omitempty" json:"dropSetLoad,omitempty"`

	// Rest after this set, seconds. Irrelevant on the last set of the exercise.
	RestSeconds int `bson:"restSeconds" json:"restSeconds"`
}

// ExerciseDraft is one catalog exercise (or a combined pair) placed within
// a WorkoutDraft. Construct via NewSimpleExerciseDraft/NewCombinedExerciseDraft
// so the kind/second-id invariant cannot be violated.
type ExerciseDraft struct {
	ID          string              `bson:"id" json:"id"`
	Kind        ExerciseKind        `bson:"kind" json:"kind"`
	Exercise1ID primitive.ObjectID  `bson:"exercise1Id" json:"exercise1Id"`
	Exercise2ID *primitive.ObjectID `bson:"exercise2Id,omitempty" json:"exercise2Id,omitempty"`

	// Position is the insertion ordinal within the workout. Removals leave
	// gaps; it is a stable handle, not a display rank.
	Position int `bson:"position" json:"position"`

	// Rest after the whole exercise, seconds.
	RestSeconds int `bson:"restSeconds" json:"restSeconds"`

	Sets []SetDraft `bson:"sets" json:"sets"`
}

// NewSimpleExerciseDraft creates a single-exercise draft entry.
func NewSimpleExerciseDraft(exerciseID primitive.ObjectID) (*ExerciseDraft, error) {
	if exerciseID == primitive.NilObjectID {
		return nil, errors.New("catalog exercise id is required")
	}
	return &ExerciseDraft{
		ID:          uuid.NewString(),
		Kind:        KindSimple,
		Exercise1ID: exerciseID,
		RestSeconds: DefaultRestSeconds,
	}, nil
}

// NewCombinedExerciseDraft creates a paired (superset) draft entry.
func NewCombinedExerciseDraft(first, second primitive.ObjectID) (*ExerciseDraft, error) {
	if first == primitive.NilObjectID || second == primitive.NilObjectID || first == second {
		return nil, ErrCombinedNeedsTwo
	}
	return &ExerciseDraft{
		ID:          uuid.NewString(),
		Kind:        KindCombined,
		Exercise1ID: first,
		Exercise2ID: &second,
		RestSeconds: DefaultRestSeconds,
	}, nil
}

// IsCombined reports whether this entry is a paired superset.
func (e *ExerciseDraft) IsCombined() bool {
	return e.Kind == KindCombined
}

// Validate re-checks the kind/second-id invariant, e.g. after decoding a
// mirrored draft from storage.
func (e *ExerciseDraft) Validate() error {
	switch e.Kind {
	case KindCombined:
		if e.Exercise2ID == nil || *e.Exercise2ID == e.Exercise1ID {
			return ErrCombinedNeedsTwo
		}
	case KindSimple:
		if e.Exercise2ID != nil {
			return ErrSimpleHasSecondID
		}
	}
	return nil
}

// WorkoutDraft is one training-day template within a routine draft.
type WorkoutDraft struct {
	ID               string          `bson:"id" json:"id"`
	Name             string          `bson:"name" json:"name"`
	MuscleGroups     []string        `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"`
	Position         int             `bson:"position" json:"position"` // Unique and contiguous within the draft
	EstimatedMinutes int             `bson:"estimatedMinutes,omitempty" json:"estimatedMinutes,omitempty"`
	Exercises        []ExerciseDraft `bson:"exercises" json:"exercises"`
}

// NewWorkoutDraft creates an empty workout draft at the given position.
func NewWorkoutDraft(name string, position int) *WorkoutDraft {
	return &WorkoutDraft{
		ID:       uuid.NewString(),
		Name:     name,
		Position: position,
	}
}

// Routine-level enums for RoutineConfig.
type (
	Objective  string
	Difficulty string
)

const (
	ObjectiveHypertrophy  Objective = "hypertrophy"
	ObjectiveStrength     Objective = "strength"
	ObjectiveFatLoss      Objective = "fat_loss"
	ObjectiveConditioning Objective = "conditioning"

	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// RoutineConfig holds routine-level settings filled in on the final
// authoring step.
type RoutineConfig struct {
	Name            string     `bson:"name" json:"name"`
	Objective       Objective  `bson:"objective" json:"objective"`
	Difficulty      Difficulty `bson:"difficulty" json:"difficulty"`
	DurationWeeks   int        `bson:"durationWeeks" json:"durationWeeks"`
	SessionsPerWeek int        `bson:"sessionsPerWeek" json:"sessionsPerWeek"`
	PaymentTerms    string     `bson:"paymentTerms,omitempty" json:"paymentTerms,omitempty"`
	StartDate       *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	AllowSelfStart  bool       `bson:"allowSelfStart" json:"allowSelfStart"` // Aluno may execute workouts without professor sign-off
}

// RoutineDraft is the full draft tree for one authoring session.
type RoutineDraft struct {
	Workouts []WorkoutDraft `bson:"workouts" json:"workouts"`
	Config   RoutineConfig  `bson:"config" json:"config"`
}

// DraftSummary is the derived view recomputed from the tree on every
// mutation. It is never persisted independently.
type DraftSummary struct {
	TotalExercises           int  `json:"totalExercises"`
	WorkoutsWithExercises    int  `json:"workoutsWithExercises"`
	WorkoutsWithoutExercises int  `json:"workoutsWithoutExercises"`
	IsFormValid              bool `json:"isFormValid"` // Every workout has at least one exercise
}
