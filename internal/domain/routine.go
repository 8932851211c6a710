// internal/domain/routine.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Routine is the persisted multi-week training program produced by
// finalizing a draft. Workouts/exercises/sets are stored as separate rows
// linked back here, with professor/aluno ids denormalized for query/auth.
type Routine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProfessorID primitive.ObjectID `bson:"professorId" json:"professorId"`
	AlunoID     primitive.ObjectID `bson:"alunoId" json:"alunoId"`

	Name            string     `bson:"name" json:"name"`
	Objective       Objective  `bson:"objective" json:"objective"`
	Difficulty      Difficulty `bson:"difficulty" json:"difficulty"`
	DurationWeeks   int        `bson:"durationWeeks" json:"durationWeeks"`
	SessionsPerWeek int        `bson:"sessionsPerWeek" json:"sessionsPerWeek"`
	PaymentTerms    string     `bson:"paymentTerms,omitempty" json:"paymentTerms,omitempty"`
	StartDate       *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	AllowSelfStart  bool       `bson:"allowSelfStart" json:"allowSelfStart"`
	IsActive        bool       `bson:"isActive" json:"isActive"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RoutineWorkout is one training-day row within a persisted Routine.
type RoutineWorkout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID   primitive.ObjectID `bson:"routineId" json:"routineId"`
	ProfessorID primitive.ObjectID `bson:"professorId" json:"professorId"` // Denormalized
	AlunoID     primitive.ObjectID `bson:"alunoId" json:"alunoId"`         // Denormalized

	Name             string   `bson:"name" json:"name"`
	MuscleGroups     []string `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"`
	Position         int      `bson:"position" json:"position"`
	EstimatedMinutes int      `bson:"estimatedMinutes,omitempty" json:"estimatedMinutes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// RoutineExercise is one exercise row within a persisted workout.
type RoutineExercise struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	RoutineID primitive.ObjectID `bson:"routineId" json:"routineId"` // Denormalized

	Kind        ExerciseKind        `bson:"kind" json:"kind"`
	Exercise1ID primitive.ObjectID  `bson:"exercise1Id" json:"exercise1Id"`
	Exercise2ID *primitive.ObjectID `bson:"exercise2Id,omitempty" json:"exercise2Id,omitempty"`
	Position    int                 `bson:"position" json:"position"`
	RestSeconds int                 `bson:"restSeconds" json:"restSeconds"`

	Sets []RoutineSet `bson:"sets" json:"sets"` // Embedded; sets are never queried independently
}

// RoutineSet mirrors SetDraft in its persisted form.
type RoutineSet struct {
	Number      int     `bson:"number" json:"number"`
	Reps        int     `bson:"reps" json:"reps"`
	Load        float64 `bson:"load" json:"load"`
	Reps2       int     `bson:"reps2,omitempty" json:"reps2,omitempty"`
	Load2       float64 `bson:"load2,omitempty" json:"load2,omitempty"`
	DropSet     bool    `bson:"dropSet" json:"dropSet"`
	DropSetLoad float64 `bson:"dropSetLoad,omitempty" json:"dropSetLoad,omitempty"`
	RestSeconds int     `bson:"restSeconds" json:"restSeconds"`
}
