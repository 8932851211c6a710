// internal/domain/stats.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Level is a tier derived purely from cumulative points.
type Level string

const (
	LevelBronze Level = "bronze"
	LevelSilver Level = "silver"
	LevelGold   Level = "gold"
)

// Level thresholds, inclusive on the lower bound.
const (
	SilverMinPoints = 500
	GoldMinPoints   = 1500
)

// LevelFor maps cumulative points to a level.
func LevelFor(points int) Level {
	switch {
	case points >= GoldMinPoints:
		return LevelGold
	case points >= SilverMinPoints:
		return LevelSilver
	default:
		return LevelBronze
	}
}

// AlunoStats is the persisted gamification aggregate, one row per aluno.
// Created lazily on the first completed workout.
type AlunoStats struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AlunoID primitive.ObjectID `bson:"alunoId" json:"alunoId"` // Unique per aluno

	CurrentStreak   int        `bson:"currentStreak" json:"currentStreak"`
	LongestStreak   int        `bson:"longestStreak" json:"longestStreak"` // Monotonically non-decreasing
	LastWorkoutDate *time.Time `bson:"lastWorkoutDate,omitempty" json:"lastWorkoutDate,omitempty"`

	LongestWorkoutMinutes int `bson:"longestWorkoutMinutes" json:"longestWorkoutMinutes"`
	TotalWorkouts         int `bson:"totalWorkouts" json:"totalWorkouts"`
	TotalMinutes          int `bson:"totalMinutes" json:"totalMinutes"`

	TotalPoints  int   `bson:"totalPoints" json:"totalPoints"`
	CurrentLevel Level `bson:"currentLevel" json:"currentLevel"` // Always LevelFor(TotalPoints)

	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewAlunoStats returns the zero-valued aggregate materialized before an
// aluno's first completion is processed.
func NewAlunoStats(alunoID primitive.ObjectID) *AlunoStats {
	return &AlunoStats{
		AlunoID:      alunoID,
		CurrentLevel: LevelBronze,
	}
}
