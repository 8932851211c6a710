// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Equipment value that disables load input on sets referencing the exercise.
const EquipmentBodyweight = "Bodyweight"

// Exercise represents a single catalog exercise definition.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProfessorID primitive.ObjectID `bson:"professorId" json:"professorId"` // Link to the Professor who created/owns this exercise
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Equipment   string `bson:"equipment,omitempty" json:"equipment,omitempty"`     // e.g., "Barbell", "Dumbbell", "Bodyweight"
	MuscleGroup string `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g., "Chest", "Legs", "Back"
	Difficulty  string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`   // e.g., "Novice", "Medium", "Advanced"
	Type        string `bson:"type,omitempty" json:"type,omitempty"`               // e.g., "Strength", "Cardio", "Mobility"
	VideoURL    string `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`       // Optional demo video (uploaded to S3 and linked here)

	// Deactivated exercises stay referenced by existing routines but are
	// excluded from the catalog served to authoring clients.
	IsActive bool `bson:"isActive" json:"isActive"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsBodyweight reports whether sets of this exercise ignore load input.
func (e *Exercise) IsBodyweight() bool {
	return e.Equipment == EquipmentBodyweight
}
