package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleProfessor Role = "professor"
	RoleAluno     Role = "aluno"
)

// User represents a user in the system (either a Professor or an Aluno).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Professor-specific ---
	// Stores ObjectIDs of Alunos coached by this Professor.
	AlunoIDs []primitive.ObjectID `bson:"alunoIds,omitempty" json:"alunoIds,omitempty"`

	// --- Aluno-specific ---
	// Stores the ObjectID of the Professor coaching this Aluno.
	// Pointer because an aluno might not be linked to a professor yet.
	ProfessorID *primitive.ObjectID `bson:"professorId,omitempty" json:"professorId,omitempty"`
}

func (u *User) IsProfessor() bool {
	return u.Role == RoleProfessor
}

func (u *User) IsAluno() bool {
	return u.Role == RoleAluno
}
