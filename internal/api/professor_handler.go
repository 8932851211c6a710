package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/service"
)

// ProfessorHandler serves roster management and routine reads for the
// professor's side of the app.
type ProfessorHandler struct {
	professorService service.ProfessorService
	routineService   service.RoutineService
}

func NewProfessorHandler(professorService service.ProfessorService, routineService service.RoutineService) *ProfessorHandler {
	return &ProfessorHandler{
		professorService: professorService,
		routineService:   routineService,
	}
}

// --- DTOs ---

type AddAlunoRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type RoutineResponse struct {
	ID              string     `json:"id"`
	ProfessorID     string     `json:"professorId"`
	AlunoID         string     `json:"alunoId"`
	Name            string     `json:"name"`
	Objective       string     `json:"objective,omitempty"`
	Difficulty      string     `json:"difficulty,omitempty"`
	DurationWeeks   int        `json:"durationWeeks"`
	SessionsPerWeek int        `json:"sessionsPerWeek"`
	PaymentTerms    string     `json:"paymentTerms,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	AllowSelfStart  bool       `json:"allowSelfStart"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type RoutineWorkoutResponse struct {
	ID               string                   `json:"id"`
	Name             string                   `json:"name"`
	MuscleGroups     []string                 `json:"muscleGroups,omitempty"`
	Position         int                      `json:"position"`
	EstimatedMinutes int                      `json:"estimatedMinutes,omitempty"`
	Exercises        []domain.RoutineExercise `json:"exercises"`
}

type RoutineDetailResponse struct {
	Routine  RoutineResponse          `json:"routine"`
	Workouts []RoutineWorkoutResponse `json:"workouts"`
}

func MapRoutineToResponse(r *domain.Routine) RoutineResponse {
	return RoutineResponse{
		ID:              r.ID.Hex(),
		ProfessorID:     r.ProfessorID.Hex(),
		AlunoID:         r.AlunoID.Hex(),
		Name:            r.Name,
		Objective:       string(r.Objective),
		Difficulty:      string(r.Difficulty),
		DurationWeeks:   r.DurationWeeks,
		SessionsPerWeek: r.SessionsPerWeek,
		PaymentTerms:    r.PaymentTerms,
		StartDate:       r.StartDate,
		AllowSelfStart:  r.AllowSelfStart,
		IsActive:        r.IsActive,
		CreatedAt:       r.CreatedAt,
	}
}

// --- Handler Methods ---

// AddAluno links an existing aluno account to the professor's roster by
// email.
func (h *ProfessorHandler) AddAluno(c *gin.Context) {
	var req AddAlunoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	professorID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	aluno, err := h.professorService.AddAlunoByEmail(c.Request.Context(), professorID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, service.ErrUserNotFound.Error())
		case errors.Is(err, service.ErrUserNotAluno):
			abortWithError(c, http.StatusBadRequest, service.ErrUserNotAluno.Error())
		case errors.Is(err, service.ErrAlunoAlreadyLinked):
			abortWithError(c, http.StatusConflict, service.ErrAlunoAlreadyLinked.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add aluno.")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(aluno))
}

// GetManagedAlunos lists the professor's roster.
func (h *ProfessorHandler) GetManagedAlunos(c *gin.Context) {
	professorID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	alunos, err := h.professorService.GetManagedAlunos(c.Request.Context(), professorID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve alunos.")
		return
	}

	responses := make([]UserResponse, 0, len(alunos))
	for i := range alunos {
		responses = append(responses, MapUserToResponse(&alunos[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetAlunoRoutines lists an aluno's routines for their professor.
func (h *ProfessorHandler) GetAlunoRoutines(c *gin.Context) {
	alunoID, err := primitive.ObjectIDFromHex(c.Param("alunoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid aluno ID format.")
		return
	}

	routines, err := h.routineService.GetRoutinesForAluno(c.Request.Context(), alunoID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve routines.")
		return
	}

	responses := make([]RoutineResponse, 0, len(routines))
	for i := range routines {
		responses = append(responses, MapRoutineToResponse(&routines[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetMyRoutines lists the authenticated aluno's own routines.
func (h *ProfessorHandler) GetMyRoutines(c *gin.Context) {
	alunoID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	routines, err := h.routineService.GetRoutinesForAluno(c.Request.Context(), alunoID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve routines.")
		return
	}

	responses := make([]RoutineResponse, 0, len(routines))
	for i := range routines {
		responses = append(responses, MapRoutineToResponse(&routines[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetRoutineDetail returns a routine with its workout and exercise rows.
// The requester must be the owning professor or the assigned aluno, so
// the same endpoint serves both roles.
func (h *ProfessorHandler) GetRoutineDetail(c *gin.Context) {
	requesterID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	routineID, err := primitive.ObjectIDFromHex(c.Param("routineId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid routine ID format.")
		return
	}

	routine, workouts, exercisesByWorkout, err := h.routineService.GetRoutineDetail(c.Request.Context(), requesterID, routineID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoutineNotFound):
			abortWithError(c, http.StatusNotFound, service.ErrRoutineNotFound.Error())
		case errors.Is(err, service.ErrRoutineAccessDenied):
			abortWithError(c, http.StatusForbidden, service.ErrRoutineAccessDenied.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve routine.")
		}
		return
	}

	detail := RoutineDetailResponse{
		Routine:  MapRoutineToResponse(routine),
		Workouts: make([]RoutineWorkoutResponse, 0, len(workouts)),
	}
	for _, w := range workouts {
		detail.Workouts = append(detail.Workouts, RoutineWorkoutResponse{
			ID:               w.ID.Hex(),
			Name:             w.Name,
			MuscleGroups:     w.MuscleGroups,
			Position:         w.Position,
			EstimatedMinutes: w.EstimatedMinutes,
			Exercises:        exercisesByWorkout[w.ID.Hex()],
		})
	}
	c.JSON(http.StatusOK, detail)
}
