package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/draft"
	"fitlink/coach-app/internal/service"
)

// DraftHandler exposes the professor's routine-authoring session over
// HTTP. Every mutation replies with the fresh tree plus its derived
// summary so the client never has to recompute validity locally.
type DraftHandler struct {
	routineService service.RoutineService
}

func NewDraftHandler(routineService service.RoutineService) *DraftHandler {
	return &DraftHandler{routineService: routineService}
}

// --- DTOs ---

type DraftResponse struct {
	Draft   domain.RoutineDraft `json:"draft"`
	Summary domain.DraftSummary `json:"summary"`
}

type AddWorkoutRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateWorkoutRequest struct {
	Name             string   `json:"name" binding:"required"`
	MuscleGroups     []string `json:"muscleGroups"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
}

type AddExerciseRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=simple combined"`
	Exercise1ID string `json:"exercise1Id" binding:"required"`
	Exercise2ID string `json:"exercise2Id"` // Required when kind is combined
}

type UpdateExerciseRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=simple combined"`
	Exercise1ID string `json:"exercise1Id" binding:"required"`
	Exercise2ID string `json:"exercise2Id"`
	RestSeconds int    `json:"restSeconds"`
}

type UpdateSeriesRequest struct {
	Field string `json:"field" binding:"required,oneof=reps load rest"`
	Value string `json:"value"` // Raw input; blank or junk falls back to the default
	// SubExercise selects the side of a combined exercise (0 or 1).
	// Omit for simple exercises.
	SubExercise *int `json:"subExercise"`
}

type UpdateDropSetRequest struct {
	Value string `json:"value"`
}

type RoutineConfigRequest struct {
	Name            string `json:"name" binding:"required"`
	Objective       string `json:"objective"`
	Difficulty      string `json:"difficulty"`
	DurationWeeks   int    `json:"durationWeeks"`
	SessionsPerWeek int    `json:"sessionsPerWeek"`
	PaymentTerms    string `json:"paymentTerms"`
	AllowSelfStart  bool   `json:"allowSelfStart"`
}

// --- Helpers ---

// draftStore resolves the authoring session for the aluno in the URL,
// enforcing the coaching link. Aborts the request on failure.
func (h *DraftHandler) draftStore(c *gin.Context) (*draft.Store, bool) {
	professorID, ok := objectIDFromToken(c)
	if !ok {
		return nil, false
	}
	alunoID, err := primitive.ObjectIDFromHex(c.Param("alunoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid aluno ID format.")
		return nil, false
	}

	store, err := h.routineService.Draft(c.Request.Context(), professorID, alunoID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlunoNotFound):
			abortWithError(c, http.StatusNotFound, service.ErrAlunoNotFound.Error())
		case errors.Is(err, service.ErrAlunoNotCoached):
			abortWithError(c, http.StatusForbidden, service.ErrAlunoNotCoached.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to open draft.")
		}
		return nil, false
	}
	return store, true
}

func draftResponse(store *draft.Store) DraftResponse {
	tree, summary := store.Snapshot()
	return DraftResponse{Draft: tree, Summary: summary}
}

// --- Handler Methods ---

// GetDraft returns the current draft tree and summary, creating the
// session (and resuming from the durable mirror) on first access.
func (h *DraftHandler) GetDraft(c *gin.Context) {
	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, draftResponse(store))
}

// DiscardDraft drops the in-memory session and its durable mirror.
func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	professorID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	alunoID, err := primitive.ObjectIDFromHex(c.Param("alunoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid aluno ID format.")
		return
	}

	if err := h.routineService.DiscardDraft(c.Request.Context(), professorID, alunoID); err != nil {
		switch {
		case errors.Is(err, service.ErrAlunoNotFound):
			abortWithError(c, http.StatusNotFound, service.ErrAlunoNotFound.Error())
		case errors.Is(err, service.ErrAlunoNotCoached):
			abortWithError(c, http.StatusForbidden, service.ErrAlunoNotCoached.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to discard draft.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// AddWorkout appends an empty workout to the draft.
func (h *DraftHandler) AddWorkout(c *gin.Context) {
	var req AddWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.AddWorkout(req.Name)
	c.JSON(http.StatusCreated, draftResponse(store))
}

// UpdateWorkout patches workout metadata.
func (h *DraftHandler) UpdateWorkout(c *gin.Context) {
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.UpdateWorkout(c.Param("workoutId"), req.Name, req.MuscleGroups, req.EstimatedMinutes)
	c.JSON(http.StatusOK, draftResponse(store))
}

// RemoveWorkout deletes a workout; remaining ones are renumbered.
func (h *DraftHandler) RemoveWorkout(c *gin.Context) {
	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.RemoveWorkout(c.Param("workoutId"))
	c.JSON(http.StatusOK, draftResponse(store))
}

// AddExercise appends a simple or combined exercise to a workout.
func (h *DraftHandler) AddExercise(c *gin.Context) {
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := exerciseDraftFromRequest(req.Kind, req.Exercise1ID, req.Exercise2ID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.AddExercise(c.Param("workoutId"), *exercise)
	c.JSON(http.StatusCreated, draftResponse(store))
}

// UpdateExercise replaces an exercise's fields, keeping its identity and
// ordinal.
func (h *DraftHandler) UpdateExercise(c *gin.Context) {
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch, err := exerciseDraftFromRequest(req.Kind, req.Exercise1ID, req.Exercise2ID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.RestSeconds > 0 {
		patch.RestSeconds = req.RestSeconds
	}

	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.UpdateExercise(c.Param("workoutId"), c.Param("exerciseId"), *patch)
	c.JSON(http.StatusOK, draftResponse(store))
}

// RemoveExercise deletes an exercise. Ordinals of the survivors keep
// their gaps.
func (h *DraftHandler) RemoveExercise(c *gin.Context) {
	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.RemoveExercise(c.Param("workoutId"), c.Param("exerciseId"))
	c.JSON(http.StatusOK, draftResponse(store))
}

// AddSeries appends a set with authoring defaults.
func (h *DraftHandler) AddSeries(c *gin.Context) {
	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.AddSeries(c.Param("workoutId"), c.Param("exerciseId"))
	c.JSON(http.StatusCreated, draftResponse(store))
}

// RemoveSeries deletes a set.
func (h *DraftHandler) RemoveSeries(c *gin.Context) {
	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.RemoveSeries(c.Param("workoutId"), c.Param("exerciseId"), c.Param("seriesId"))
	c.JSON(http.StatusOK, draftResponse(store))
}

// UpdateSeries patches one field of a set. With subExercise present the
// patch targets one side of a combined exercise.
func (h *DraftHandler) UpdateSeries(c *gin.Context) {
	var req UpdateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	store, ok := h.draftStore(c)
	if !ok {
		return
	}

	workoutID := c.Param("workoutId")
	exerciseID := c.Param("exerciseId")
	seriesID := c.Param("seriesId")
	field := draft.SeriesField(req.Field)

	if req.SubExercise != nil {
		store.UpdateCombinedSeries(c.Request.Context(), workoutID, exerciseID, seriesID, *req.SubExercise, field, req.Value)
	} else {
		store.UpdateSeries(c.Request.Context(), workoutID, exerciseID, seriesID, field, req.Value)
	}
	c.JSON(http.StatusOK, draftResponse(store))
}

// ToggleDropSet flips a set's drop-set flag.
func (h *DraftHandler) ToggleDropSet(c *gin.Context) {
	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.ToggleDropSet(c.Param("workoutId"), c.Param("exerciseId"), c.Param("seriesId"))
	c.JSON(http.StatusOK, draftResponse(store))
}

// UpdateDropSet patches the drop-set reduced load.
func (h *DraftHandler) UpdateDropSet(c *gin.Context) {
	var req UpdateDropSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.UpdateDropSet(c.Param("workoutId"), c.Param("exerciseId"), c.Param("seriesId"), req.Value)
	c.JSON(http.StatusOK, draftResponse(store))
}

// SetConfig replaces the routine-level settings.
func (h *DraftHandler) SetConfig(c *gin.Context) {
	var req RoutineConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	store, ok := h.draftStore(c)
	if !ok {
		return
	}
	store.SetConfig(domain.RoutineConfig{
		Name:            req.Name,
		Objective:       domain.Objective(req.Objective),
		Difficulty:      domain.Difficulty(req.Difficulty),
		DurationWeeks:   req.DurationWeeks,
		SessionsPerWeek: req.SessionsPerWeek,
		PaymentTerms:    req.PaymentTerms,
		AllowSelfStart:  req.AllowSelfStart,
	})
	c.JSON(http.StatusOK, draftResponse(store))
}

// Finalize flattens the draft into persisted routine rows.
func (h *DraftHandler) Finalize(c *gin.Context) {
	professorID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	alunoID, err := primitive.ObjectIDFromHex(c.Param("alunoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid aluno ID format.")
		return
	}

	routine, err := h.routineService.Finalize(c.Request.Context(), professorID, alunoID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlunoNotFound):
			abortWithError(c, http.StatusNotFound, service.ErrAlunoNotFound.Error())
		case errors.Is(err, service.ErrAlunoNotCoached):
			abortWithError(c, http.StatusForbidden, service.ErrAlunoNotCoached.Error())
		case errors.Is(err, service.ErrDraftEmpty), errors.Is(err, service.ErrDraftInvalid):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to finalize routine.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapRoutineToResponse(routine))
}

// exerciseDraftFromRequest builds a validated ExerciseDraft from request
// fields.
func exerciseDraftFromRequest(kind, ex1Hex, ex2Hex string) (*domain.ExerciseDraft, error) {
	ex1, err := primitive.ObjectIDFromHex(ex1Hex)
	if err != nil {
		return nil, errors.New("invalid exercise1Id format")
	}

	if domain.ExerciseKind(kind) == domain.KindCombined {
		ex2, err := primitive.ObjectIDFromHex(ex2Hex)
		if err != nil {
			return nil, errors.New("invalid exercise2Id format")
		}
		return domain.NewCombinedExerciseDraft(ex1, ex2)
	}
	if ex2Hex != "" {
		return nil, domain.ErrSimpleHasSecondID
	}
	return domain.NewSimpleExerciseDraft(ex1)
}
