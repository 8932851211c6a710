package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/service"
	"fitlink/coach-app/internal/storage"
)

// CatalogHandler holds the catalog service dependency.
type CatalogHandler struct {
	catalogService service.CatalogService
	fileStorage    storage.FileStorage
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService, fileStorage storage.FileStorage) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		fileStorage:    fileStorage,
	}
}

// --- DTOs ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Equipment   string `json:"equipment" binding:"omitempty"`   // e.g., "Barbell", "Bodyweight"
	MuscleGroup string `json:"muscleGroup" binding:"omitempty"` // e.g., "Chest", "Legs"
	Difficulty  string `json:"difficulty" binding:"omitempty"`  // e.g., "Novice", "Medium", "Advanced"
	Type        string `json:"type" binding:"omitempty"`        // e.g., "Strength", "Cardio"
	VideoURL    string `json:"videoUrl" binding:"omitempty,url"`
}

// ExerciseResponse is the DTO for returning catalog exercise details.
type ExerciseResponse struct {
	ID          string    `json:"id"`
	ProfessorID string    `json:"professorId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Equipment   string    `json:"equipment,omitempty"`
	MuscleGroup string    `json:"muscleGroup,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	Type        string    `json:"type,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:          ex.ID.Hex(),
		ProfessorID: ex.ProfessorID.Hex(),
		Name:        ex.Name,
		Description: ex.Description,
		Equipment:   ex.Equipment,
		MuscleGroup: ex.MuscleGroup,
		Difficulty:  ex.Difficulty,
		Type:        ex.Type,
		VideoURL:    ex.VideoURL,
		IsActive:    ex.IsActive,
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to DTOs.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i, ex := range exercises {
		responses[i] = MapExerciseToResponse(&ex)
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise creates a new catalog exercise for the authenticated professor.
func (h *CatalogHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	professorID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	exercise, err := h.catalogService.CreateExercise(
		c.Request.Context(),
		professorID,
		req.Name,
		req.Description,
		req.Equipment,
		req.MuscleGroup,
		req.Difficulty,
		req.Type,
		req.VideoURL,
	)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetActiveExercises returns the active catalog served to authoring
// clients of either role.
func (h *CatalogHandler) GetActiveExercises(c *gin.Context) {
	exercises, err := h.catalogService.GetActiveExercises(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}
	if exercises == nil {
		c.JSON(http.StatusOK, []ExerciseResponse{})
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetProfessorExercises returns the professor's own catalog, including
// deactivated entries.
func (h *CatalogHandler) GetProfessorExercises(c *gin.Context) {
	professorID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	exercises, err := h.catalogService.GetExercisesByProfessor(c.Request.Context(), professorID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}
	if exercises == nil {
		c.JSON(http.StatusOK, []ExerciseResponse{})
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExerciseInfo returns cached display metadata for one exercise id.
// Never 404s: unknown ids yield a placeholder so list rendering needs no
// per-row error handling.
func (h *CatalogHandler) GetExerciseInfo(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		id = primitive.NilObjectID // Malformed id degrades to the placeholder
	}
	c.JSON(http.StatusOK, h.catalogService.Info(c.Request.Context(), id))
}

// UpdateExercise updates a catalog exercise owned by the professor.
func (h *CatalogHandler) UpdateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	professorID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	exercise, err := h.catalogService.UpdateExercise(
		c.Request.Context(),
		professorID,
		exerciseID,
		req.Name,
		req.Description,
		req.Equipment,
		req.MuscleGroup,
		req.Difficulty,
		req.Type,
		req.VideoURL,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeactivateExercise soft-deletes a catalog exercise owned by the professor.
func (h *CatalogHandler) DeactivateExercise(c *gin.Context) {
	professorID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	if err := h.catalogService.DeactivateExercise(c.Request.Context(), professorID, exerciseID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to deactivate exercise.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Demo video upload ---

type VideoUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// RequestVideoUpload returns a presigned PUT URL for an exercise demo
// video. The client uploads directly to object storage and then PUTs the
// resulting public URL back onto the exercise.
func (h *CatalogHandler) RequestVideoUpload(c *gin.Context) {
	professorID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	// Ownership check before handing out an upload slot.
	exercise, err := h.catalogService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "Exercise not found.")
		return
	}
	if exercise.ProfessorID != professorID {
		abortWithError(c, http.StatusForbidden, "Access denied to this exercise.")
		return
	}

	contentType := c.DefaultQuery("contentType", "video/mp4")
	objectKey := storage.ExerciseVideoKey(professorID.Hex(), exerciseID.Hex())
	uploadURL, err := h.fileStorage.GeneratePresignedUploadURL(c.Request.Context(), objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL.")
		return
	}

	c.JSON(http.StatusOK, VideoUploadResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	})
}

type VideoDownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// RequestVideoDownload returns a presigned GET URL for an exercise demo
// video. Available to either role; alunos watch these while executing
// workouts.
func (h *CatalogHandler) RequestVideoDownload(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	exercise, err := h.catalogService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "Exercise not found.")
		return
	}

	objectKey := storage.ExerciseVideoKey(exercise.ProfessorID.Hex(), exerciseID.Hex())
	downloadURL, err := h.fileStorage.GeneratePresignedDownloadURL(c.Request.Context(), objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL.")
		return
	}

	c.JSON(http.StatusOK, VideoDownloadResponse{DownloadURL: downloadURL})
}

// objectIDFromToken extracts and parses the authenticated user id,
// aborting the request on failure.
func objectIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}
