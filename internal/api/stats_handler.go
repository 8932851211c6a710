package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/gamify"
	"fitlink/coach-app/internal/service"
)

// StatsHandler serves the aluno's own progress endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// --- DTOs ---

type CompleteWorkoutRequest struct {
	// CompletedAt is optional; omitted means "now" on the server clock.
	CompletedAt     *time.Time `json:"completedAt"`
	DurationMinutes int        `json:"durationMinutes"`
}

type CompletionResponse struct {
	PointsAwarded int               `json:"pointsAwarded"`
	StreakBonus   int               `json:"streakBonus"`
	NewRecord     gamify.RecordKind `json:"newRecord"`
	Stats         StatsResponse     `json:"stats"`
	// Saved is false when the aggregate write failed; the numbers are
	// still the freshly computed ones.
	Saved bool `json:"saved"`
}

type StatsResponse struct {
	CurrentStreak         int          `json:"currentStreak"`
	LongestStreak         int          `json:"longestStreak"`
	LastWorkoutDate       *time.Time   `json:"lastWorkoutDate,omitempty"`
	LongestWorkoutMinutes int          `json:"longestWorkoutMinutes"`
	TotalWorkouts         int          `json:"totalWorkouts"`
	TotalMinutes          int          `json:"totalMinutes"`
	TotalPoints           int          `json:"totalPoints"`
	CurrentLevel          domain.Level `json:"currentLevel"`
}

func MapStatsToResponse(stats *domain.AlunoStats) StatsResponse {
	return StatsResponse{
		CurrentStreak:         stats.CurrentStreak,
		LongestStreak:         stats.LongestStreak,
		LastWorkoutDate:       stats.LastWorkoutDate,
		LongestWorkoutMinutes: stats.LongestWorkoutMinutes,
		TotalWorkouts:         stats.TotalWorkouts,
		TotalMinutes:          stats.TotalMinutes,
		TotalPoints:           stats.TotalPoints,
		CurrentLevel:          stats.CurrentLevel,
	}
}

// --- Handler Methods ---

// CompleteWorkout records a finished workout for the authenticated aluno
// and returns the engine result. A failed aggregate write still returns
// the computed numbers with saved=false so the client can celebrate and
// warn in the same breath.
func (h *StatsHandler) CompleteWorkout(c *gin.Context) {
	var req CompleteWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	alunoID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	completedAt := time.Now()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	result, err := h.statsService.CompleteWorkout(c.Request.Context(), alunoID, completedAt, req.DurationMinutes)
	if err != nil && !errors.Is(err, service.ErrStatsWriteFailed) {
		abortWithError(c, http.StatusInternalServerError, "Failed to process workout completion.")
		return
	}

	c.JSON(http.StatusOK, CompletionResponse{
		PointsAwarded: result.PointsAwarded,
		StreakBonus:   result.StreakBonus,
		NewRecord:     result.NewRecord,
		Stats:         MapStatsToResponse(&result.Updated),
		Saved:         err == nil,
	})
}

// GetStats returns the authenticated aluno's aggregate. An aluno with no
// completed workouts gets the zero-valued aggregate, not a 404.
func (h *StatsHandler) GetStats(c *gin.Context) {
	alunoID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetStats(c.Request.Context(), alunoID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve stats.")
		return
	}
	c.JSON(http.StatusOK, MapStatsToResponse(stats))
}
