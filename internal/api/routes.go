package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/service"
	"fitlink/coach-app/internal/storage"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	catalogService service.CatalogService,
	professorService service.ProfessorService,
	routineService service.RoutineService,
	statsService service.StatsService,
	fileStorage storage.FileStorage,
) {
	authHandler := NewAuthHandler(authService)
	catalogHandler := NewCatalogHandler(catalogService, fileStorage)
	professorHandler := NewProfessorHandler(professorService, routineService)
	draftHandler := NewDraftHandler(routineService)
	statsHandler := NewStatsHandler(statsService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Exercise Catalog ---
		exerciseGroup := protected.Group("/exercises")
		{
			// Active catalog is readable by both roles; writes are
			// professor-only.
			exerciseGroup.GET("", catalogHandler.GetActiveExercises)
			exerciseGroup.GET("/:id/info", catalogHandler.GetExerciseInfo)
			exerciseGroup.GET("/:id/video-download", catalogHandler.RequestVideoDownload)

			exerciseGroup.POST("", RoleMiddleware(domain.RoleProfessor), catalogHandler.CreateExercise)
			exerciseGroup.GET("/mine", RoleMiddleware(domain.RoleProfessor), catalogHandler.GetProfessorExercises)
			exerciseGroup.PUT("/:id", RoleMiddleware(domain.RoleProfessor), catalogHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleProfessor), catalogHandler.DeactivateExercise)
			exerciseGroup.POST("/:id/video-upload", RoleMiddleware(domain.RoleProfessor), catalogHandler.RequestVideoUpload)
		}

		// --- Professor: roster and routine authoring ---
		professorGroup := protected.Group("/alunos")
		professorGroup.Use(RoleMiddleware(domain.RoleProfessor))
		{
			professorGroup.POST("", professorHandler.AddAluno)
			professorGroup.GET("", professorHandler.GetManagedAlunos)
			professorGroup.GET("/:alunoId/routines", professorHandler.GetAlunoRoutines)

			draftGroup := professorGroup.Group("/:alunoId/draft")
			{
				draftGroup.GET("", draftHandler.GetDraft)
				draftGroup.DELETE("", draftHandler.DiscardDraft)
				draftGroup.PUT("/config", draftHandler.SetConfig)
				draftGroup.POST("/finalize", draftHandler.Finalize)

				draftGroup.POST("/workouts", draftHandler.AddWorkout)
				draftGroup.PUT("/workouts/:workoutId", draftHandler.UpdateWorkout)
				draftGroup.DELETE("/workouts/:workoutId", draftHandler.RemoveWorkout)

				draftGroup.POST("/workouts/:workoutId/exercises", draftHandler.AddExercise)
				draftGroup.PUT("/workouts/:workoutId/exercises/:exerciseId", draftHandler.UpdateExercise)
				draftGroup.DELETE("/workouts/:workoutId/exercises/:exerciseId", draftHandler.RemoveExercise)

				seriesBase := "/workouts/:workoutId/exercises/:exerciseId/series"
				draftGroup.POST(seriesBase, draftHandler.AddSeries)
				draftGroup.PUT(seriesBase+"/:seriesId", draftHandler.UpdateSeries)
				draftGroup.DELETE(seriesBase+"/:seriesId", draftHandler.RemoveSeries)
				draftGroup.POST(seriesBase+"/:seriesId/drop-set", draftHandler.ToggleDropSet)
				draftGroup.PUT(seriesBase+"/:seriesId/drop-set", draftHandler.UpdateDropSet)
			}
		}

		// --- Routine reads (either role; service enforces ownership) ---
		protected.GET("/routines/:routineId", professorHandler.GetRoutineDetail)

		// --- Aluno: own progress ---
		meGroup := protected.Group("/me")
		meGroup.Use(RoleMiddleware(domain.RoleAluno))
		{
			meGroup.POST("/completions", statsHandler.CompleteWorkout)
			meGroup.GET("/stats", statsHandler.GetStats)
			meGroup.GET("/routines", professorHandler.GetMyRoutines)
		}
	}
}
