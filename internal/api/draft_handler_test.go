package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/draft"
	"fitlink/coach-app/internal/service"
)

// fakeRoutineService serves one shared in-memory store and canned
// finalize results.
type fakeRoutineService struct {
	store       *draft.Store
	finalizeErr error
	finalized   *domain.Routine
}

func (f *fakeRoutineService) Draft(ctx context.Context, professorID, alunoID primitive.ObjectID) (*draft.Store, error) {
	return f.store, nil
}

func (f *fakeRoutineService) DiscardDraft(ctx context.Context, professorID, alunoID primitive.ObjectID) error {
	f.store.Replace(domain.RoutineDraft{})
	return nil
}

func (f *fakeRoutineService) Finalize(ctx context.Context, professorID, alunoID primitive.ObjectID) (*domain.Routine, error) {
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	return f.finalized, nil
}

func (f *fakeRoutineService) GetRoutinesForAluno(ctx context.Context, alunoID primitive.ObjectID) ([]domain.Routine, error) {
	return nil, nil
}

func (f *fakeRoutineService) GetRoutineDetail(ctx context.Context, requesterID, routineID primitive.ObjectID) (*domain.Routine, []domain.RoutineWorkout, map[string][]domain.RoutineExercise, error) {
	return nil, nil, nil, service.ErrRoutineNotFound
}

func draftTestRouter(svc service.RoutineService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewDraftHandler(svc)

	professorID := primitive.NewObjectID()
	authed := router.Group("/alunos/:alunoId/draft", func(c *gin.Context) {
		c.Set(ContextUserIDKey, professorID.Hex())
		c.Set(ContextUserRoleKey, domain.RoleProfessor)
	})
	authed.GET("", handler.GetDraft)
	authed.POST("/workouts", handler.AddWorkout)
	authed.POST("/workouts/:workoutId/exercises", handler.AddExercise)
	authed.PUT("/workouts/:workoutId/exercises/:exerciseId/series/:seriesId", handler.UpdateSeries)
	authed.POST("/finalize", handler.Finalize)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAddWorkout_ReturnsTreeAndSummary(t *testing.T) {
	svc := &fakeRoutineService{store: draft.NewStore(nil)}
	router := draftTestRouter(svc)
	alunoID := primitive.NewObjectID().Hex()

	rec := doJSON(t, router, http.MethodPost, "/alunos/"+alunoID+"/draft/workouts", AddWorkoutRequest{Name: "Upper A"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Draft.Workouts, 1)
	assert.Equal(t, "Upper A", resp.Draft.Workouts[0].Name)
	assert.Equal(t, 1, resp.Draft.Workouts[0].Position)
	// A workout with no exercises makes the draft invalid.
	assert.False(t, resp.Summary.IsFormValid)
	assert.Equal(t, 1, resp.Summary.WorkoutsWithoutExercises)
}

func TestAddExercise_MakesDraftValid(t *testing.T) {
	svc := &fakeRoutineService{store: draft.NewStore(nil)}
	router := draftTestRouter(svc)
	alunoID := primitive.NewObjectID().Hex()

	rec := doJSON(t, router, http.MethodPost, "/alunos/"+alunoID+"/draft/workouts", AddWorkoutRequest{Name: "Upper A"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	workoutID := resp.Draft.Workouts[0].ID

	rec = doJSON(t, router, http.MethodPost, "/alunos/"+alunoID+"/draft/workouts/"+workoutID+"/exercises", AddExerciseRequest{
		Kind:        "simple",
		Exercise1ID: primitive.NewObjectID().Hex(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Summary.IsFormValid)
	assert.Equal(t, 1, resp.Summary.TotalExercises)
}

func TestAddExercise_CombinedRequiresSecondID(t *testing.T) {
	svc := &fakeRoutineService{store: draft.NewStore(nil)}
	router := draftTestRouter(svc)
	alunoID := primitive.NewObjectID().Hex()

	rec := doJSON(t, router, http.MethodPost, "/alunos/"+alunoID+"/draft/workouts/w1/exercises", AddExerciseRequest{
		Kind:        "combined",
		Exercise1ID: primitive.NewObjectID().Hex(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSeries_CoercesJunkToDefault(t *testing.T) {
	store := draft.NewStore(nil)
	svc := &fakeRoutineService{store: store}
	router := draftTestRouter(svc)
	alunoID := primitive.NewObjectID().Hex()

	w := store.AddWorkout("Upper A")
	ex, err := domain.NewSimpleExerciseDraft(primitive.NewObjectID())
	require.NoError(t, err)
	store.AddExercise(w.ID, *ex)
	tree, _ := store.Snapshot()
	exerciseID := tree.Workouts[0].Exercises[0].ID
	store.AddSeries(w.ID, exerciseID)
	tree, _ = store.Snapshot()
	seriesID := tree.Workouts[0].Exercises[0].Sets[0].ID

	path := "/alunos/" + alunoID + "/draft/workouts/" + w.ID + "/exercises/" + exerciseID + "/series/" + seriesID
	rec := doJSON(t, router, http.MethodPut, path, UpdateSeriesRequest{Field: "reps", Value: "not a number"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.DefaultReps, resp.Draft.Workouts[0].Exercises[0].Sets[0].Reps)
}

func TestFinalize_MapsEmptyDraftTo422(t *testing.T) {
	svc := &fakeRoutineService{store: draft.NewStore(nil), finalizeErr: service.ErrDraftEmpty}
	router := draftTestRouter(svc)
	alunoID := primitive.NewObjectID().Hex()

	rec := doJSON(t, router, http.MethodPost, "/alunos/"+alunoID+"/draft/finalize", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFinalize_ReturnsRoutine(t *testing.T) {
	routine := &domain.Routine{
		ID:          primitive.NewObjectID(),
		ProfessorID: primitive.NewObjectID(),
		AlunoID:     primitive.NewObjectID(),
		Name:        "Hypertrophy Block",
		IsActive:    true,
	}
	svc := &fakeRoutineService{store: draft.NewStore(nil), finalized: routine}
	router := draftTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/alunos/"+routine.AlunoID.Hex()+"/draft/finalize", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp RoutineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, routine.ID.Hex(), resp.ID)
	assert.Equal(t, "Hypertrophy Block", resp.Name)
	assert.True(t, resp.IsActive)
}
