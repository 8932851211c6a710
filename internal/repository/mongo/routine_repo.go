package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitlink/coach-app/internal/domain"
	"fitlink/coach-app/internal/repository"
)

const (
	routineCollectionName         = "routines"
	routineWorkoutCollectionName  = "routine_workouts"
	routineExerciseCollectionName = "routine_exercises"
)

// mongoRoutineRepository implements repository.RoutineRepository
type mongoRoutineRepository struct {
	routines  *mongo.Collection
	workouts  *mongo.Collection
	exercises *mongo.Collection
}

// NewMongoRoutineRepository creates a new routine repository backed by MongoDB.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		routines:  db.Collection(routineCollectionName),
		workouts:  db.Collection(routineWorkoutCollectionName),
		exercises: db.Collection(routineExerciseCollectionName),
	}
}

// CreateRoutine inserts the routine header row.
func (r *mongoRoutineRepository) CreateRoutine(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	if routine.ProfessorID == primitive.NilObjectID || routine.AlunoID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("professor ID and aluno ID are required")
	}

	routine.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	routine.CreatedAt = now
	routine.UpdatedAt = now

	result, err := r.routines.InsertOne(ctx, routine)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// CreateWorkout inserts one flattened workout row.
func (r *mongoRoutineRepository) CreateWorkout(ctx context.Context, workout *domain.RoutineWorkout) (primitive.ObjectID, error) {
	if workout.RoutineID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("routine ID is required")
	}

	workout.ID = primitive.NewObjectID()
	workout.CreatedAt = time.Now().UTC()

	result, err := r.workouts.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// CreateExercises bulk-inserts the exercise rows (with embedded sets) of
// one workout.
func (r *mongoRoutineRepository) CreateExercises(ctx context.Context, exercises []domain.RoutineExercise) error {
	if len(exercises) == 0 {
		return nil
	}

	docs := make([]interface{}, len(exercises))
	for i := range exercises {
		exercises[i].ID = primitive.NewObjectID()
		docs[i] = exercises[i]
	}

	_, err := r.exercises.InsertMany(ctx, docs)
	return err
}

// GetRoutineByID retrieves a routine header by its ID.
func (r *mongoRoutineRepository) GetRoutineByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	var routine domain.Routine
	err := r.routines.FindOne(ctx, bson.M{"_id": id}).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// GetRoutinesByAlunoID retrieves all routines assigned to an aluno,
// newest first.
func (r *mongoRoutineRepository) GetRoutinesByAlunoID(ctx context.Context, alunoID primitive.ObjectID) ([]domain.Routine, error) {
	var routines []domain.Routine
	filter := bson.M{"alunoId": alunoID}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.routines.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &routines); err != nil {
		return nil, err
	}
	return routines, cursor.Err()
}

// GetWorkoutsByRoutineID retrieves a routine's workout rows in position order.
func (r *mongoRoutineRepository) GetWorkoutsByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineWorkout, error) {
	var workouts []domain.RoutineWorkout
	filter := bson.M{"routineId": routineID}

	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := r.workouts.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, cursor.Err()
}

// GetExercisesByWorkoutID retrieves a workout's exercise rows sorted by
// ordinal. Ordinals may have gaps; sorting here is by insertion order,
// not an assumption of contiguity.
func (r *mongoRoutineRepository) GetExercisesByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.RoutineExercise, error) {
	var exercises []domain.RoutineExercise
	filter := bson.M{"workoutId": workoutID}

	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := r.exercises.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, cursor.Err()
}

// EnsureRoutineIndexes creates necessary indexes for the routine collections.
func EnsureRoutineIndexes(ctx context.Context, db *mongo.Database) {
	_, _ = db.Collection(routineCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "alunoId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "professorId", Value: 1}}},
	})
	_, _ = db.Collection(routineWorkoutCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "routineId", Value: 1}, {Key: "position", Value: 1}}},
	})
	_, _ = db.Collection(routineExerciseCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutId", Value: 1}, {Key: "position", Value: 1}}},
	})
}
