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

const catalogCollectionName = "exercises"

// mongoCatalogRepository implements repository.CatalogRepository
type mongoCatalogRepository struct {
	collection *mongo.Collection
}

// NewMongoCatalogRepository creates a new catalog repository backed by MongoDB.
func NewMongoCatalogRepository(db *mongo.Database) repository.CatalogRepository {
	return &mongoCatalogRepository{
		collection: db.Collection(catalogCollectionName),
	}
}

// Create inserts a new catalog exercise. New exercises start active.
func (r *mongoCatalogRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.ProfessorID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and professor ID are required")
	}

	exercise.ID = primitive.NewObjectID()
	exercise.IsActive = true
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a catalog exercise by its ID, active or not.
func (r *mongoCatalogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByProfessorID retrieves all exercises created by a professor,
// including deactivated ones (the professor manages their own catalog).
func (r *mongoCatalogRepository) GetByProfessorID(ctx context.Context, professorID primitive.ObjectID) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	filter := bson.M{"professorId": professorID}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, cursor.Err()
}

// FetchActiveExercises retrieves the active catalog served to authoring
// clients. This is the warm-up source for catalog.Lookup.
func (r *mongoCatalogRepository) FetchActiveExercises(ctx context.Context) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	filter := bson.M{"isActive": true}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, cursor.Err()
}

// Update modifies an existing exercise. The owner (ProfessorID) is never
// changed by an update.
func (r *mongoCatalogRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	if exercise.Name == "" {
		return errors.New("exercise name cannot be empty")
	}

	filter := bson.M{"_id": exercise.ID}
	update := bson.M{
		"$set": bson.M{
			"name":        exercise.Name,
			"description": exercise.Description,
			"equipment":   exercise.Equipment,
			"muscleGroup": exercise.MuscleGroup,
			"difficulty":  exercise.Difficulty,
			"type":        exercise.Type,
			"videoUrl":    exercise.VideoURL,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes an exercise, ensuring it belongs to the given
// professor. Existing routine rows keep their references; the exercise
// just stops appearing in the active catalog.
func (r *mongoCatalogRepository) Deactivate(ctx context.Context, id, professorID primitive.ObjectID) error {
	filter := bson.M{
		"_id":         id,
		"professorId": professorID,
	}
	update := bson.M{
		"$set": bson.M{
			"isActive":  false,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the exercise doesn't exist or it belongs to another
		// professor; the filter makes both look the same.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureCatalogIndexes creates necessary indexes for the exercises collection.
func EnsureCatalogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "professorId", Value: 1}},
			Options: options.Index(),
		},
		{
			// The active-catalog fetch filters on isActive and sorts by name.
			Keys:    bson.D{{Key: "isActive", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
