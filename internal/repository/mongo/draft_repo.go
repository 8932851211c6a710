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

const draftCollectionName = "routine_drafts"

// draftDocument wraps the mirrored tree with its storage key. One
// document per aluno; a new authoring session replaces the old mirror.
type draftDocument struct {
	AlunoID   primitive.ObjectID  `bson:"alunoId"`
	Draft     domain.RoutineDraft `bson:"draft"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

// mongoDraftRepository implements repository.DraftMirrorRepository
type mongoDraftRepository struct {
	collection *mongo.Collection
}

// NewMongoDraftRepository creates a new draft mirror repository backed by MongoDB.
func NewMongoDraftRepository(db *mongo.Database) repository.DraftMirrorRepository {
	return &mongoDraftRepository{
		collection: db.Collection(draftCollectionName),
	}
}

// SaveDraft upserts the mirror document for an aluno.
func (r *mongoDraftRepository) SaveDraft(ctx context.Context, alunoID primitive.ObjectID, d domain.RoutineDraft) error {
	if alunoID == primitive.NilObjectID {
		return errors.New("aluno ID is required")
	}

	filter := bson.M{"alunoId": alunoID}
	update := bson.M{
		"$set": bson.M{
			"draft":     d,
			"updatedAt": time.Now().UTC(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// LoadDraft retrieves the resume point for an aluno's authoring session.
func (r *mongoDraftRepository) LoadDraft(ctx context.Context, alunoID primitive.ObjectID) (*domain.RoutineDraft, error) {
	var doc draftDocument
	err := r.collection.FindOne(ctx, bson.M{"alunoId": alunoID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc.Draft, nil
}

// DeleteDraft removes the mirror, e.g. after finalize or discard.
func (r *mongoDraftRepository) DeleteDraft(ctx context.Context, alunoID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"alunoId": alunoID})
	return err
}

// EnsureDraftIndexes creates necessary indexes for the routine_drafts collection.
func EnsureDraftIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "alunoId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
