package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
)

// fakeFetcher counts fetches and can simulate a failing backing store.
type fakeFetcher struct {
	calls     atomic.Int32
	exercises []domain.Exercise
	err       error
}

func (f *fakeFetcher) FetchActiveExercises(ctx context.Context) ([]domain.Exercise, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.exercises, nil
}

func TestInfoResolvesCatalogEntry(t *testing.T) {
	id := primitive.NewObjectID()
	fetcher := &fakeFetcher{exercises: []domain.Exercise{{
		ID:          id,
		Name:        "Barbell Squat",
		Equipment:   "Barbell",
		MuscleGroup: "Legs",
		Difficulty:  "Medium",
	}}}
	lookup := NewLookup(fetcher)

	info := lookup.Info(context.Background(), id)

	require.True(t, info.Found)
	assert.Equal(t, "Barbell Squat", info.Name)
	assert.Equal(t, "Legs", info.MuscleGroup)
	assert.False(t, info.IsBodyweight())
}

func TestInfoUnknownIDYieldsPlaceholder(t *testing.T) {
	lookup := NewLookup(&fakeFetcher{})

	info := lookup.Info(context.Background(), primitive.NewObjectID())

	assert.False(t, info.Found)
	assert.Equal(t, PlaceholderName, info.Name)
	assert.False(t, info.IsBodyweight(), "unknown exercises never count as bodyweight")
}

func TestInfoNilIDYieldsPlaceholder(t *testing.T) {
	fetcher := &fakeFetcher{}
	lookup := NewLookup(fetcher)

	info := lookup.Info(context.Background(), primitive.NilObjectID)

	assert.Equal(t, PlaceholderName, info.Name)
	assert.Equal(t, int32(0), fetcher.calls.Load(), "nil id must not trigger a fetch")
}

func TestInfoBodyweightEquipment(t *testing.T) {
	id := primitive.NewObjectID()
	lookup := NewLookup(&fakeFetcher{exercises: []domain.Exercise{{
		ID:        id,
		Name:      "Pull-up",
		Equipment: domain.EquipmentBodyweight,
	}}})

	assert.True(t, lookup.Info(context.Background(), id).IsBodyweight())
}

func TestWarmSingleFlight(t *testing.T) {
	id := primitive.NewObjectID()
	fetcher := &fakeFetcher{exercises: []domain.Exercise{{ID: id, Name: "Deadlift"}}}
	lookup := NewLookup(fetcher)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lookup.Info(context.Background(), id)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load(), "10 concurrent cold lookups must share one fetch")
}

func TestWarmFailureDegradesToPlaceholder(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	lookup := NewLookup(fetcher)

	info := lookup.Info(context.Background(), primitive.NewObjectID())
	assert.Equal(t, PlaceholderName, info.Name)

	// Cache stays cold after a failed warm, so a later lookup retries.
	fetcher.err = nil
	id := primitive.NewObjectID()
	fetcher.exercises = []domain.Exercise{{ID: id, Name: "Bench Press"}}
	assert.True(t, lookup.Info(context.Background(), id).Found)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	id := primitive.NewObjectID()
	fetcher := &fakeFetcher{exercises: []domain.Exercise{{ID: id, Name: "Row"}}}
	lookup := NewLookup(fetcher)

	lookup.Info(context.Background(), id)
	lookup.Invalidate()
	lookup.Info(context.Background(), id)

	assert.Equal(t, int32(2), fetcher.calls.Load())
}
