// Package catalog provides a read-through cache over the active exercise
// catalog. The catalog changes rarely, so it is fetched once per process
// and served from memory while routines are being authored.
package catalog

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"fitlink/coach-app/internal/domain"
)

// PlaceholderName is returned for ids the catalog does not know, so
// rendering code never needs a nil check.
const PlaceholderName = "Exercise not found"

// Fetcher loads all active catalog exercises from the backing store.
type Fetcher interface {
	FetchActiveExercises(ctx context.Context) ([]domain.Exercise, error)
}

// Info is the display metadata resolved for one catalog exercise id.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Equipment   string `json:"equipment"`
	MuscleGroup string `json:"muscleGroup"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description"`
	Found       bool   `json:"found"`
}

// IsBodyweight reports whether load input should be disabled for sets of
// this exercise. Unknown exercises are never treated as bodyweight.
func (i Info) IsBodyweight() bool {
	return i.Found && i.Equipment == domain.EquipmentBodyweight
}

// Lookup is an injectable id→Info cache. Create one at app start and pass
// it to every consumer; concurrent cold lookups share a single backing
// fetch. There is no automatic invalidation; call Invalidate after a
// manual catalog change.
type Lookup struct {
	fetcher Fetcher

	mu     sync.RWMutex
	byID   map[string]Info
	warmed bool

	group singleflight.Group
}

// NewLookup creates a cold cache over the given fetcher.
func NewLookup(fetcher Fetcher) *Lookup {
	return &Lookup{
		fetcher: fetcher,
		byID:    make(map[string]Info),
	}
}

// Warm populates the cache if it is cold. Safe to call concurrently:
// all callers await the same in-flight fetch.
func (l *Lookup) Warm(ctx context.Context) error {
	l.mu.RLock()
	warmed := l.warmed
	l.mu.RUnlock()
	if warmed {
		return nil
	}

	_, err, _ := l.group.Do("warm", func() (interface{}, error) {
		// Re-check under the flight: a previous flight may have warmed us
		// while this caller was queued.
		l.mu.RLock()
		warmed := l.warmed
		l.mu.RUnlock()
		if warmed {
			return nil, nil
		}

		exercises, err := l.fetcher.FetchActiveExercises(ctx)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]Info, len(exercises))
		for _, ex := range exercises {
			byID[ex.ID.Hex()] = Info{
				ID:          ex.ID.Hex(),
				Name:        ex.Name,
				Equipment:   ex.Equipment,
				MuscleGroup: ex.MuscleGroup,
				Difficulty:  ex.Difficulty,
				Description: ex.Description,
				Found:       true,
			}
		}

		l.mu.Lock()
		l.byID = byID
		l.warmed = true
		l.mu.Unlock()
		return nil, nil
	})
	return err
}

// Info resolves display metadata for a catalog exercise id. It never
// fails: a cold cache is warmed first, and unknown or nil ids yield a
// well-formed placeholder. A failed warm also degrades to placeholders
// rather than surfacing an error to rendering code.
func (l *Lookup) Info(ctx context.Context, id primitive.ObjectID) Info {
	if id == primitive.NilObjectID {
		return placeholder("")
	}
	if err := l.Warm(ctx); err != nil {
		return placeholder(id.Hex())
	}

	l.mu.RLock()
	info, ok := l.byID[id.Hex()]
	l.mu.RUnlock()
	if !ok {
		return placeholder(id.Hex())
	}
	return info
}

// IsBodyweight resolves the id and reports whether load input should be
// disabled for it. This satisfies the draft store's equipment probe.
func (l *Lookup) IsBodyweight(ctx context.Context, id primitive.ObjectID) bool {
	return l.Info(ctx, id).IsBodyweight()
}

// Invalidate drops the cached catalog; the next lookup re-fetches.
func (l *Lookup) Invalidate() {
	l.mu.Lock()
	l.byID = make(map[string]Info)
	l.warmed = false
	l.mu.Unlock()
}

func placeholder(id string) Info {
	return Info{ID: id, Name: PlaceholderName}
}
