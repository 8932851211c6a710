// Package draft holds the in-memory routine-authoring draft tree and its
// mutation surface. The store never hard-rejects input: numeric fields are
// coerced to safe defaults and mutations against nodes that no longer
// exist are silent no-ops. The single gate it exposes is IsFormValid.
package draft

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
)

func newSetID() string { return uuid.NewString() }

// EquipmentResolver answers whether a catalog exercise ignores load input.
// Satisfied by catalog.Lookup.
type EquipmentResolver interface {
	IsBodyweight(ctx context.Context, id primitive.ObjectID) bool
}

// SeriesField names a single SetDraft field targeted by UpdateSeries.
type SeriesField string

const (
	FieldReps SeriesField = "reps"
	FieldLoad SeriesField = "load"
	FieldRest SeriesField = "rest"
)

// Subscriber receives the full tree plus its derived summary after every
// mutation. Called synchronously under no store lock.
type Subscriber func(domain.RoutineDraft, domain.DraftSummary)

// Store is a plain state-holding object for one authoring session.
// It is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	draft     domain.RoutineDraft
	equipment EquipmentResolver
	subs      []Subscriber
}

// NewStore creates an empty draft store. The resolver backs the
// bodyweight load-override rule; pass nil to disable the override
// (every load patch then applies).
func NewStore(equipment EquipmentResolver) *Store {
	return &Store{equipment: equipment}
}

// Snapshot returns a deep copy of the tree and its derived summary.
func (s *Store) Snapshot() (domain.RoutineDraft, domain.DraftSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDraft(s.draft), summarize(s.draft)
}

// Summary recomputes the derived view from the tree. It is never cached,
// so it cannot drift from the source of truth.
func (s *Store) Summary() domain.DraftSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(s.draft)
}

// Replace swaps in a whole tree, e.g. when resuming from the durable
// mirror after a reload.
func (s *Store) Replace(draft domain.RoutineDraft) {
	s.mu.Lock()
	s.draft = cloneDraft(draft)
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers a subscriber for post-mutation snapshots and
// returns an unsubscribe func.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.subs[idx] = nil
		s.mu.Unlock()
	}
}

// --- Workout level ---

// AddWorkout appends an empty workout. Workout positions are unique and
// contiguous: position is count+1 on add and the list is renumbered on
// removal (unlike exercise/set ordinals, which keep gaps).
func (s *Store) AddWorkout(name string) domain.WorkoutDraft {
	s.mu.Lock()
	w := domain.NewWorkoutDraft(name, len(s.draft.Workouts)+1)
	s.draft.Workouts = append(s.draft.Workouts, *w)
	out := *w
	s.mu.Unlock()
	s.notify()
	return out
}

// RemoveWorkout deletes a workout and renumbers the rest to keep
// positions contiguous.
func (s *Store) RemoveWorkout(workoutID string) {
	s.mu.Lock()
	kept := s.draft.Workouts[:0]
	for _, w := range s.draft.Workouts {
		if w.ID != workoutID {
			kept = append(kept, w)
		}
	}
	s.draft.Workouts = kept
	for i := range s.draft.Workouts {
		s.draft.Workouts[i].Position = i + 1
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateWorkout patches workout metadata.
func (s *Store) UpdateWorkout(workoutID, name string, muscleGroups []string, estimatedMinutes int) {
	s.mu.Lock()
	if w := s.findWorkout(workoutID); w != nil {
		w.Name = name
		w.MuscleGroups = muscleGroups
		w.EstimatedMinutes = estimatedMinutes
	}
	s.mu.Unlock()
	s.notify()
}

// --- Exercise level ---

// AddExercise appends an exercise to a workout, auto-assigning its
// ordinal as count+1. Catalog ids were validated upstream when the
// ExerciseDraft was constructed.
func (s *Store) AddExercise(workoutID string, exercise domain.ExerciseDraft) {
	s.mu.Lock()
	if w := s.findWorkout(workoutID); w != nil {
		exercise.Position = len(w.Exercises) + 1
		w.Exercises = append(w.Exercises, exercise)
	}
	s.mu.Unlock()
	s.notify()
}

// RemoveExercise deletes an exercise. Remaining ordinals are NOT
// renumbered: they are stable insertion handles and display code must
// not assume contiguity.
func (s *Store) RemoveExercise(workoutID, exerciseID string) {
	s.mu.Lock()
	if w := s.findWorkout(workoutID); w != nil {
		kept := w.Exercises[:0]
		for _, e := range w.Exercises {
			if e.ID != exerciseID {
				kept = append(kept, e)
			}
		}
		w.Exercises = kept
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateExercise replaces an exercise's fields wholesale, preserving its
// identity and ordinal.
func (s *Store) UpdateExercise(workoutID, exerciseID string, patch domain.ExerciseDraft) {
	s.mu.Lock()
	if e := s.findExercise(workoutID, exerciseID); e != nil {
		patch.ID = e.ID
		patch.Position = e.Position
		*e = patch
	}
	s.mu.Unlock()
	s.notify()
}

// --- Set level ---

// AddSeries appends a set with authoring defaults (12 reps, no load,
// 90s rest, no drop-set). Set numbers are count+1 at creation.
func (s *Store) AddSeries(workoutID, exerciseID string) {
	s.mu.Lock()
	if e := s.findExercise(workoutID, exerciseID); e != nil {
		set := domain.SetDraft{
			ID:          newSetID(),
			Number:      len(e.Sets) + 1,
			Reps:        domain.DefaultReps,
			Load:        domain.DefaultLoad,
			RestSeconds: domain.DefaultRestSeconds,
		}
		if e.IsCombined() {
			set.Reps2 = domain.DefaultReps
			set.Load2 = domain.DefaultLoad
		}
		e.Sets = append(e.Sets, set)
	}
	s.mu.Unlock()
	s.notify()
}

// RemoveSeries deletes a set. Like exercises, set numbers keep gaps.
func (s *Store) RemoveSeries(workoutID, exerciseID, seriesID string) {
	s.mu.Lock()
	if e := s.findExercise(workoutID, exerciseID); e != nil {
		kept := e.Sets[:0]
		for _, set := range e.Sets {
			if set.ID != seriesID {
				kept = append(kept, set)
			}
		}
		e.Sets = kept
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateSeries patches a single field of a simple exercise's set. Empty
// or non-numeric input falls back to the field's default, a forgiveness
// rule rather than a validation error. Load patches are no-ops when the
// exercise's equipment is bodyweight.
func (s *Store) UpdateSeries(ctx context.Context, workoutID, exerciseID, seriesID string, field SeriesField, raw string) {
	s.mu.Lock()
	e := s.findExercise(workoutID, exerciseID)
	var exID primitive.ObjectID
	if e != nil {
		exID = e.Exercise1ID
	}
	s.mu.Unlock()
	if e == nil {
		return
	}

	// Equipment resolution may warm the catalog cache; keep it outside
	// the store lock.
	if field == FieldLoad && s.isBodyweight(ctx, exID) {
		return
	}

	s.mu.Lock()
	if set := s.findSeries(workoutID, exerciseID, seriesID); set != nil {
		switch field {
		case FieldReps:
			set.Reps = coerceInt(raw, domain.DefaultReps)
		case FieldLoad:
			set.Load = coerceFloat(raw, domain.DefaultLoad)
		case FieldRest:
			set.RestSeconds = coerceInt(raw, domain.DefaultRestSeconds)
		}
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateCombinedSeries patches one side of a paired set. subExercise is
// 0 or 1; the bodyweight no-op rule applies per sub-exercise.
func (s *Store) UpdateCombinedSeries(ctx context.Context, workoutID, exerciseID, seriesID string, subExercise int, field SeriesField, raw string) {
	if subExercise != 0 && subExercise != 1 {
		return
	}
	s.mu.Lock()
	e := s.findExercise(workoutID, exerciseID)
	// A decoded tree can carry a combined exercise with no second id;
	// such an exercise is not patchable per side.
	combined := e != nil && e.IsCombined() && e.Exercise2ID != nil
	var exID primitive.ObjectID
	if combined {
		if subExercise == 0 {
			exID = e.Exercise1ID
		} else {
			exID = *e.Exercise2ID
		}
	}
	s.mu.Unlock()
	if !combined {
		return
	}

	if field == FieldLoad && s.isBodyweight(ctx, exID) {
		return
	}

	s.mu.Lock()
	if set := s.findSeries(workoutID, exerciseID, seriesID); set != nil {
		switch {
		case field == FieldReps && subExercise == 0:
			set.Reps = coerceInt(raw, domain.DefaultReps)
		case field == FieldReps && subExercise == 1:
			set.Reps2 = coerceInt(raw, domain.DefaultReps)
		case field == FieldLoad && subExercise == 0:
			set.Load = coerceFloat(raw, domain.DefaultLoad)
		case field == FieldLoad && subExercise == 1:
			set.Load2 = coerceFloat(raw, domain.DefaultLoad)
		}
	}
	s.mu.Unlock()
	s.notify()
}

// ToggleDropSet flips a set's drop-set flag. Toggling off clears the
// reduced load so a later re-toggle starts fresh.
func (s *Store) ToggleDropSet(workoutID, exerciseID, seriesID string) {
	s.mu.Lock()
	if set := s.findSeries(workoutID, exerciseID, seriesID); set != nil {
		set.DropSet = !set.DropSet
		if !set.DropSet {
			set.DropSetLoad = 0
		}
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateDropSet patches the drop-set reduced load. Ignored while the
// drop-set flag is off.
func (s *Store) UpdateDropSet(workoutID, exerciseID, seriesID, raw string) {
	s.mu.Lock()
	if set := s.findSeries(workoutID, exerciseID, seriesID); set != nil && set.DropSet {
		set.DropSetLoad = coerceFloat(raw, 0)
	}
	s.mu.Unlock()
	s.notify()
}

// --- Routine level ---

// SetConfig replaces the routine-level settings.
func (s *Store) SetConfig(cfg domain.RoutineConfig) {
	s.mu.Lock()
	s.draft.Config = cfg
	s.mu.Unlock()
	s.notify()
}

// ClearExercises resets the store to an empty draft (used on restart).
func (s *Store) ClearExercises() {
	s.mu.Lock()
	s.draft = domain.RoutineDraft{}
	s.mu.Unlock()
	s.notify()
}

// --- internals ---

func (s *Store) isBodyweight(ctx context.Context, id primitive.ObjectID) bool {
	return s.equipment != nil && s.equipment.IsBodyweight(ctx, id)
}

// findWorkout/findExercise/findSeries return pointers into the tree.
// Callers must hold s.mu.

func (s *Store) findWorkout(workoutID string) *domain.WorkoutDraft {
	for i := range s.draft.Workouts {
		if s.draft.Workouts[i].ID == workoutID {
			return &s.draft.Workouts[i]
		}
	}
	return nil
}

func (s *Store) findExercise(workoutID, exerciseID string) *domain.ExerciseDraft {
	w := s.findWorkout(workoutID)
	if w == nil {
		return nil
	}
	for i := range w.Exercises {
		if w.Exercises[i].ID == exerciseID {
			return &w.Exercises[i]
		}
	}
	return nil
}

func (s *Store) findSeries(workoutID, exerciseID, seriesID string) *domain.SetDraft {
	e := s.findExercise(workoutID, exerciseID)
	if e == nil {
		return nil
	}
	for i := range e.Sets {
		if e.Sets[i].ID == seriesID {
			return &e.Sets[i]
		}
	}
	return nil
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	snapshot := cloneDraft(s.draft)
	summary := summarize(s.draft)
	s.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(snapshot, summary)
		}
	}
}

// summarize derives the computed view from the tree. IsFormValid is
// "every workout has at least one exercise", vacuously true for an
// empty draft; callers wanting a non-empty routine check that separately.
func summarize(d domain.RoutineDraft) domain.DraftSummary {
	sum := domain.DraftSummary{IsFormValid: true}
	for _, w := range d.Workouts {
		sum.TotalExercises += len(w.Exercises)
		if len(w.Exercises) > 0 {
			sum.WorkoutsWithExercises++
		} else {
			sum.WorkoutsWithoutExercises++
			sum.IsFormValid = false
		}
	}
	return sum
}

func cloneDraft(d domain.RoutineDraft) domain.RoutineDraft {
	out := d
	out.Workouts = make([]domain.WorkoutDraft, len(d.Workouts))
	for i, w := range d.Workouts {
		cw := w
		cw.MuscleGroups = append([]string(nil), w.MuscleGroups...)
		cw.Exercises = make([]domain.ExerciseDraft, len(w.Exercises))
		for j, e := range w.Exercises {
			ce := e
			if e.Exercise2ID != nil {
				id2 := *e.Exercise2ID
				ce.Exercise2ID = &id2
			}
			ce.Sets = append([]domain.SetDraft(nil), e.Sets...)
			cw.Exercises[j] = ce
		}
		out.Workouts[i] = cw
	}
	return out
}

// coerceInt parses authoring input, falling back to the field default on
// empty or malformed values.
func coerceInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func coerceFloat(raw string, fallback float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
