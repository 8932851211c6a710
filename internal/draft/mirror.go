package draft

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitlink/coach-app/internal/domain"
)

// Writer persists draft snapshots so a reload resumes the in-progress
// session. Satisfied by repository.DraftMirrorRepository.
type Writer interface {
	SaveDraft(ctx context.Context, alunoID primitive.ObjectID, draft domain.RoutineDraft) error
}

const defaultDebounce = 2 * time.Second

// Mirror is a write-through decorator around a Store: it subscribes to
// mutations and persists snapshots keyed by aluno, debounced so bursts of
// keystrokes collapse into one write. Persistence is best-effort: a
// failed write is logged and never surfaced to the authoring flow.
type Mirror struct {
	writer   Writer
	alunoID  primitive.ObjectID
	debounce time.Duration

	mu      sync.Mutex
	pending *domain.RoutineDraft
	timer   *time.Timer
	stopped bool

	unsubscribe func()
}

// NewMirror attaches a mirror to the store. Pass debounce <= 0 for the
// default interval.
func NewMirror(store *Store, writer Writer, alunoID primitive.ObjectID, debounce time.Duration) *Mirror {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	m := &Mirror{
		writer:   writer,
		alunoID:  alunoID,
		debounce: debounce,
	}
	m.unsubscribe = store.Subscribe(func(snapshot domain.RoutineDraft, _ domain.DraftSummary) {
		m.schedule(snapshot)
	})
	return m
}

func (m *Mirror) schedule(snapshot domain.RoutineDraft) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.pending = &snapshot
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, m.flushPending)
}

func (m *Mirror) flushPending() {
	m.mu.Lock()
	snapshot := m.pending
	m.pending = nil
	m.mu.Unlock()
	if snapshot == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.writer.SaveDraft(ctx, m.alunoID, *snapshot); err != nil {
		// Best-effort: the in-memory draft stays authoritative, worst case
		// a reload loses the latest keystrokes.
		log.Printf("WARN: draft mirror write failed for aluno %s: %v", m.alunoID.Hex(), err)
	}
}

// Flush writes any pending snapshot immediately, e.g. before finalize.
func (m *Mirror) Flush() {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.mu.Unlock()
	m.flushPending()
}

// Stop detaches the mirror from the store and drops any pending write.
func (m *Mirror) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.pending = nil
	if m.timer != nil {
		m.timer.Stop()
	}
	m.mu.Unlock()
	m.unsubscribe()
}
