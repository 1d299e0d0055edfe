package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/contextflow/compaction"
	"github.com/BaSui01/contextflow/types"
)

// Manager owns per-thread conversation state and runs the compaction
// engine over it. Threads are fully independent; calls on the same
// thread are serialized so that at most one compaction is in flight and
// turn N's window is committed before turn N+1 reads it.
type Manager struct {
	engine *compaction.Engine
	policy compaction.Policy
	logger *zap.Logger

	mu      sync.RWMutex
	threads map[string]*Thread
}

// NewManager creates a Manager. The policy is shared by all threads.
func NewManager(engine *compaction.Engine, policy compaction.Policy, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		engine:  engine,
		policy:  policy,
		logger:  logger,
		threads: make(map[string]*Thread),
	}
}

// NewThread creates a thread with a generated ID.
func (m *Manager) NewThread() *Thread {
	return m.Thread(uuid.NewString())
}

// Thread returns the thread with the given ID, creating it if needed.
func (m *Manager) Thread(id string) *Thread {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.threads[id]; ok {
		return t
	}
	t := &Thread{
		id:     id,
		mgr:    m,
		logger: m.logger.With(zap.String("thread_id", id)),
	}
	m.threads[id] = t
	return t
}

// Thread is one conversation's state: an append-only history plus the
// committed window from the last turn.
type Thread struct {
	id     string
	mgr    *Manager
	logger *zap.Logger

	mu        sync.Mutex
	history   []types.Record
	window    []types.Message
	hasWindow bool
}

// ID returns the thread's identifier.
func (t *Thread) ID() string { return t.id }

// Append adds records to the thread's history without running a
// compaction decision, e.g. tool outputs recorded mid-turn.
func (t *Thread) Append(records ...types.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = append(t.history, records...)
}

// Step appends the turn's messages to history, runs one compaction
// decision, and commits the resulting window. The per-thread lock is
// held across the whole step.
func (t *Thread) Step(ctx context.Context, newTurn ...types.Message) ([]types.Message, compaction.Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = append(t.history, types.Wrap(newTurn)...)

	var prev []types.Message
	if t.hasWindow {
		prev = t.window
	}

	window, stats, err := t.mgr.engine.Compact(ctx, t.history, prev, newTurn, t.mgr.policy)
	if err != nil {
		return nil, stats, err
	}

	t.window = window
	t.hasWindow = true

	out := make([]types.Message, len(window))
	copy(out, window)
	return out, stats, nil
}

// Window returns a copy of the committed window, or nil before the
// first step.
func (t *Thread) Window() []types.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasWindow {
		return nil
	}
	out := make([]types.Message, len(t.window))
	copy(out, t.window)
	return out
}

// HistoryLen returns the number of history records.
func (t *Thread) HistoryLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history)
}
