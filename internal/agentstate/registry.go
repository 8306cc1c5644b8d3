package agentstate

import (
	"sync"

	"github.com/sema-dev/sema-core/internal/event"
)

// Registry is the thread-safe AgentID -> *State mapping of spec §4.2.
// engine.Bootstrap creates one Registry per engine, shared by all of its
// sessions, each session's agent having its own entry; sub-agents get
// entries in the same registry, keyed by their freshly generated ids.
type Registry struct {
	bus *event.Bus

	mu      sync.Mutex
	entries map[event.AgentID]*State
}

// NewRegistry creates a registry that publishes mutation events on bus.
func NewRegistry(bus *event.Bus) *Registry {
	return &Registry{
		bus:     bus,
		entries: make(map[event.AgentID]*State),
	}
}

// ForAgent returns the state handle for id, lazily creating it if absent
// (spec §4.2 "absent ids are lazily created").
func (r *Registry) ForAgent(id event.AgentID) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.entries[id]
	if !ok {
		s = newState(id)
		r.entries[id] = s
	}
	return s
}

// Remove destroys an agent's state entry, used when a sub-agent's outer
// loop returns (spec §3 "Lifecycle").
func (r *Registry) Remove(id event.AgentID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// AppendMessage appends a turn to id's message history.
func (r *Registry) AppendMessage(id event.AgentID, turn Turn) {
	s := r.ForAgent(id)
	s.mu.Lock()
	s.messageHistory = append(s.messageHistory, turn)
	s.mu.Unlock()
}

// SetMessageHistory replaces id's entire message history, used by
// compaction and by /clear (spec §4.2).
func (r *Registry) SetMessageHistory(id event.AgentID, turns []Turn) {
	s := r.ForAgent(id)
	s.mu.Lock()
	s.messageHistory = append([]Turn{}, turns...)
	s.mu.Unlock()
}

// SetReadFileTimestamp records path's mtime for id, written on every
// successful Read and consulted by Write/Edit to reject stale writes.
func (r *Registry) SetReadFileTimestamp(id event.AgentID, path string, mtimeMillis int64) {
	s := r.ForAgent(id)
	s.mu.Lock()
	s.readFileTimestamps[path] = mtimeMillis
	s.mu.Unlock()
}

// UpdateTodosIntelligently validates the invariants (at most one
// in_progress, no empty content/activeForm) and, only if the resulting
// list differs from the current one, stores it and emits todos:update
// (spec §4.2). Returns an error without mutating state if the invariants
// are violated.
func (r *Registry) UpdateTodosIntelligently(id event.AgentID, todos []Todo) error {
	if err := validateTodos(todos); err != nil {
		return err
	}

	s := r.ForAgent(id)
	s.mu.Lock()
	if todosEqual(s.todos, todos) {
		s.mu.Unlock()
		return nil
	}
	s.todos = append([]Todo{}, todos...)
	s.mu.Unlock()

	if r.bus != nil {
		r.bus.Emit(event.TodosUpdate, event.TodosUpdateData{AgentID: id, Todos: todos})
	}
	return nil
}

// UpdateState sets id's run state and emits state:update (spec §4.2,
// §4.9's idle/busy/compacting state machine).
func (r *Registry) UpdateState(id event.AgentID, run event.RunState) {
	s := r.ForAgent(id)
	s.mu.Lock()
	s.runState = run
	s.mu.Unlock()

	if r.bus != nil {
		r.bus.Emit(event.StateUpdate, event.StateUpdateData{AgentID: id, RunState: run})
	}
}
