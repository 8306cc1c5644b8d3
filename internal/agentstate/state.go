package agentstate

import (
	"sync"

	"github.com/sema-dev/sema-core/internal/event"
)

// State holds one agent's mutable run state (spec §3). All fields are
// guarded by mu; callers must go through the Registry's mutation entry
// points rather than touching State fields directly, mirroring the
// spec's closed set of mutators (appendMessage, setMessageHistory,
// setReadFileTimestamp, updateTodosIntelligently, updateState).
type State struct {
	mu sync.RWMutex

	id                 event.AgentID
	messageHistory     []Turn
	readFileTimestamps map[string]int64 // path -> mtime millis
	todos              []Todo
	runState           event.RunState
	abort              *AbortHandle
}

func newState(id event.AgentID) *State {
	return &State{
		id:                 id,
		readFileTimestamps: make(map[string]int64),
		runState:           event.RunIdle,
		abort:              NewAbortHandle(),
	}
}

// ID returns the agent id this state belongs to.
func (s *State) ID() event.AgentID { return s.id }

// MessageHistory returns a snapshot copy of the agent's turns.
func (s *State) MessageHistory() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.messageHistory))
	copy(out, s.messageHistory)
	return out
}

// Todos returns a snapshot copy of the agent's todo list.
func (s *State) Todos() []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// RunState returns the agent's current run state.
func (s *State) RunState() event.RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runState
}

// ReadFileTimestamp returns the last-observed mtime (millis) for path,
// and whether it has been recorded at all.
func (s *State) ReadFileTimestamp(path string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.readFileTimestamps[path]
	return ts, ok
}

// Abort returns the agent's current abort handle.
func (s *State) Abort() *AbortHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.abort
}

// ResetAbort installs a fresh abort handle, used at the start of a new
// turn so a previous turn's cancellation cannot leak into the next one.
func (s *State) ResetAbort() *AbortHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abort = NewAbortHandle()
	return s.abort
}
