package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sema-dev/sema-core/internal/agent"
	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/command"
	"github.com/sema-dev/sema-core/internal/compact"
	"github.com/sema-dev/sema-core/internal/event"
	"github.com/sema-dev/sema-core/internal/loop"
	"github.com/sema-dev/sema-core/internal/mcp"
	"github.com/sema-dev/sema-core/internal/permission"
	"github.com/sema-dev/sema-core/internal/provider"
	"github.com/sema-dev/sema-core/internal/scheduler"
	"github.com/sema-dev/sema-core/internal/skill"
	"github.com/sema-dev/sema-core/internal/storage"
	"github.com/sema-dev/sema-core/internal/tool"
)

// Session is a persisted conversation: a stable id mapping 1:1 onto an
// agentstate.AgentID for the session's primary agent.
type Session struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Directory string `json:"directory"`
	Title     string `json:"title"`
	AgentName string `json:"agentName"`
	Created   int64  `json:"created"`
	Updated   int64  `json:"updated"`
}

// AgentID is the agentstate key for a session's primary agent.
func (s *Session) AgentID() event.AgentID { return event.AgentID(s.ID) }

// Engine wires every component into the one surface an embedder talks
// to (spec §6's public engine API).
type Engine struct {
	Bus *event.Bus

	states     *agentstate.Registry
	providers  *provider.Registry
	tools      *tool.Registry
	agents     *agent.Registry
	commands   *command.Executor
	skills     *skill.Registry
	mcpClient  *mcp.Client
	gate       *permission.Gate
	dispatcher *scheduler.Dispatcher
	compactor  *compact.Compactor
	loop       *loop.Loop
	store      *storage.Storage
	workDir    string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Deps bundles the collaborators the engine wires together. Every
// field is expected to already exist (built by the process that
// assembles the module's dependency graph at startup); Engine does not
// construct them itself.
type Deps struct {
	Bus        *event.Bus
	States     *agentstate.Registry
	Providers  *provider.Registry
	Tools      *tool.Registry
	Agents     *agent.Registry
	Commands   *command.Executor
	Skills     *skill.Registry
	MCP        *mcp.Client
	Gate       *permission.Gate
	Dispatcher *scheduler.Dispatcher
	Compactor  *compact.Compactor
	Loop       *loop.Loop
	Store      *storage.Storage
	WorkDir    string
}

// New assembles the engine façade from its collaborators.
func New(d Deps) *Engine {
	return &Engine{
		Bus:        d.Bus,
		states:     d.States,
		providers:  d.Providers,
		tools:      d.Tools,
		agents:     d.Agents,
		commands:   d.Commands,
		skills:     d.Skills,
		mcpClient:  d.MCP,
		gate:       d.Gate,
		dispatcher: d.Dispatcher,
		compactor:  d.Compactor,
		loop:       d.Loop,
		store:      d.Store,
		workDir:    d.WorkDir,
		sessions:   make(map[string]*Session),
	}
}

// CreateSession creates and persists a new session rooted at
// directory, with a fresh agentstate entry for its primary agent.
func (e *Engine) CreateSession(ctx context.Context, directory, title, agentName string) (*Session, error) {
	if title == "" {
		title = "New Session"
	}
	if agentName == "" {
		agentName = "build"
	}

	now := time.Now().UnixMilli()
	sess := &Session{
		ID:        ulid.Make().String(),
		ProjectID: hashDirectory(directory),
		Directory: directory,
		Title:     title,
		AgentName: agentName,
		Created:   now,
		Updated:   now,
	}

	if e.store != nil {
		if err := e.store.Put(ctx, []string{"session", sess.ProjectID, sess.ID}, sess); err != nil {
			return nil, fmt.Errorf("persist session: %w", err)
		}
	}

	e.mu.Lock()
	e.sessions[sess.ID] = sess
	e.mu.Unlock()

	e.states.ForAgent(sess.AgentID())
	e.Bus.Emit(event.SessionReady, sess.ID)
	return sess, nil
}

// GetSession looks up a session by id, consulting the in-memory cache
// before falling back to storage.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	e.mu.RLock()
	sess, ok := e.sessions[sessionID]
	e.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if e.store == nil {
		return nil, storage.ErrNotFound
	}
	projects, err := e.store.List(ctx, []string{"session"})
	if err != nil {
		return nil, err
	}
	for _, projectID := range projects {
		var loaded Session
		if err := e.store.Get(ctx, []string{"session", projectID, sessionID}, &loaded); err == nil {
			e.mu.Lock()
			e.sessions[sessionID] = &loaded
			e.mu.Unlock()
			return &loaded, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListSessions returns every session rooted at directory, or every
// known session if directory is empty.
func (e *Engine) ListSessions(ctx context.Context, directory string) ([]*Session, error) {
	var out []*Session
	if e.store == nil {
		e.mu.RLock()
		defer e.mu.RUnlock()
		for _, s := range e.sessions {
			if directory == "" || s.Directory == directory {
				out = append(out, s)
			}
		}
		return out, nil
	}

	projects, err := e.store.List(ctx, []string{"session"})
	if err != nil {
		return nil, err
	}
	for _, projectID := range projects {
		if directory != "" && projectID != hashDirectory(directory) {
			continue
		}
		err := e.store.Scan(ctx, []string{"session", projectID}, func(_ string, data json.RawMessage) error {
			var s Session
			if err := json.Unmarshal(data, &s); err != nil {
				return err
			}
			out = append(out, &s)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteSession removes a session's persisted record and runtime state.
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) error {
	sess, err := e.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	delete(e.sessions, sessionID)
	e.mu.Unlock()
	e.states.Remove(sess.AgentID())

	if e.store != nil {
		return e.store.Delete(ctx, []string{"session", sess.ProjectID, sessionID})
	}
	return nil
}

func hashDirectory(directory string) string {
	h := sha256.New()
	h.Write([]byte(directory))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
