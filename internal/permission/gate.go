package permission

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/sema-dev/sema-core/internal/corerr"
	"github.com/sema-dev/sema-core/internal/event"
)

// Gate is the permission gate of spec §4.3. engine.Bootstrap creates one
// Gate per engine, shared by all of its sessions; it owns the Grants and
// the doom-loop detector and publishes/rendezvouses over the event bus.
type Gate struct {
	bus     *event.Bus
	grants  *Grants
	workDir string
	doom    *DoomLoopDetector

	pendingMu sync.Mutex
	pending   map[string]chan event.ToolPermissionResponseData
}

// NewGate creates a gate bound to bus (for rendezvous) and workDir (for
// the file-edit project-boundary check).
func NewGate(bus *event.Bus, workDir string) *Gate {
	g := &Gate{
		bus:     bus,
		grants:  NewGrants(),
		workDir: workDir,
		doom:    NewDoomLoopDetector(),
		pending: make(map[string]chan event.ToolPermissionResponseData),
	}
	bus.On(event.ToolPermissionResponse, g.onResponse)
	return g
}

// Grants exposes the gate's in-memory grant set. No caller in the module
// saves or loads it.
func (g *Gate) Grants() *Grants { return g.grants }

func (g *Gate) onResponse(e event.Event) {
	resp, ok := e.Data.(event.ToolPermissionResponseData)
	if !ok {
		return
	}
	g.pendingMu.Lock()
	ch, found := g.pending[resp.CallID]
	g.pendingMu.Unlock()
	if found {
		ch <- resp
	}
}

// Check runs the full decision procedure for one tool call (spec §4.3
// steps 1-6). isReadOnly short-circuits to allow without consulting
// anything else, mirroring the always-bypass fifth path. agentID keys the
// doom-loop history and is carried on the permission request and on any
// RejectedError; grants are shared by every agent that uses this gate.
func (g *Gate) Check(ctx context.Context, agentID event.AgentID, req Request, isReadOnly bool) error {
	if isReadOnly {
		return nil
	}

	if g.doom.Check(string(agentID), req.ToolName, req.Command+req.Path+req.SkillName+req.ServerName+req.ToolID) {
		// Supplemental loop guard: escalate to a full request even if a
		// grant would otherwise allow it, so the user can break the loop.
		return g.request(ctx, agentID, req)
	}

	switch req.Kind {
	case KindFileEdit:
		if g.grants.GlobalEditPermission && isWithinDir(req.Path, g.workDir) {
			return nil
		}
	case KindShell:
		if g.grants.MatchesBash(req.Command) {
			return nil
		}
		if IsSafeShellCommand(req.Command) {
			return nil
		}
	case KindSkill:
		if g.grants.MatchesSkill(req.SkillName) {
			return nil
		}
	case KindMCPTool:
		if g.grants.MatchesMCPTool(req.ServerName, req.ToolID) {
			return nil
		}
	}

	return g.request(ctx, agentID, req)
}

func (g *Gate) request(ctx context.Context, agentID event.AgentID, req Request) error {
	if req.CallID == "" {
		req.CallID = ulid.Make().String()
	}

	respCh := make(chan event.ToolPermissionResponseData, 1)
	g.pendingMu.Lock()
	g.pending[req.CallID] = respCh
	g.pendingMu.Unlock()
	defer func() {
		g.pendingMu.Lock()
		delete(g.pending, req.CallID)
		g.pendingMu.Unlock()
	}()

	g.bus.Emit(event.ToolPermissionRequest, event.ToolPermissionRequestData{
		AgentID:  agentID,
		ToolName: req.ToolName,
		CallID:   req.CallID,
		Title:    req.Title,
		Summary:  req.Summary,
		Content:  req.Content,
	})

	select {
	case <-ctx.Done():
		return &corerr.UserInterruptError{AgentID: string(agentID)}
	case resp := <-respCh:
		return g.applyResponse(agentID, req, resp)
	}
}

func (g *Gate) applyResponse(agentID event.AgentID, req Request, resp event.ToolPermissionResponseData) error {
	switch resp.Decision {
	case event.DecisionAgree:
		return nil
	case event.DecisionAllow:
		g.persistGrant(req)
		return nil
	case event.DecisionRefuse:
		return &RejectedError{
			AgentID:      agentID,
			Kind:         req.Kind,
			ToolName:     req.ToolName,
			CallID:       req.CallID,
			FeedbackText: resp.FeedbackText,
			Message:      corerr.RejectionMessage,
			AbortBatch:   true,
		}
	default:
		// Any other decision string is user feedback (spec §4.3): do not
		// execute the tool, but do not abort the remaining batch either.
		return &RejectedError{
			AgentID:      agentID,
			Kind:         req.Kind,
			ToolName:     req.ToolName,
			CallID:       req.CallID,
			FeedbackText: resp.FeedbackText,
			Message:      resp.FeedbackText,
			AbortBatch:   false,
		}
	}
}

func (g *Gate) persistGrant(req Request) {
	switch req.Kind {
	case KindFileEdit:
		g.grants.GrantEdit()
	case KindShell:
		g.grants.GrantTool(BashEntry(req.Command))
	case KindSkill:
		g.grants.GrantTool(SkillEntry(req.SkillName))
	case KindMCPTool:
		g.grants.GrantTool(MCPToolEntry(req.ServerName, req.ToolID))
	}
}

func isWithinDir(path, dir string) bool {
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
