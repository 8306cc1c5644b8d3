package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/sema-dev/sema-core/internal/agent"
	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/corerr"
	"github.com/sema-dev/sema-core/internal/event"
)

// ProcessUserInput is the engine's one entry point for driving a turn
// (spec §6's processUserInput): it resolves `/clear`, `/compact`, and
// custom `/<name>[:<ns>] args` commands first, then falls through to
// starting an ordinary agentic turn.
func (e *Engine) ProcessUserInput(ctx context.Context, sessionID, input string) error {
	sess, err := e.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	agentID := sess.AgentID()

	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "/clear":
		return e.clear(agentID)
	case trimmed == "/compact":
		return e.explicitCompact(ctx, agentID)
	case strings.HasPrefix(trimmed, "/"):
		if resolved, ok, err := e.resolveCommand(ctx, sessionID, trimmed); ok || err != nil {
			if err != nil {
				return err
			}
			return e.startTurn(ctx, sess, resolved)
		}
	}

	return e.startTurn(ctx, sess, trimmed)
}

func (e *Engine) clear(agentID event.AgentID) error {
	e.states.SetMessageHistory(agentID, nil)
	e.Bus.Emit(event.SessionCleared, nil)
	return nil
}

func (e *Engine) explicitCompact(ctx context.Context, agentID event.AgentID) error {
	state := e.states.ForAgent(agentID)
	e.states.UpdateState(agentID, event.RunCompacting)
	defer e.states.UpdateState(agentID, event.RunIdle)

	turns := state.MessageHistory()
	newTurns, err := e.compactor.Run(ctx, agentID, turns, corerr.CompactExplicit)
	if err != nil {
		e.Bus.Emit(event.CompactExec, event.CompactExecData{AgentID: agentID, ErrMsg: err.Error()})
		e.Bus.Emit(event.SessionError, event.SessionErrorData{
			Type: "compact_error", Message: err.Error(),
		})
		return err
	}
	e.states.SetMessageHistory(agentID, newTurns)
	return nil
}

// resolveCommand parses `/<name>[:<ns>] args`, looks it up in the
// custom command executor, and returns the resolved prompt text. ok is
// false (with a nil error) when trimmed isn't a known command name, in
// which case the caller treats the input as plain text.
func (e *Engine) resolveCommand(ctx context.Context, sessionID, trimmed string) (string, bool, error) {
	if e.commands == nil {
		return "", false, nil
	}
	rest := strings.TrimPrefix(trimmed, "/")
	name, args, _ := strings.Cut(rest, " ")
	if _, exists := e.commands.Get(name); !exists {
		return "", false, nil
	}

	result, err := e.commands.Execute(ctx, name, args)
	if err != nil {
		return "", true, fmt.Errorf("resolve command %s: %w", name, err)
	}
	e.Bus.Emit(event.CommandCustomResolved, event.CommandCustomResolvedData{Name: name, Args: args})
	return result.Prompt, true, nil
}

func (e *Engine) startTurn(ctx context.Context, sess *Session, text string) error {
	agentID := sess.AgentID()
	e.states.AppendMessage(agentID, agentstate.UserTurn(text))

	persona, err := e.agents.Get(sess.AgentName)
	if err != nil {
		persona, err = e.agents.Get("build")
		if err != nil {
			return fmt.Errorf("resolve persona: %w", err)
		}
	}

	providerID, modelID, err := e.resolveModel(persona)
	if err != nil {
		return err
	}

	return e.loop.Run(ctx, agentID, persona, providerID, modelID)
}

func (e *Engine) resolveModel(persona *agent.Agent) (string, string, error) {
	if persona != nil && persona.Model != nil {
		return persona.Model.ProviderID, persona.Model.ModelID, nil
	}
	model, err := e.providers.DefaultModel()
	if err != nil {
		return "", "", fmt.Errorf("resolve default model: %w", err)
	}
	return model.ProviderID, model.ID, nil
}

// InterruptSession fires the session's abort signal; the loop unwinds
// to idle at its next checkpoint and emits session:interrupted.
func (e *Engine) InterruptSession(sessionID string) error {
	sess, err := e.GetSession(context.Background(), sessionID)
	if err != nil {
		return err
	}
	e.states.ForAgent(sess.AgentID()).Abort().Abort()
	return nil
}
