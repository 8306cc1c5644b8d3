package subagent

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/sema-dev/sema-core/internal/agent"
	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/event"
	"github.com/sema-dev/sema-core/internal/loop"
	"github.com/sema-dev/sema-core/internal/provider"
	"github.com/sema-dev/sema-core/internal/tool"
)

// Runner implements tool.TaskExecutor, running sub-agent tasks through
// the same internal/loop.Loop the primary agent uses.
type Runner struct {
	bus       *event.Bus
	states    *agentstate.Registry
	agents    *agent.Registry
	providers *provider.Registry
	loop      *loop.Loop
}

// New creates a Runner. loop must have been constructed with a tool
// registry that includes the Task tool itself (subject to each
// sub-agent persona's own ToolEnabled filtering) for nested task
// delegation to be possible.
func New(bus *event.Bus, states *agentstate.Registry, agents *agent.Registry, providers *provider.Registry, l *loop.Loop) *Runner {
	return &Runner{bus: bus, states: states, agents: agents, providers: providers, loop: l}
}

// ExecuteSubtask implements tool.TaskExecutor (spec §4.9): it allocates
// a fresh agent id isolated from the parent, links its abort token to
// the parent's, seeds its history with the task prompt, and runs the
// agentic loop to completion. The sub-agent's final assistant text
// becomes the tool result.
func (r *Runner) ExecuteSubtask(ctx context.Context, parentSessionID, agentName, prompt string, opts tool.TaskOptions) (*tool.TaskResult, error) {
	persona, err := r.agents.Get(agentName)
	if err != nil {
		return nil, fmt.Errorf("unknown subagent type: %s", agentName)
	}
	if !persona.IsSubagent() {
		return nil, fmt.Errorf("agent %s cannot be used as subagent (mode: %s)", agentName, persona.Mode)
	}

	parentID := event.AgentID(parentSessionID)
	childID := event.AgentID(fmt.Sprintf("%s/%s-%s", parentSessionID, agentName, strings.ToLower(ulid.Make().String()[:10])))

	childState := r.states.ForAgent(childID)
	r.linkAbort(parentID, childState.Abort())

	r.states.SetMessageHistory(childID, []agentstate.Turn{agentstate.UserTurn(prompt)})

	r.bus.Emit(event.TaskAgentStart, event.TaskAgentData{
		ParentAgentID: parentID, AgentID: childID, Description: opts.Description,
	})

	providerID, modelID, err := r.resolveModel(persona, opts.Model)
	if err != nil {
		return nil, err
	}

	runErr := r.loop.Run(ctx, childID, persona, providerID, modelID)
	resultText := finalAssistantText(childState.MessageHistory())

	r.bus.Emit(event.TaskAgentEnd, event.TaskAgentData{
		ParentAgentID: parentID, AgentID: childID, Description: opts.Description, ResultText: resultText,
	})

	result := &tool.TaskResult{Output: resultText, AgentID: string(childID)}
	if runErr != nil {
		result.Error = runErr.Error()
	}
	return result, nil
}

// linkAbort aborts childAbort as soon as the parent agent's own abort
// fires, so interrupting a primary agent also tears down any
// in-flight sub-agents it spawned.
func (r *Runner) linkAbort(parentID event.AgentID, childAbort *agentstate.AbortHandle) {
	parentAbort := r.states.ForAgent(parentID).Abort()
	go func() {
		select {
		case <-parentAbort.Done():
			childAbort.Abort()
		case <-childAbort.Done():
		}
	}()
}

// resolveModel honors an explicit persona.Model override first, then
// opts.Model as a coarse sonnet/opus/haiku hint matched against every
// registered model's id (same substring convention provider.Registry
// uses internally to rank models), then falls back to the default model.
func (r *Runner) resolveModel(persona *agent.Agent, modelHint string) (string, string, error) {
	if persona.Model != nil {
		return persona.Model.ProviderID, persona.Model.ModelID, nil
	}
	if modelHint != "" {
		for _, m := range r.providers.AllModels() {
			if strings.Contains(strings.ToLower(m.ID), strings.ToLower(modelHint)) {
				return m.ProviderID, m.ID, nil
			}
		}
	}
	model, err := r.providers.DefaultModel()
	if err != nil {
		return "", "", fmt.Errorf("resolve default model: %w", err)
	}
	return model.ProviderID, model.ID, nil
}

func finalAssistantText(turns []agentstate.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role != "assistant" {
			continue
		}
		return strings.Join(turns[i].TextBlocks, "\n")
	}
	return ""
}
