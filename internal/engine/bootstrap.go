package engine

import (
	"path/filepath"

	"github.com/sema-dev/sema-core/internal/agent"
	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/command"
	"github.com/sema-dev/sema-core/internal/compact"
	"github.com/sema-dev/sema-core/internal/config"
	"github.com/sema-dev/sema-core/internal/event"
	"github.com/sema-dev/sema-core/internal/loop"
	"github.com/sema-dev/sema-core/internal/mcp"
	"github.com/sema-dev/sema-core/internal/permission"
	"github.com/sema-dev/sema-core/internal/provider"
	"github.com/sema-dev/sema-core/internal/scheduler"
	"github.com/sema-dev/sema-core/internal/skill"
	"github.com/sema-dev/sema-core/internal/storage"
	"github.com/sema-dev/sema-core/internal/subagent"
	"github.com/sema-dev/sema-core/internal/tool"
	"github.com/sema-dev/sema-core/pkg/types"
)

// Bootstrap builds every collaborator the engine needs and wires them
// together, so cmd/ entry points don't each re-derive the dependency
// graph. Callers that already have a provider registry (initializing
// providers requires network calls and a context cmd/ wants to control
// directly) pass it in rather than have Bootstrap build its own.
func Bootstrap(workDir string, appConfig *types.Config, store *storage.Storage, providers *provider.Registry) (*Engine, error) {
	bus := event.NewBus()
	states := agentstate.NewRegistry(bus)
	agents := agent.NewRegistry()
	gate := permission.NewGate(bus, workDir)

	paths := config.GetPaths()
	skills, err := skill.NewRegistry(
		filepath.Join(paths.Config, "skill"),
		filepath.Join(workDir, ".opencode", "skill"),
	)
	if err != nil {
		return nil, err
	}

	commands := command.NewExecutor(workDir, appConfig)
	mcpClient := mcp.NewClient()
	toolReg := tool.DefaultRegistry(workDir, store, gate, states)
	toolReg.RegisterTaskTool(agents)

	dispatcher := scheduler.New(bus, toolReg)
	compactor := compact.New(bus, providers, compact.DefaultConfig)
	l := loop.New(bus, states, providers, toolReg, dispatcher, compactor, workDir, loop.DefaultConfig)

	runner := subagent.New(bus, states, agents, providers, l)
	toolReg.SetTaskExecutor(runner)

	return New(Deps{
		Bus:        bus,
		States:     states,
		Providers:  providers,
		Tools:      toolReg,
		Agents:     agents,
		Commands:   commands,
		Skills:     skills,
		MCP:        mcpClient,
		Gate:       gate,
		Dispatcher: dispatcher,
		Compactor:  compactor,
		Loop:       l,
		Store:      store,
		WorkDir:    workDir,
	}), nil
}
