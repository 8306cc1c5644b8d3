package engine

import (
	"context"

	"github.com/sema-dev/sema-core/internal/agent"
	"github.com/sema-dev/sema-core/internal/mcp"
	"github.com/sema-dev/sema-core/internal/provider"
	"github.com/sema-dev/sema-core/internal/skill"
	"github.com/sema-dev/sema-core/pkg/types"
)

// --- Model management (spec §6's Model CRUD) ---

// ListModels returns every model every registered provider exposes.
func (e *Engine) ListModels() []types.Model { return e.providers.AllModels() }

// GetModel resolves a specific provider/model pair.
func (e *Engine) GetModel(providerID, modelID string) (*types.Model, error) {
	return e.providers.GetModel(providerID, modelID)
}

// ListProviders returns every registered provider.
func (e *Engine) ListProviders() []provider.Provider { return e.providers.List() }

// --- MCP management (spec §6's MCP CRUD) ---

// AddMCPServer connects to an MCP server and registers its tools into
// the engine's tool registry so the loop can dispatch them like any
// other tool.
func (e *Engine) AddMCPServer(ctx context.Context, name string, cfg *mcp.Config) error {
	if err := e.mcpClient.AddServer(ctx, name, cfg); err != nil {
		return err
	}
	mcp.RegisterMCPTools(e.mcpClient, e.tools)
	return nil
}

// ListMCPServers returns connection status for every configured MCP server.
func (e *Engine) ListMCPServers() []mcp.ServerStatus { return e.mcpClient.Status() }

// GetMCPServer returns one server's status.
func (e *Engine) GetMCPServer(name string) (*mcp.ServerStatus, error) {
	return e.mcpClient.GetServer(name)
}

// RemoveMCPServer disconnects and forgets an MCP server. Its
// previously-registered tool wrappers remain in the tool registry:
// mcp.Client drops the server's own tool list, but nothing unregisters
// the wrappers; re-adding the server after a config change re-wires
// fresh wrappers on top.
func (e *Engine) RemoveMCPServer(name string) error { return e.mcpClient.RemoveServer(name) }

// Close releases resources held by the engine's collaborators (presently
// just the MCP client's open server connections). The event bus and
// sessions need no explicit teardown.
func (e *Engine) Close() error { return e.mcpClient.Close() }

// --- Skill management (spec §6's Skill CRUD) ---

func (e *Engine) ListSkills() []*skill.Skill           { return e.skills.List() }
func (e *Engine) GetSkill(name string) (*skill.Skill, bool) { return e.skills.Get(name) }
func (e *Engine) RegisterSkill(sk *skill.Skill)        { e.skills.Register(sk) }
func (e *Engine) UnregisterSkill(name string)          { e.skills.Unregister(name) }

// --- Agent management (spec §6's Agent CRUD) ---

func (e *Engine) ListAgents() []*agent.Agent             { return e.agents.List() }
func (e *Engine) GetAgent(name string) (*agent.Agent, error) { return e.agents.Get(name) }
func (e *Engine) RegisterAgent(a *agent.Agent)           { e.agents.Register(a) }
func (e *Engine) UnregisterAgent(name string)            { e.agents.Unregister(name) }
