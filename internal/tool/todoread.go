package tool

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"

	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/event"
)

const todoreadDescription = `Use this tool to read your todo list`

// TodoReadTool reads the current todo list for an agent.
type TodoReadTool struct {
	workDir string
	states  *agentstate.Registry
}

// NewTodoReadTool creates a new todoread tool.
func NewTodoReadTool(workDir string, states *agentstate.Registry) *TodoReadTool {
	return &TodoReadTool{
		workDir: workDir,
		states:  states,
	}
}

func (t *TodoReadTool) ID() string          { return "todoread" }
func (t *TodoReadTool) Description() string { return todoreadDescription }
func (t *TodoReadTool) IsReadOnly() bool    { return true }

func (t *TodoReadTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *TodoReadTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	agentID := event.AgentID(toolCtx.Agent)
	todos := t.states.ForAgent(agentID).Todos()

	nonCompleted := 0
	for _, todo := range todos {
		if todo.Status != agentstate.TodoCompleted {
			nonCompleted++
		}
	}

	output, _ := json.MarshalIndent(todos, "", "  ")
	return &Result{
		Title:  fmt.Sprintf("%d todos", nonCompleted),
		Output: string(output),
		Metadata: map[string]any{
			"todos": todos,
		},
	}, nil
}

func (t *TodoReadTool) EinoTool() einotool.InvokableTool {
	return &einoToolWrapper{tool: t}
}
