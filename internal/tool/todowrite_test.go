package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/event"
)

func TestTodoWriteUpdatesAgentState(t *testing.T) {
	states := agentstate.NewRegistry(nil)
	tool := NewTodoWriteTool("/tmp", states)

	input, err := json.Marshal(TodoWriteInput{Todos: []todoItem{
		{ID: "1", Content: "write tests", Status: "in_progress", Priority: "high"},
		{ID: "2", Content: "ship it", Status: "pending", Priority: "low"},
	}})
	require.NoError(t, err)

	result, err := tool.Execute(context.Background(), input, &Context{Agent: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, "2 todos", result.Title)

	todos := states.ForAgent(event.AgentID("sess-1")).Todos()
	require.Len(t, todos, 2)
	assert.Equal(t, "write tests", todos[0].Content)
	assert.Equal(t, agentstate.TodoInProgress, todos[0].Status)
}

func TestTodoWriteRejectsInvalidTodoList(t *testing.T) {
	states := agentstate.NewRegistry(nil)
	tool := NewTodoWriteTool("/tmp", states)

	input, err := json.Marshal(TodoWriteInput{Todos: []todoItem{
		{ID: "1", Content: "a", Status: "in_progress", Priority: "high"},
		{ID: "2", Content: "b", Status: "in_progress", Priority: "low"},
	}})
	require.NoError(t, err)

	_, err = tool.Execute(context.Background(), input, &Context{Agent: "sess-1"})
	assert.Error(t, err)
}

func TestTodoWriteCountsOnlyNonCompleted(t *testing.T) {
	states := agentstate.NewRegistry(nil)
	tool := NewTodoWriteTool("/tmp", states)

	input, err := json.Marshal(TodoWriteInput{Todos: []todoItem{
		{ID: "1", Content: "done already", Status: "completed", Priority: "low"},
	}})
	require.NoError(t, err)

	result, err := tool.Execute(context.Background(), input, &Context{Agent: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, "0 todos", result.Title)
}
