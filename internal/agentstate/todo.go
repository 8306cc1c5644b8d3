package agentstate

import "fmt"

// TodoStatus is the lifecycle state of one todo item.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
)

// Todo is one item in an agent's todo list (spec §3).
type Todo struct {
	Content    string     `json:"content"`
	Status     TodoStatus `json:"status"`
	ActiveForm string     `json:"activeForm"`
}

// validateTodos enforces spec §3/§4.8's invariants: at most one
// in_progress item, and no item with empty content or activeForm.
func validateTodos(todos []Todo) error {
	inProgress := 0
	for i, t := range todos {
		if t.Content == "" {
			return fmt.Errorf("todo %d: empty content", i)
		}
		if t.ActiveForm == "" {
			return fmt.Errorf("todo %d: empty activeForm", i)
		}
		if t.Status == TodoInProgress {
			inProgress++
		}
	}
	if inProgress > 1 {
		return fmt.Errorf("at most one todo may be in_progress, got %d", inProgress)
	}
	return nil
}

func todosEqual(a, b []Todo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
