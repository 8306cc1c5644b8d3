package agentstate

// Turn is one entry in an agent's messageHistory (spec §3). A turn is
// either a user turn or an assistant turn; Role discriminates which
// fields apply, mirroring pkg/types.Message's role-tagged single-struct
// shape rather than an interface, since history is walked and
// JSON-persisted as a flat, ordered sequence.
type Turn struct {
	Role string `json:"role"` // "user" | "assistant"

	// User turn fields.
	Content       string         `json:"content,omitempty"`
	ToolUseResult *ToolUseResult `json:"toolUseResult,omitempty"`
	ControlSignal *ControlSignal `json:"controlSignal,omitempty"`

	// Assistant turn fields.
	TextBlocks     []string        `json:"textBlocks,omitempty"`
	ThinkingBlocks []string        `json:"thinkingBlocks,omitempty"`
	ToolUseBlocks  []ToolUseBlock  `json:"toolUseBlocks,omitempty"`
	DurationMs     int64           `json:"durationMs,omitempty"`
}

// ToolUseResult carries a tool's result back into history attached to the
// user turn that follows the assistant's tool-use request.
type ToolUseResult struct {
	CallID             string         `json:"callId"`
	ToolName           string         `json:"toolName"`
	Output             string         `json:"output,omitempty"`
	IsError            bool           `json:"isError,omitempty"`
	ResultForAssistant string         `json:"resultForAssistant,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// ControlSignal is an out-of-band instruction attached to a user turn,
// such as the plan-mode exit rebuild signal (spec §4.6 step 10).
type ControlSignal struct {
	RebuildContext bool `json:"rebuildContext,omitempty"`
}

// ToolUseBlock is one tool invocation requested by the model within an
// assistant turn.
type ToolUseBlock struct {
	CallID string         `json:"callId"`
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
}

// UserTurn builds a plain user turn.
func UserTurn(content string) Turn {
	return Turn{Role: "user", Content: content}
}

// AssistantTurn builds an assistant turn.
func AssistantTurn(text, thinking []string, toolUse []ToolUseBlock, durationMs int64) Turn {
	return Turn{
		Role:           "assistant",
		TextBlocks:     text,
		ThinkingBlocks: thinking,
		ToolUseBlocks:  toolUse,
		DurationMs:     durationMs,
	}
}
