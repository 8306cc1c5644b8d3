package event

// Name identifies an event on the bus. Names follow the `category:action`
// convention from the engine's event catalog.
type Name string

const (
	// Lifecycle
	SessionReady       Name = "session:ready"
	SessionError       Name = "session:error"
	SessionInterrupted Name = "session:interrupted"
	SessionCleared     Name = "session:cleared"
	StateUpdate        Name = "state:update"

	// Streaming
	MessageThinkingChunk Name = "message:thinking:chunk"
	MessageTextChunk     Name = "message:text:chunk"
	MessageComplete      Name = "message:complete"

	// Tools
	ToolPermissionRequest  Name = "tool:permission:request"
	ToolPermissionResponse Name = "tool:permission:response"
	ToolExecutionStart     Name = "tool:execution:start"
	ToolExecutionComplete  Name = "tool:execution:complete"
	ToolExecutionError     Name = "tool:execution:error"

	// Sub-agents
	TaskAgentStart Name = "task:agent:start"
	TaskAgentEnd   Name = "task:agent:end"

	// Plan mode
	PlanExitRequest  Name = "plan:exit:request"
	PlanExitResponse Name = "plan:exit:response"
	PlanImplement    Name = "plan:implement"

	// Q&A
	AskQuestionRequest  Name = "ask:question:request"
	AskQuestionResponse Name = "ask:question:response"

	// Context
	ConversationUsage Name = "conversation:usage"
	CompactExec       Name = "compact:exec"
	FileReference     Name = "file:reference"
	TopicUpdate       Name = "topic:update"
	TodosUpdate       Name = "todos:update"

	// Commands
	CommandCustomResolved Name = "command:custom:resolved"
)

// AgentID identifies an agent state entry (see internal/agentstate).
type AgentID string

// MainAgentID is the fixed sentinel identifying the main agent.
const MainAgentID AgentID = "main"

// RunState is the run state of an agent (spec §3, §4.9 state machine).
type RunState string

const (
	RunIdle       RunState = "idle"
	RunBusy       RunState = "busy"
	RunCompacting RunState = "compacting"
)

// StateUpdateData is the payload of a state:update event.
type StateUpdateData struct {
	AgentID  AgentID  `json:"agentId"`
	RunState RunState `json:"runState"`
}

// SessionErrorData is the payload of a session:error event.
type SessionErrorData struct {
	Type    string `json:"type"` // "api_error" | "compact_error" | "config_error"
	Message string `json:"message"`
}

// MessageChunkData is the payload of message:thinking:chunk / message:text:chunk.
type MessageChunkData struct {
	AgentID AgentID `json:"agentId"`
	Delta   string  `json:"delta"`
}

// MessageCompleteData is the payload of message:complete.
type MessageCompleteData struct {
	AgentID  AgentID       `json:"agentId"`
	Duration int64         `json:"durationMs"`
	HasTools bool          `json:"hasTools"`
}

// DiffContent describes a file-edit permission request's preview.
type DiffContent struct {
	Type     string `json:"type"` // "diff" | "new"
	Patch    string `json:"patch,omitempty"`
	DiffText string `json:"diffText,omitempty"`
}

// ToolPermissionRequestData is the payload of tool:permission:request.
// Every request/response pair carries AgentID so multi-agent setups route
// correctly (spec §6).
type ToolPermissionRequestData struct {
	AgentID  AgentID      `json:"agentId"`
	ToolName string       `json:"toolName"`
	CallID   string       `json:"callId"`
	Title    string       `json:"title"`
	Summary  string       `json:"summary,omitempty"`
	Content  *DiffContent `json:"content,omitempty"`
}

// PermissionDecision is a user's response to a permission request (spec §4.3).
type PermissionDecision string

const (
	DecisionAgree  PermissionDecision = "agree"
	DecisionAllow  PermissionDecision = "allow"
	DecisionRefuse PermissionDecision = "refuse"
)

// ToolPermissionResponseData is the payload of tool:permission:response.
// Any Decision value other than agree/allow/refuse is user feedback text
// (spec §4.3) and is carried verbatim in FeedbackText.
type ToolPermissionResponseData struct {
	AgentID      AgentID            `json:"agentId"`
	CallID       string             `json:"callId"`
	Decision     PermissionDecision `json:"decision,omitempty"`
	FeedbackText string             `json:"feedbackText,omitempty"`
}

// ToolExecutionData is the payload of tool:execution:start|complete|error.
type ToolExecutionData struct {
	AgentID  AgentID `json:"agentId"`
	CallID   string  `json:"callId"`
	ToolName string  `json:"toolName"`
	Output   string  `json:"output,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// TaskAgentData is the payload of task:agent:start|end.
type TaskAgentData struct {
	ParentAgentID AgentID `json:"parentAgentId"`
	AgentID       AgentID `json:"agentId"`
	Description   string  `json:"description,omitempty"`
	ResultText    string  `json:"resultText,omitempty"`
}

// PlanExitRequestData is the payload of plan:exit:request.
type PlanExitRequestData struct {
	AgentID      AgentID `json:"agentId"`
	PlanFilePath string  `json:"planFilePath"`
}

// PlanExitSelection is the user's response to an exit-plan-mode prompt.
type PlanExitSelection string

const (
	PlanKeepPlanning        PlanExitSelection = "keepPlanning"
	PlanAcceptManual        PlanExitSelection = "acceptManual"
	PlanClearContextAndGo   PlanExitSelection = "clearContextAndStart"
)

// PlanExitResponseData is the payload of plan:exit:response.
type PlanExitResponseData struct {
	AgentID  AgentID           `json:"agentId"`
	Selected PlanExitSelection `json:"selected"`
}

// PlanImplementData is the payload of plan:implement, carrying the
// rebuild message the loop seeds history with (spec §4.6 step 10).
type PlanImplementData struct {
	AgentID       AgentID `json:"agentId"`
	RebuildText   string  `json:"rebuildText"`
}

// AskQuestionRequestData is the payload of ask:question:request.
type AskQuestionRequestData struct {
	AgentID   AgentID        `json:"agentId"`
	Questions []QuestionSpec `json:"questions"`
}

// QuestionSpec describes one question posed to the user.
type QuestionSpec struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Options     []string `json:"options,omitempty"`
	MultiSelect bool     `json:"multiSelect,omitempty"`
}

// AskQuestionResponseData is the payload of ask:question:response.
// Answer is "comma-separated labels" for multi-select questions per spec §6
// (the escaping rule for labels containing commas is explicitly left
// undefined by spec §9 Open Questions — callers must avoid commas in labels).
type AskQuestionResponseData struct {
	AgentID AgentID           `json:"agentId"`
	Answers map[string]string `json:"answers"`
}

// ConversationUsageData is the payload of conversation:usage.
type ConversationUsageData struct {
	AgentID      AgentID `json:"agentId"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
}

// CompactExecData is the payload of compact:exec.
type CompactExecData struct {
	AgentID       AgentID `json:"agentId"`
	ErrMsg        string  `json:"errMsg,omitempty"`
	TokenBefore   int     `json:"tokenBefore"`
	TokenCompact  int     `json:"tokenCompact"`
	CompactRate   float64 `json:"compactRate"`
}

// FileReferenceData is the payload of file:reference.
type FileReferenceData struct {
	AgentID AgentID `json:"agentId"`
	Path    string  `json:"path"`
}

// TopicUpdateData is the payload of topic:update.
type TopicUpdateData struct {
	Title string `json:"title"`
}

// CommandCustomResolvedData is the payload of command:custom:resolved.
type CommandCustomResolvedData struct {
	Name string `json:"name"`
	Args string `json:"args,omitempty"`
}

// TodosUpdateData is the payload of todos:update, emitted only when the
// new todo list differs from the previous one (spec §4.2).
type TodosUpdateData struct {
	AgentID AgentID `json:"agentId"`
	Todos   any     `json:"todos"`
}
