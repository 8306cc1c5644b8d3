// Package permission implements the engine's permission gate (component
// C3): four independent kinds of tool permission, a safe-command shell
// whitelist, session- and project-scoped grants, and a supplemental
// doom-loop guard layered in front of the gate.
package permission

import "github.com/sema-dev/sema-core/internal/event"

// Kind is one of the four permission kinds a tool call can require
// (spec §4.3). Read-only tools never reach the gate at all.
type Kind string

const (
	KindFileEdit Kind = "file-edit"
	KindShell    Kind = "shell"
	KindSkill    Kind = "skill"
	KindMCPTool  Kind = "mcp-tool"
)

// Request is one pending permission check, correlated to a
// tool:permission:request/response pair over the event bus by AgentID +
// CallID.
type Request struct {
	AgentID  event.AgentID
	Kind     Kind
	ToolName string
	CallID   string
	Title    string
	Summary  string
	Content  *event.DiffContent

	// Command is set for KindShell; Path is set for KindFileEdit;
	// SkillName is set for KindSkill; ServerName/ToolID for KindMCPTool.
	Command   string
	Path      string
	SkillName string
	ServerName string
	ToolID     string
}

// RejectedError is returned when a permission check ends in refusal.
// Grounded on the teacher's identically-named error in the pre-rewrite
// permission.go; kept because it already has the right shape (a
// field-carrying struct implementing error, with an IsRejectedError
// helper callers can branch on without a type switch).
type RejectedError struct {
	AgentID      event.AgentID
	Kind         Kind
	ToolName     string
	CallID       string
	FeedbackText string
	Message      string

	// AbortBatch is true for a "refuse" decision (spec §4.3: aborts the
	// remaining batch) and false for free-text feedback (batch continues).
	AbortBatch bool
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "permission denied for " + e.ToolName
}

// IsRejectedError reports whether err is a *RejectedError.
func IsRejectedError(err error) bool {
	_, ok := err.(*RejectedError)
	return ok
}

// SafeCommands is the fixed whitelist of shell command heads that are
// pre-cleared without a gate round-trip when every segment of a pipeline
// is one of them (spec §4.3).
var SafeCommands = map[string]bool{
	"git": true, // only status/diff/log/branch subcommands, checked separately
	"pwd": true, "tree": true, "date": true, "which": true,
	"ls": true, "find": true, "grep": true, "head": true, "tail": true,
	"cat": true, "du": true, "wc": true, "echo": true,
	"env": true, "printenv": true,
}

// SafeGitSubcommands restricts the "git" entry in SafeCommands to the
// read-only subcommands spec §4.3 names.
var SafeGitSubcommands = map[string]bool{
	"status": true, "diff": true, "log": true, "branch": true,
}

// BannedCommands are rejected at ValidateInput with a fatal error before
// the gate is ever consulted (spec §4.3). This list is an engine-level
// floor, not a substitute for the permission kinds above.
var BannedCommands = map[string]bool{
	"mkfs":       true,
	"dd":         true, // raw device writes; distinct from the coreutils-safe "cat"/"head" reads
	":(){ :|:& };:": true,
}
