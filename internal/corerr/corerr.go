// Package corerr defines the engine's typed error taxonomy (spec §7):
// UserInterrupt, ToolValidation, ToolRuntime, PermissionDenied,
// LLMProviderError, CompactError and ConfigError. Each is a concrete type
// implementing error so callers can discriminate with errors.As instead of
// string matching, following the same shape as permission.RejectedError.
package corerr

import "fmt"

// Kind discriminates the taxonomy entries for logging and event payloads.
type Kind string

const (
	KindUserInterrupt    Kind = "user_interrupt"
	KindToolValidation   Kind = "tool_validation"
	KindToolRuntime      Kind = "tool_runtime"
	KindPermissionDenied Kind = "permission_denied"
	KindLLMProvider      Kind = "llm_provider_error"
	KindCompact          Kind = "compact_error"
	KindConfig           Kind = "config_error"
)

// UserInterruptError marks a turn aborted by the user (e.g. Esc mid-stream).
// It is never surfaced as session:error; the loop unwinds to idle and emits
// session:interrupted exactly once (spec §7 propagation policy).
type UserInterruptError struct {
	AgentID string
}

func (e *UserInterruptError) Error() string {
	return fmt.Sprintf("interrupted by user (agent %s)", e.AgentID)
}

// ToolValidationError reports a failed input schema or ValidateInput check
// for one tool call. It does not terminate the batch or the turn; it is
// surfaced to the model as the call's error result.
type ToolValidationError struct {
	ToolName string
	CallID   string
	Message  string
}

func (e *ToolValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %s", e.ToolName, e.Message)
}

// ToolRuntimeError reports an exception raised by a tool body, including a
// timeout (in which case Interrupted is true and Timeout is true). Handled
// identically to ToolValidationError: surfaced per-call, batch continues.
type ToolRuntimeError struct {
	ToolName    string
	CallID      string
	Message     string
	Timeout     bool
	Interrupted bool
}

func (e *ToolRuntimeError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timed out", e.ToolName)
	}
	return fmt.Sprintf("%s: %s", e.ToolName, e.Message)
}

// PermissionDeniedError wraps a user's refuse decision. Surfaced to the
// model as a fixed, model-readable rejection string and aborts the
// remaining batch (spec §7, §4.3).
type PermissionDeniedError struct {
	ToolName     string
	CallID       string
	FeedbackText string
}

func (e *PermissionDeniedError) Error() string {
	if e.FeedbackText != "" {
		return fmt.Sprintf("permission denied for %s: %s", e.ToolName, e.FeedbackText)
	}
	return fmt.Sprintf("permission denied for %s", e.ToolName)
}

// RejectionMessage is the fixed, model-readable text returned in place of a
// tool result when a call is refused (spec §7 "the model receives a fixed
// rejection string").
const RejectionMessage = "The user rejected this tool call."

// LLMProviderError wraps a failure from the external LLM adapter
// (internal/provider). Surfaced as session:error{type:"api_error"}; the
// turn terminates.
type LLMProviderError struct {
	Provider string
	Err      error
}

func (e *LLMProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *LLMProviderError) Unwrap() error { return e.Err }

// CompactErrorKind distinguishes an inline (context-pressure triggered)
// compaction failure from an explicit /compact command failure, since the
// two differ in whether the turn continues afterward.
type CompactErrorKind string

const (
	CompactInline   CompactErrorKind = "inline"
	CompactExplicit CompactErrorKind = "explicit"
)

// CompactError wraps a summarization failure. History is left unchanged.
// Surfaced as session:error{type:"compact_error"}; the turn continues if
// Trigger is CompactInline, ends if CompactExplicit.
type CompactError struct {
	AgentID string
	Trigger CompactErrorKind
	Err     error
}

func (e *CompactError) Error() string {
	return fmt.Sprintf("compaction failed (%s): %v", e.Trigger, e.Err)
}

func (e *CompactError) Unwrap() error { return e.Err }

// ConfigError is fatal at startup and prevents session creation.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config error in %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
