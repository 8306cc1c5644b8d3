package engine

import "github.com/sema-dev/sema-core/internal/event"

// On registers a persistent handler for name and returns an unsubscribe
// func (spec §6's `on`).
func (e *Engine) On(name event.Name, fn event.Handler) func() { return e.Bus.On(name, fn) }

// Once registers a handler that fires at most once (spec §6's `once`).
func (e *Engine) Once(name event.Name, fn event.Handler) func() { return e.Bus.Once(name, fn) }

// Off unsubscribes a handler previously returned by On/Once (spec §6's
// `off`).
func (e *Engine) Off(unsubscribe func()) { e.Bus.Off(unsubscribe) }

// RespondToToolPermission answers a pending tool:permission:request.
// The permission.Gate itself owns the rendezvous (it subscribed to
// tool:permission:response in its own constructor); the façade's only
// job is to emit the response onto the same bus.
func (e *Engine) RespondToToolPermission(agentID event.AgentID, callID string, decision event.PermissionDecision, feedbackText string) {
	e.Bus.Emit(event.ToolPermissionResponse, event.ToolPermissionResponseData{
		AgentID: agentID, CallID: callID, Decision: decision, FeedbackText: feedbackText,
	})
}

// RespondToAskQuestion answers a pending ask:question:request.
func (e *Engine) RespondToAskQuestion(agentID event.AgentID, answers map[string]string) {
	e.Bus.Emit(event.AskQuestionResponse, event.AskQuestionResponseData{AgentID: agentID, Answers: answers})
}

// RespondToPlanExit answers a pending plan:exit:request. When selected
// is PlanAcceptManual or PlanClearContextAndGo, the caller is expected
// to have already resumed the turn via ProcessUserInput/the plan-exit
// tool; this call only delivers the user's choice to whatever is
// awaiting it.
func (e *Engine) RespondToPlanExit(agentID event.AgentID, selected event.PlanExitSelection) {
	e.Bus.Emit(event.PlanExitResponse, event.PlanExitResponseData{AgentID: agentID, Selected: selected})
}
