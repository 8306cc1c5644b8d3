// Package loop implements the agentic loop (component C6): one user
// turn's worth of request-building, streaming, tool dispatch, and
// recursion back into another request when the model asks for tools.
//
// Adapted from the teacher's internal/session/loop.go and stream.go.
// The control flow — step limit, context-cancellation checks,
// exponential-backoff retry around CreateCompletion, the finish-reason
// switch driving either a return or another step — is unchanged. What
// changed: the loop reads and writes an agentstate.Registry's in-memory
// Turn history instead of loading/saving on-disk types.Message/Part
// records, dispatches tool-use blocks through internal/scheduler
// instead of an inline executeToolCalls, and checks the agent's
// AbortHandle at the four checkpoints spec'd for cancellation instead
// of only at loop entry.
package loop
