// Package scheduler implements the tool execution scheduler (component
// C5): given a batch of tool-use blocks from one assistant turn, it
// dispatches every tool either concurrently (the whole batch is
// read-only) or strictly in call order (anything else), publishes
// tool:execution:start/complete/error on the shared event bus, and
// returns per-tool results in original tool-use order regardless of
// completion order.
//
// Grounded on the teacher's internal/tool/batch.go (errgroup-based
// concurrent dispatch) generalized from an explicit, model-invoked tool
// into an automatic per-batch rule, and on internal/session/tools.go's
// executeToolCalls (always-serial dispatch, one tool at a time,
// permission-check-then-run-then-record loop) generalized the other
// way: serial dispatch is now the batch-has-a-writer case rather than
// the only case.
package scheduler
