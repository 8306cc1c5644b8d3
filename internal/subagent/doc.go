// Package subagent implements the sub-agent runner (component C9): the
// Task tool's executor. It creates a fresh agent id, allocates isolated
// agentstate for it, seeds its history with the task prompt, links its
// abort token to the parent's, and runs internal/loop to completion —
// the sub-agent's own persona.ToolEnabled filtering (applied inside
// internal/loop's request building) is what keeps a sub-agent from
// spawning further sub-agents unless its tool list names "Task".
//
// Adapted from internal/executor.SubagentExecutor and internal/tool's
// TaskExecutor contract: same "look up persona, verify it's a
// sub-agent, run the loop, return its final text" shape, rewired from
// a child storage-backed session (NewProcessor) onto a child
// agentstate.AgentID run through the same internal/loop.Loop the
// parent uses.
package subagent
