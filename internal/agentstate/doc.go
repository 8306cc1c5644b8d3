/*
Package agentstate implements the engine's agent state registry
(component C2): a thread-safe mapping from AgentID to per-agent mutable
state — message history, read-file timestamps, todos, run state and
abort handle (spec §3, §4.2).

This is deliberately distinct from internal/agent, which holds agent
*persona* configuration (name, system prompt, tool allow/deny lists,
permission policy) — static data shared across runs. agentstate holds the
opposite: everything that changes turn by turn for one running agent,
main or sub-agent.

State entries are created lazily by Registry.ForAgent and live until the
owning session (main agent) or sub-agent loop (child agent) tears down.
*/
package agentstate
