// Package engine implements the public façade (component C8): the one
// surface an embedder talks to — create a session, feed it user input,
// interrupt it, subscribe to its event stream, and answer the
// rendezvous requests (tool permission, ask-question, plan-exit) that
// input raises. It owns session bookkeeping and wires together every
// other component (agentstate, provider, tool, scheduler, permission,
// loop, compact, agent, command, skill, mcp) without adding agentic
// logic of its own — that all lives in internal/loop.
//
// Adapted from the teacher's internal/session.Service and
// internal/server's session handlers: the storage-backed session
// record (ID, directory, title, timestamps) and its project-hashed
// storage path are ported near-verbatim from Service.Create/Get, but
// message history and the agentic loop itself are delegated to
// agentstate.Registry and internal/loop rather than the teacher's
// on-disk message/part scan and internal/session.Processor.
package engine
