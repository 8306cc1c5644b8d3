// Package server is the optional HTTP transport sitting outside
// internal/engine's façade (spec §1: the core does not render UI).
// It holds no business logic of its own beyond translating HTTP
// requests into engine calls and engine events into SSE frames.
package server
