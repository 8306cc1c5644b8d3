// Package compact implements message compaction (component C7):
// summarizing the oldest N turns of an agent's history into a single
// LLM-generated summary turn when the estimated token count exceeds a
// configured threshold, or unconditionally when forced (the `/compact`
// command).
//
// Adapted from the teacher's internal/session/compact.go. The
// algorithm is unchanged — summarize everything but the most recent
// MinTurnsToKeep turns using the quick/default model, via the same
// provider.CompletionRequest/CompletionStream round trip — but it now
// operates on an agentstate.State's in-memory Turn slice instead of
// scanning on-disk session message/part files, since C7 sits in front
// of C6's in-memory loop rather than a storage-backed session replay.
package compact
