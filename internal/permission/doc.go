/*
Package permission implements the engine's permission gate (component
C3): four independent permission kinds — file-edit, shell, skill,
mcp-tool — plus a fifth always-bypass path for read-only tools.

# Decision procedure

For each non-read-only tool call, Gate.Check runs spec §4.3's ordered
check: the doom-loop guard first (a supplemental feature, not a fifth
kind — see DoomLoopDetector), then the kind-specific session/project
grant, then (for shell) the safe-command whitelist, and only then a
blocking request/response rendezvous over the event bus.

# Grants

Grants holds both scopes spec §3 describes: GlobalEditPermission
(session-scoped, set by an "allow" response to any file-edit request)
and AllowedTools[] (project-scoped; held in memory only, not saved to or
loaded from disk). Entries use the four formats from spec §6:
Bash(<prefix>:*), Bash(<exact command>), Skill(<name>), and
mcp__<server>_<tool>.

# Safe-command whitelist

IsSafeShellCommand pre-clears a pipeline (commands joined by "|") when
every segment's head token is in SafeCommands. Chains joined by "&&",
"||" or ";" are never pre-cleared as a whole, matching spec §4.3 exactly.

# Doom-loop detection

DoomLoopDetector is a supplemental loop-guard layered in front of the
gate: three or more identical (tool, input) calls in a row force a
request even when a grant or the safe-command whitelist would otherwise
allow it.
*/
package permission
