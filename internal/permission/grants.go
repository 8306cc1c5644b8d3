package permission

import "strings"

// Grants holds both scopes of permission grant spec §3/§4.3 describes:
// a session-scoped globalEditPermission flag, and a project-scoped
// allowedTools[] list. Both live only in memory: nothing in the module
// loads allowedTools[] from disk or saves it.
type Grants struct {
	GlobalEditPermission bool
	AllowedTools         []string
}

// NewGrants returns an empty grant set (a fresh session with no project
// grants loaded yet).
func NewGrants() *Grants {
	return &Grants{}
}

// GrantEdit sets the session-scoped global edit permission (spec §4.3
// response semantics: "allow" on a file-edit request).
func (g *Grants) GrantEdit() {
	g.GlobalEditPermission = true
}

// GrantTool appends an allowedTools[] entry if not already present.
func (g *Grants) GrantTool(entry string) {
	for _, e := range g.AllowedTools {
		if e == entry {
			return
		}
	}
	g.AllowedTools = append(g.AllowedTools, entry)
}

// HasTool reports whether entry is present verbatim in allowedTools[].
func (g *Grants) HasTool(entry string) bool {
	for _, e := range g.AllowedTools {
		if e == entry {
			return true
		}
	}
	return false
}

// BashEntry builds the exact-match grant format: Bash(<exact command>).
func BashEntry(command string) string {
	return "Bash(" + command + ")"
}

// BashPrefixEntry builds the prefix-match grant format: Bash(<prefix>:*).
func BashPrefixEntry(prefix string) string {
	return "Bash(" + prefix + ":*)"
}

// SkillEntry builds the skill grant format: Skill(<skillName>).
func SkillEntry(name string) string {
	return "Skill(" + name + ")"
}

// MCPToolEntry builds the MCP tool grant format: mcp__<server>_<tool>.
func MCPToolEntry(server, tool string) string {
	return "mcp__" + server + "_" + tool
}

// MatchesBash reports whether command is covered by any allowedTools[]
// entry: an exact Bash(<command>) match, or a Bash(<prefix>:*) match
// where command starts with prefix.
func (g *Grants) MatchesBash(command string) bool {
	exact := BashEntry(command)
	for _, e := range g.AllowedTools {
		if e == exact {
			return true
		}
		if strings.HasPrefix(e, "Bash(") && strings.HasSuffix(e, ":*)") {
			prefix := e[len("Bash(") : len(e)-len(":*)")]
			if strings.HasPrefix(command, prefix) {
				return true
			}
		}
	}
	return false
}

// MatchesSkill reports whether name is covered by a Skill(<name>) entry.
func (g *Grants) MatchesSkill(name string) bool {
	return g.HasTool(SkillEntry(name))
}

// MatchesMCPTool reports whether server/tool is covered by an
// mcp__<server>_<tool> entry.
func (g *Grants) MatchesMCPTool(server, tool string) bool {
	return g.HasTool(MCPToolEntry(server, tool))
}
