package permission

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// IsSafeShellCommand implements spec §4.3's safe-command whitelist: a
// pipeline (segments joined by "|") is safe iff every segment's head
// token is in SafeCommands (git restricted to SafeGitSubcommands).
// Chains joined by "&&", "||" or ";" are NOT pre-cleared as a whole —
// this returns false for them so each sub-command falls through to the
// normal per-kind gate.
func IsSafeShellCommand(command string) bool {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return false
	}

	if len(file.Stmts) != 1 {
		return false // ";"-joined chain: never pre-cleared as a whole
	}

	return isSafePipelineOrCall(file.Stmts[0].Cmd)
}

func isSafePipelineOrCall(cmd syntax.Command) bool {
	switch c := cmd.(type) {
	case *syntax.CallExpr:
		return isSafeCall(c)
	case *syntax.BinaryCmd:
		if c.Op != syntax.Pipe {
			return false // && / || : not pre-cleared as a whole
		}
		return isSafePipelineOrCall(c.X.Cmd) && isSafePipelineOrCall(c.Y.Cmd)
	default:
		return false
	}
}

func isSafeCall(call *syntax.CallExpr) bool {
	if len(call.Args) == 0 {
		return false
	}
	name := wordToString(call.Args[0])
	if name == "" || !SafeCommands[name] {
		return false
	}
	if name != "git" {
		return true
	}
	if len(call.Args) < 2 {
		return false
	}
	return SafeGitSubcommands[wordToString(call.Args[1])]
}
