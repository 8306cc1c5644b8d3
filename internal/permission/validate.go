package permission

import "fmt"

// ValidateShellCommand rejects banned commands at tool-input-validation
// time, before the gate is ever consulted (spec §4.3). Every parsed
// command name in the line, pipeline or chain is checked, not just the
// first one.
func ValidateShellCommand(command string) error {
	cmds, err := ParseBashCommand(command)
	if err != nil {
		return fmt.Errorf("parse command: %w", err)
	}
	for _, c := range cmds {
		if BannedCommands[c.Name] {
			return fmt.Errorf("command %q is not permitted", c.Name)
		}
	}
	return nil
}
