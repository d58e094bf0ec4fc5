package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ccwatch/ccw/internal/output"
)

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (c *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type":          "version",
			"schemaVersion": output.SchemaVersion,
			"version":       Version,
			"commit":        Commit,
		}
		return json.NewEncoder(globals.Stdout).Encode(out)
	}
	fmt.Fprintf(globals.Stdout, "ccw %s (%s)\n", Version, Commit)
	return nil
}
