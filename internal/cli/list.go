package cli

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/ccwatch/ccw/internal/domain"
	"github.com/ccwatch/ccw/internal/filter"
	"github.com/ccwatch/ccw/internal/output"
)

// ListCmd lists agent sessions found under the transcript root
type ListCmd struct {
	SessionsDir string   `short:"d" help:"Transcript root directory (default: ~/.claude/projects)"`
	Project     string   `short:"p" help:"Only show sessions whose project path contains this substring"`
	Active      bool     `short:"a" help:"Only show sessions with a live agent process"`
	Where       []string `short:"w" help:"Filter expression like 'summary~timeout' or 'messages>=10' (can be repeated)"`
	Limit       int      `short:"n" default:"${config_limit}" help:"Maximum number of sessions to show (0 = all)"`
}

// Run executes the list command
func (c *ListCmd) Run(globals *Globals) error {
	dir := resolveSessionsDir(globals, c.SessionsDir)
	globals.Debug("Scanning sessions in %s", dir)

	where, err := filter.NewWhereFilter(c.Where)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_WHERE", err.Error(),
			"fields: id, project, summary, active, messages, tools, pid")
	}

	sessions, _, err := loadSessions(globals, dir)
	if err != nil {
		return outputErrorCommon(globals, "SESSIONS_DIR_NOT_FOUND",
			fmt.Sprintf("cannot read sessions directory: %s", dir),
			"pass --sessions-dir or set CCW_SESSIONS_DIR")
	}

	if pipeline := filter.NewPipeline(c.Project, c.Active, where); pipeline != nil {
		sessions = lo.Filter(sessions, func(s *domain.Session, _ int) bool {
			return pipeline.Match(s)
		})
	}
	if c.Limit > 0 && len(sessions) > c.Limit {
		sessions = sessions[:c.Limit]
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteSessions(sessions)
	}

	tw := output.NewTextWriter(globals.Stdout)
	tw.Color = globals.ColorEnabled()
	return tw.WriteSessions(sessions, time.Now())
}
