package filter

import (
	"strings"

	"github.com/ccwatch/ccw/internal/domain"
)

// Pipeline combines the list command's narrowing steps: project substring,
// active-only, and --where clauses. A nil pipeline allows everything.
type Pipeline struct {
	project    string
	activeOnly bool
	where      *WhereFilter
}

// NewPipeline builds a pipeline; returns nil when no filters are set so
// callers can skip the walk entirely.
func NewPipeline(project string, activeOnly bool, where *WhereFilter) *Pipeline {
	if project == "" && !activeOnly && where == nil {
		return nil
	}
	return &Pipeline{project: project, activeOnly: activeOnly, where: where}
}

// Match reports whether the session passes every configured filter.
func (p *Pipeline) Match(s *domain.Session) bool {
	if p == nil {
		return true
	}
	if p.project != "" && !strings.Contains(s.ProjectPath, p.project) {
		return false
	}
	if p.activeOnly && !s.IsActive {
		return false
	}
	if p.where != nil && !p.where.Match(s) {
		return false
	}
	return true
}
