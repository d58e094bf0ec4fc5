// Package filter narrows session lists with --where expressions.
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ccwatch/ccw/internal/domain"
)

// WhereClause represents a parsed --where condition
type WhereClause struct {
	Field    string
	Operator string
	Value    string
	regex    *regexp.Regexp // Compiled regex for ~ and !~ operators
}

// ParseWhereClause parses a where clause like "active=true" or "summary~timeout"
// Supported operators: =, !=, ~, !~, >=, <=, ^, $
func ParseWhereClause(clause string) (*WhereClause, error) {
	// Try operators in order of length (longest first to avoid partial matches)
	operators := []string{"!~", ">=", "<=", "!=", "~", "=", "^", "$"}

	for _, op := range operators {
		idx := strings.Index(clause, op)
		if idx > 0 {
			field := strings.TrimSpace(clause[:idx])
			value := strings.TrimSpace(clause[idx+len(op):])

			if field == "" || value == "" {
				return nil, fmt.Errorf("invalid where clause: %s", clause)
			}

			wc := &WhereClause{
				Field:    field,
				Operator: op,
				Value:    value,
			}

			// Pre-compile regex for ~ and !~ operators
			if op == "~" || op == "!~" {
				re, err := regexp.Compile(value)
				if err != nil {
					return nil, fmt.Errorf("invalid regex in where clause '%s': %w", clause, err)
				}
				wc.regex = re
			}

			return wc, nil
		}
	}

	return nil, fmt.Errorf("no valid operator found in where clause: %s (use =, !=, ~, !~, >=, <=, ^, $)", clause)
}

// Match checks if a session matches this where clause
func (wc *WhereClause) Match(s *domain.Session) bool {
	fieldValue := wc.getFieldValue(s)

	switch wc.Operator {
	case "=":
		return fieldValue == wc.Value
	case "!=":
		return fieldValue != wc.Value
	case "~": // Contains (regex)
		if wc.regex != nil {
			return wc.regex.MatchString(fieldValue)
		}
		return strings.Contains(fieldValue, wc.Value)
	case "!~": // Not contains (regex)
		if wc.regex != nil {
			return !wc.regex.MatchString(fieldValue)
		}
		return !strings.Contains(fieldValue, wc.Value)
	case "^": // Starts with
		return strings.HasPrefix(fieldValue, wc.Value)
	case "$": // Ends with
		return strings.HasSuffix(fieldValue, wc.Value)
	case ">=", "<=": // Numeric comparison (messages, tools, pid)
		return wc.compareNumeric(fieldValue)
	}

	return false
}

// getFieldValue extracts the field value from a session
func (wc *WhereClause) getFieldValue(s *domain.Session) string {
	switch strings.ToLower(wc.Field) {
	case "id":
		return s.ID
	case "project":
		return s.ProjectPath
	case "summary":
		return s.Summary
	case "active":
		return strconv.FormatBool(s.IsActive)
	case "messages":
		return strconv.Itoa(s.MessageCount)
	case "tools":
		return strconv.Itoa(s.ToolCount())
	case "pid":
		return strconv.Itoa(s.PID)
	default:
		return ""
	}
}

// compareNumeric handles >= and <= for integer fields
func (wc *WhereClause) compareNumeric(fieldValue string) bool {
	have, err := strconv.Atoi(fieldValue)
	if err != nil {
		return false
	}
	want, err := strconv.Atoi(wc.Value)
	if err != nil {
		return false
	}
	if wc.Operator == ">=" {
		return have >= want
	}
	return have <= want
}

// WhereFilter is a filter that applies multiple where clauses (AND logic)
type WhereFilter struct {
	clauses []*WhereClause
}

// NewWhereFilter creates a filter from multiple where clause strings
func NewWhereFilter(whereClauses []string) (*WhereFilter, error) {
	if len(whereClauses) == 0 {
		return nil, nil
	}

	filter := &WhereFilter{}
	for _, clause := range whereClauses {
		wc, err := ParseWhereClause(clause)
		if err != nil {
			return nil, err
		}
		filter.clauses = append(filter.clauses, wc)
	}

	return filter, nil
}

// Match returns true if the session matches ALL where clauses (AND logic)
func (f *WhereFilter) Match(s *domain.Session) bool {
	for _, clause := range f.clauses {
		if !clause.Match(s) {
			return false
		}
	}
	return true
}
