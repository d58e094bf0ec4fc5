package cli

import (
	"encoding/json"
	"strings"
)

// SchemaCmd outputs JSON Schema for ccw output types
type SchemaCmd struct {
	Type []string `short:"t" help:"Output types to include (session,process,spawn_result,error). Default: all"`
}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	schemas := map[string]interface{}{
		"session":      sessionSchema(),
		"process":      processSchema(),
		"spawn_result": spawnResultSchema(),
		"error":        errorSchema(),
	}

	// Determine which schemas to output
	typesToOutput := c.Type
	if len(typesToOutput) == 0 {
		typesToOutput = []string{"session", "process", "spawn_result", "error"}
	}

	// Build output
	out := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "ccw Output Schemas",
		"description": "JSON Schema definitions for all ccw NDJSON output types",
		"definitions": map[string]interface{}{},
	}

	defs := out["definitions"].(map[string]interface{})
	for _, t := range typesToOutput {
		t = strings.ToLower(strings.TrimSpace(t))
		if schema, ok := schemas[t]; ok {
			defs[t] = schema
		}
	}

	// Output as JSON
	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func sessionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session",
		"description": "An agent conversation session reconstructed from its transcript",
		"properties": map[string]interface{}{
			"id": map[string]interface{}{
				"type":        "string",
				"description": "Session identifier (transcript filename without extension)",
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Absolute path of the transcript file",
			},
			"project": map[string]interface{}{
				"type":        "string",
				"description": "Project working directory the session ran in",
			},
			"summary": map[string]interface{}{
				"type":        "string",
				"description": "Short human-readable summary of the session",
			},
			"messages": map[string]interface{}{
				"type":        "integer",
				"description": "Number of conversation messages",
			},
			"tools": map[string]interface{}{
				"type":        "integer",
				"description": "Number of tool invocations",
			},
			"start_time": map[string]interface{}{
				"type":        "string",
				"format":      "date-time",
				"description": "Timestamp of the first transcript event",
			},
			"active": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether a live agent process is attached to this session",
			},
			"pid": map[string]interface{}{
				"type":        "integer",
				"description": "Process ID of the attached agent, when active",
			},
		},
		"required": []string{"id", "path", "summary", "messages", "tools", "active"},
	}
}

func processSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Process",
		"description": "A running agent process",
		"properties": map[string]interface{}{
			"pid": map[string]interface{}{
				"type":        "integer",
				"description": "Process ID",
			},
			"cwd": map[string]interface{}{
				"type":        "string",
				"description": "Working directory of the process",
			},
			"command": map[string]interface{}{
				"type":        "string",
				"description": "Full command line",
			},
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session attributed to this process, when known",
			},
		},
		"required": []string{"pid", "cwd", "command"},
	}
}

func spawnResultSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Spawn Result",
		"description": "Outcome of an agent spawn attempt",
		"properties": map[string]interface{}{
			"success": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether the spawn succeeded",
			},
			"pid": map[string]interface{}{
				"type":        "integer",
				"description": "Process ID of the spawned agent (embedded spawns only)",
			},
			"error": map[string]interface{}{
				"type":        "string",
				"description": "Failure description when success is false",
			},
		},
		"required": []string{"success"},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "A machine-readable failure",
		"properties": map[string]interface{}{
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Stable error code",
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Human-readable error message",
			},
			"hint": map[string]interface{}{
				"type":        "string",
				"description": "Suggested remediation",
			},
		},
		"required": []string{"code", "message"},
	}
}
