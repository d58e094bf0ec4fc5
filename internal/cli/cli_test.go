package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccwatch/ccw/internal/config"
)

// testGlobals builds Globals with buffered writers so command output can be
// asserted against.
func testGlobals(format string) (*Globals, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	g := &Globals{
		Format: format,
		Level:  "default",
		Stdout: stdout,
		Stderr: stderr,
		Config: config.Default(),
	}
	return g, stdout, stderr
}

// fixtureSessionsDir writes a transcript tree with two sessions.
func fixtureSessionsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	project := filepath.Join(dir, "-home-dev-api")
	require.NoError(t, os.MkdirAll(project, 0o755))

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(project, name), []byte(content), 0o644))
	}
	write("aaa-111.jsonl",
		`{"type":"user","uuid":"u1","timestamp":"2026-08-30T10:00:00Z","cwd":"/home/dev/api","message":{"role":"user","content":"Fix the flaky integration test"}}`+"\n")
	write("bbb-222.jsonl",
		`{"type":"user","uuid":"u1","timestamp":"2026-08-29T08:00:00Z","cwd":"/home/dev/api","message":{"role":"user","content":"Wire up the metrics endpoint"}}`+"\n")
	return dir
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestListCmdNDJSON(t *testing.T) {
	g, stdout, _ := testGlobals("ndjson")
	cmd := &ListCmd{SessionsDir: fixtureSessionsDir(t)}
	require.NoError(t, cmd.Run(g))

	lines := decodeLines(t, stdout)
	require.Len(t, lines, 2)
	assert.Equal(t, "session", lines[0]["type"])
	assert.Equal(t, "aaa-111", lines[0]["id"])
	assert.Equal(t, "bbb-222", lines[1]["id"])
	assert.Equal(t, "Fix the flaky integration test", lines[0]["summary"])
	assert.Equal(t, float64(1), lines[0]["schemaVersion"])
}

func TestListCmdText(t *testing.T) {
	g, stdout, _ := testGlobals("text")
	cmd := &ListCmd{SessionsDir: fixtureSessionsDir(t)}
	require.NoError(t, cmd.Run(g))

	out := stdout.String()
	assert.Contains(t, out, "aaa-111")
	assert.Contains(t, out, "/home/dev/api")
	assert.Contains(t, out, "Fix the flaky integration test")
}

func TestListCmdLimit(t *testing.T) {
	g, stdout, _ := testGlobals("ndjson")
	cmd := &ListCmd{SessionsDir: fixtureSessionsDir(t), Limit: 1}
	require.NoError(t, cmd.Run(g))

	lines := decodeLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "aaa-111", lines[0]["id"])
}

func TestListCmdWhereFilter(t *testing.T) {
	g, stdout, _ := testGlobals("ndjson")
	cmd := &ListCmd{SessionsDir: fixtureSessionsDir(t), Where: []string{"summary~metrics"}}
	require.NoError(t, cmd.Run(g))

	lines := decodeLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "bbb-222", lines[0]["id"])
}

func TestListCmdInvalidWhere(t *testing.T) {
	g, stdout, _ := testGlobals("ndjson")
	cmd := &ListCmd{SessionsDir: fixtureSessionsDir(t), Where: []string{"nonsense"}}
	require.Error(t, cmd.Run(g))

	lines := decodeLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["type"])
	assert.Equal(t, "INVALID_WHERE", lines[0]["code"])
}

func TestListCmdMissingDir(t *testing.T) {
	g, _, stderr := testGlobals("text")
	cmd := &ListCmd{SessionsDir: filepath.Join(t.TempDir(), "absent")}
	require.Error(t, cmd.Run(g))
	assert.Contains(t, stderr.String(), "SESSIONS_DIR_NOT_FOUND")
}

func TestKillCmdMissingTarget(t *testing.T) {
	g, stdout, _ := testGlobals("ndjson")
	cmd := &KillCmd{}
	require.Error(t, cmd.Run(g))

	lines := decodeLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "MISSING_TARGET", lines[0]["code"])
}

func TestSpawnCmdInvalidDir(t *testing.T) {
	g, _, stderr := testGlobals("text")
	cmd := &SpawnCmd{Dir: filepath.Join(t.TempDir(), "absent"), Mode: "external"}
	require.Error(t, cmd.Run(g))
	assert.Contains(t, stderr.String(), "INVALID_DIR")
}

func TestConfigShowText(t *testing.T) {
	g, stdout, _ := testGlobals("text")
	require.NoError(t, (&ConfigShowCmd{}).Run(g))

	out := stdout.String()
	assert.Contains(t, out, "Current Configuration:")
	assert.Contains(t, out, "agent: claude")
	assert.Contains(t, out, "spawn_mode: external")
	assert.Contains(t, out, "limit: 50")
}

func TestConfigShowNDJSON(t *testing.T) {
	g, stdout, _ := testGlobals("ndjson")
	require.NoError(t, (&ConfigShowCmd{}).Run(g))

	lines := decodeLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "config", lines[0]["type"])
	defaults, ok := lines[0]["defaults"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "claude", defaults["agent"])
	assert.Equal(t, float64(30), defaults["active_threshold_seconds"])
}

func TestConfigGenerate(t *testing.T) {
	g, stdout, _ := testGlobals("text")
	require.NoError(t, (&ConfigGenerateCmd{}).Run(g))
	assert.Contains(t, stdout.String(), "# ccw configuration file")
	assert.Contains(t, stdout.String(), "spawn_mode: external")
}

func TestSchemaCmdAllDefinitions(t *testing.T) {
	g, stdout, _ := testGlobals("text")
	require.NoError(t, (&SchemaCmd{}).Run(g))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", out["$schema"])

	defs, ok := out["definitions"].(map[string]interface{})
	require.True(t, ok)
	for _, name := range []string{"session", "process", "spawn_result", "error"} {
		assert.Contains(t, defs, name)
	}
}

func TestSchemaCmdTypeSelection(t *testing.T) {
	g, stdout, _ := testGlobals("text")
	require.NoError(t, (&SchemaCmd{Type: []string{"session"}}).Run(g))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	defs := out["definitions"].(map[string]interface{})
	assert.Contains(t, defs, "session")
	assert.NotContains(t, defs, "process")
}

func TestVersionFlag(t *testing.T) {
	var c CLI
	var out bytes.Buffer
	exited := false
	parser, err := kong.New(&c,
		kong.Name("ccw"),
		kong.Vars{
			"config_format":     "text",
			"config_spawn_mode": "external",
			"config_limit":      "50",
			"version":           "ccw 1.2.3 (abc)",
		},
		kong.Writers(&out, &out),
		kong.Exit(func(int) { exited = true }),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--version"})
	assert.True(t, exited)
	assert.Contains(t, out.String(), "ccw 1.2.3 (abc)")
}

func TestVersionCmd(t *testing.T) {
	g, stdout, _ := testGlobals("text")
	require.NoError(t, (&VersionCmd{}).Run(g))
	assert.Contains(t, stdout.String(), "ccw "+Version)

	g, stdout, _ = testGlobals("ndjson")
	require.NoError(t, (&VersionCmd{}).Run(g))
	lines := decodeLines(t, stdout)
	assert.Equal(t, "version", lines[0]["type"])
	assert.Equal(t, Version, lines[0]["version"])
}

func TestOutputErrorCommonTextGoesToStderr(t *testing.T) {
	g, stdout, stderr := testGlobals("text")
	err := outputErrorCommon(g, "SOME_CODE", "it broke", "try again")
	require.Error(t, err)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Error [SOME_CODE]: it broke (hint: try again)")
}

func TestCompletionCmdShells(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		t.Run(shell, func(t *testing.T) {
			g, stdout, _ := testGlobals("text")
			require.NoError(t, (&CompletionCmd{Shell: shell}).Run(g, nil))
			assert.Contains(t, stdout.String(), "ccw")
		})
	}
}
