package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoglobals // test binary path is set in TestMain
var testBinaryPath string

// TestMain builds the CLI binary once for the entire package and reuses it.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "companion-ui-test-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1) //nolint:gocritic // Mkdir failed, nothing to cleanup
	}
	defer os.RemoveAll(dir)

	bin := filepath.Join(dir, "companion-ui-test")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build test binary: %v\nOutput: %s\n", err, string(out))
		os.Exit(1) //nolint:gocritic // Binary failed, nothing to cleanup
	}
	testBinaryPath = bin

	code := m.Run()
	os.Exit(code)
}

const helloScenario = `
name: hello
node:
  channels:
    - name: Public
      psk: izOH6cXN6mrJ5e26oRXNcg==
steps:
  - at: 3500
    type: "\r"
  - at: 3600
    type: "hi\r"
`

// newCmd runs the binary with a private prefs file so tests never touch the real home.
func newCmd(t *testing.T, args ...string) *exec.Cmd {
	t.Helper()
	if testBinaryPath == "" {
		t.Fatalf("test binary not built")
	}
	prefsPath := filepath.Join(t.TempDir(), "prefs.json")
	return exec.Command(testBinaryPath, append([]string{"--prefs", prefsPath}, args...)...)
}

func run(t *testing.T, cmd *exec.Cmd) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCLI_HelpOutput(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "root help",
			args:     []string{"--help"},
			contains: []string{"companion-ui", "run", "replay", "scenarios", "prefs", "--config", "--prefs", "--verbose"},
		},
		{
			name:     "replay help",
			args:     []string{"replay", "--help"},
			contains: []string{"SCENARIO", "--json"},
		},
		{
			name:     "prefs help",
			args:     []string{"prefs", "--help"},
			contains: []string{"show", "set-name", "set-radio"},
		},
		{
			name:     "set-radio help",
			args:     []string{"prefs", "set-radio", "--help"},
			contains: []string{"--freq", "--bw", "--sf", "--cr", "--tx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := run(t, newCmd(t, tt.args...))
			require.NoError(t, err)
			for _, expected := range tt.contains {
				assert.Contains(t, output, expected)
			}
		})
	}
}

func TestCLI_Version(t *testing.T) {
	output, err := run(t, newCmd(t, "--version"))
	require.NoError(t, err)
	assert.Contains(t, output, "companion-ui dev")
	assert.Contains(t, output, "commit: none")
	assert.Contains(t, output, "date: unknown")
}

func TestCLI_Prefs(t *testing.T) {
	prefsPath := filepath.Join(t.TempDir(), "nested", "prefs.json")
	prefsCmd := func(args ...string) *exec.Cmd {
		return exec.Command(testBinaryPath, append([]string{"--prefs", prefsPath}, args...)...)
	}

	output, err := run(t, prefsCmd("prefs", "show"))
	require.NoError(t, err, output)
	assert.Contains(t, output, `"node_name": "node-`)
	info, err := os.Stat(prefsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	output, err = run(t, prefsCmd("prefs", "set-name", "bravo"))
	require.NoError(t, err, output)
	assert.Contains(t, output, "Node name set to bravo")

	output, err = run(t, prefsCmd("prefs", "set-radio", "--freq", "915", "--bw", "125", "--sf", "9"))
	require.NoError(t, err, output)
	assert.Contains(t, output, "915.000 MHz")

	output, err = run(t, prefsCmd("prefs", "show"))
	require.NoError(t, err, output)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &shown), output)
	assert.Equal(t, "bravo", shown["node_name"])
	assert.InDelta(t, 915.0, shown["freq"], 0.001)
	assert.InDelta(t, 125.0, shown["bw"], 0.001)
	assert.InDelta(t, 9.0, shown["sf"], 0.001)
	assert.InDelta(t, 5.0, shown["cr"], 0.001, "untouched flags keep their value")

	output, err = run(t, prefsCmd("prefs", "set-radio", "--sf", "3"))
	require.Error(t, err)
	assert.Contains(t, output, "invalid radio settings")

	output, err = run(t, prefsCmd("prefs", "set-name", "a-name-that-is-far-too-long-for-the-screen"))
	require.Error(t, err)
	assert.Contains(t, output, "invalid node name")
}

func TestCLI_Replay(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hello.yaml", helloScenario)

	output, err := run(t, newCmd(t, "replay", path))
	require.NoError(t, err, output)
	assert.Contains(t, output, "scenario: hello")
	assert.Contains(t, output, "screen: compose")
	assert.Contains(t, output, "Sent to #Public")
	assert.Contains(t, output, "#Public")
	assert.Contains(t, output, "+---")

	cmd := newCmd(t, "replay", "--json", path)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	require.NoError(t, cmd.Run())
	var report map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report), stdout.String())
	assert.Equal(t, "hello", report["scenario"])
	assert.Equal(t, "compose", report["screen"])
	sent, ok := report["sent"].([]any)
	require.True(t, ok)
	assert.Len(t, sent, 1)
}

func TestCLI_ReplayErrors(t *testing.T) {
	dir := t.TempDir()

	output, err := run(t, newCmd(t, "replay", filepath.Join(dir, "missing.yaml")))
	require.Error(t, err)
	assert.Contains(t, output, "read scenario")

	bad := writeFile(t, dir, "bad.toml", "name = 'x'")
	output, err = run(t, newCmd(t, "replay", bad))
	require.Error(t, err)
	assert.Contains(t, output, "unknown scenario format")

	cfgPath := writeFile(t, dir, "config.yaml", "ui:\n  recent_list_size: 0\n")
	output, err = run(t, newCmd(t, "--config", cfgPath, "replay", writeFile(t, dir, "ok.yaml", helloScenario)))
	require.Error(t, err)
	assert.Contains(t, output, "invalid configuration")
}

func TestCLI_Scenarios(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.yaml", helloScenario)
	writeFile(t, dir, "quiet.json", `{"name": "quiet", "description": "toggle quiet mode", "steps": [{"at": 3500, "button": "triple"}]}`)
	writeFile(t, dir, "broken.yaml", "steps:\n  - at: 20\n  - at: 10\n")

	output, err := run(t, newCmd(t, "scenarios", dir))
	require.NoError(t, err, output)
	assert.Contains(t, output, "hello")
	assert.Contains(t, output, "quiet")
	assert.Contains(t, output, "toggle quiet mode")
	assert.Contains(t, output, "Skipping")
	assert.Contains(t, output, "broken.yaml")

	output, err = run(t, newCmd(t, "scenarios", t.TempDir()))
	require.NoError(t, err)
	assert.Contains(t, output, "No scenarios found")
}
