package scenario_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshcore-dev/companion-ui/internal/config"
	"github.com/meshcore-dev/companion-ui/internal/prefs"
	"github.com/meshcore-dev/companion-ui/internal/scenario"
	"github.com/meshcore-dev/companion-ui/internal/ui"
)

const sampleYAML = `
name: hello
node:
  name: tester
  contacts:
    - name: alice
    - name: bob
      flood: true
  channels:
    - name: Public
      psk: izOH6cXN6mrJ5e26oRXNcg==
  adverts:
    - name: alice
      hops: 1
      age_secs: 30
  sensors:
    - channel: 2
      type: humidity
      value: 40
steps:
  - at: 3500
    type: "\r"
  - at: 3600
    type: hi
  - at: 3700
    bytes: [13]
`

const sampleJSON = `{
  "name": "hello",
  "node": {
    "name": "tester",
    "contacts": [{"name": "alice"}, {"name": "bob", "flood": true}],
    "channels": [{"name": "Public", "psk": "izOH6cXN6mrJ5e26oRXNcg=="}],
    "adverts": [{"name": "alice", "hops": 1, "age_secs": 30}],
    "sensors": [{"channel": 2, "type": "humidity", "value": 40}]
  },
  "steps": [
    {"at": 3500, "type": "\r"},
    {"at": 3600, "type": "hi"},
    {"at": 3700, "bytes": [13]}
  ]
}`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_JSONAndYAMLAgree(t *testing.T) {
	dir := t.TempDir()
	fromYAML, err := scenario.Load(writeFile(t, dir, "hello.yaml", sampleYAML))
	require.NoError(t, err)
	fromJSON, err := scenario.Load(writeFile(t, dir, "hello.json", sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromJSON)
	assert.Equal(t, "tester", fromYAML.Node.Name)
	require.Len(t, fromYAML.Steps, 3)
	assert.Equal(t, "\r", fromYAML.Steps[0].Type)
	assert.Equal(t, []int{13}, fromYAML.Steps[2].Bytes)
	assert.Equal(t, int64(3700+2000), fromYAML.End())
}

func TestLoad_NameDefaultsToFileName(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quiet-night.yml", "steps:\n  - at: 10\n    button: triple\n")
	sc, err := scenario.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "quiet-night", sc.Name)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		want    error
		message string
	}{
		{name: "extension", file: "s.toml", body: "name = 'x'", want: scenario.ErrUnknownFormat},
		{name: "bad psk", file: "s.yaml", body: "name: x\nnode:\n  channels:\n    - name: c\n      psk: nope\n", want: scenario.ErrInvalid},
		{name: "steps out of order", file: "s.yaml", body: "name: x\nsteps:\n  - at: 20\n  - at: 10\n", want: scenario.ErrInvalid},
		{name: "unknown button", file: "s.yaml", body: "name: x\nsteps:\n  - at: 0\n    button: hold\n", want: scenario.ErrInvalid},
		{name: "byte range", file: "s.json", body: `{"name": "x", "steps": [{"at": 0, "bytes": [256]}]}`, want: scenario.ErrInvalid},
		{name: "unknown sensor", file: "s.yaml", body: "name: x\nnode:\n  sensors:\n    - channel: 2\n      type: smell\n", want: scenario.ErrInvalid},
		{name: "gps sensor", file: "s.yaml", body: "name: x\nnode:\n  sensors:\n    - channel: 1\n      type: gps\n", want: scenario.ErrInvalid},
		{name: "until before last step", file: "s.yaml", body: "name: x\nuntil: 5\nsteps:\n  - at: 10\n", want: scenario.ErrInvalid},
		{name: "case collision", file: "s.json", body: `{"name": "x", "steps": [{"at": 1, "At": 2}]}`, message: "steps[0]"},
		{name: "syntax", file: "s.json", body: `{"name": `, message: "parse scenario"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scenario.Load(writeFile(t, t.TempDir(), tt.file, tt.body))
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestApply_OverlaysConfig(t *testing.T) {
	sc := scenario.Scenario{Name: "x", Config: map[string]any{
		"ui":    map[string]any{"auto_off_ms": 0, "eink": true},
		"power": map[string]any{"auto_shutdown_millivolts": 3300},
	}}
	cfg, err := sc.Apply(config.Default())
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.UI.AutoOffMS)
	assert.True(t, cfg.UI.EInk)
	assert.Equal(t, 3300, cfg.Power.AutoShutdownMillivolts)
	assert.Equal(t, config.Default().UI.BootScreenMS, cfg.UI.BootScreenMS)

	sc.Config = map[string]any{"ui": map[string]any{"recent_list_size": 0}}
	_, err = sc.Apply(config.Default())
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestDiscover_SkipsNoise(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", sampleYAML)
	writeFile(t, dir, "sub/b.json", sampleJSON)
	writeFile(t, dir, "notes.txt", "not a scenario")
	writeFile(t, dir, ".git/c.yaml", sampleYAML)
	writeFile(t, dir, "node_modules/d.json", sampleJSON)

	var found []string
	for path := range scenario.Discover(context.Background(), dir) {
		rel, err := filepath.Rel(dir, path)
		require.NoError(t, err)
		found = append(found, filepath.ToSlash(rel))
	}
	assert.ElementsMatch(t, []string{"a.yaml", "sub/b.json"}, found)
}

func TestDiscover_Canceled(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml", "c.yaml"} {
		writeFile(t, dir, name, sampleYAML)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The channel must still be closed.
	for range scenario.Discover(ctx, dir) {
	}
}

func TestLoadAll_ReportsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", sampleYAML)
	writeFile(t, dir, "a.json", sampleJSON)
	broken := writeFile(t, dir, "broken.yaml", "name: x\nsteps:\n  - at: 20\n  - at: 10\n")

	entries, errs := scenario.LoadAll(context.Background(), dir)
	require.Len(t, entries, 2)
	assert.Equal(t, filepath.Join(dir, "a.json"), entries[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.yaml"), entries[1].Path)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[broken], scenario.ErrInvalid)
}

func TestBundledScenarios(t *testing.T) {
	entries, errs := scenario.LoadAll(context.Background(), filepath.Join("..", "..", "scenarios"))
	require.Empty(t, errs)
	require.Len(t, entries, 2)

	byName := map[string]scenario.Result{}
	for _, e := range entries {
		res, err := scenario.Replay(context.Background(), e.Scenario, config.Default(), testPrefs())
		require.NoError(t, err, e.Path)
		byName[res.Scenario] = res
	}

	sent := byName["send-to-public"].Sent
	require.Len(t, sent, 1)
	assert.Equal(t, "#Public", sent[0].To)
	assert.Equal(t, "hello mesh", sent[0].Text)

	low := byName["low-battery"]
	assert.True(t, low.Halted)
	assert.Equal(t, 1, low.Unread)
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, scenario.Default().Validate())
}

func testPrefs() prefs.NodePrefs {
	p := prefs.Default()
	p.NodeName = "sim"
	return p
}

func TestNewDevice_Seeds(t *testing.T) {
	sc := scenario.Scenario{Name: "seed", Node: scenario.Node{
		Name:      "tester",
		BLEPin:    123456,
		BatteryMV: 3900,
		Contacts:  []scenario.Contact{{Name: "alice"}, {Name: "bob", Flood: true}},
		Adverts: []scenario.Advert{
			{Name: "old", AgeSecs: 3000},
			{Name: "new", AgeSecs: 5},
			{Name: "mid", AgeSecs: 600},
		},
	}}
	dev, err := scenario.NewDevice(sc, config.Default(), testPrefs(), "v1.0.0", "today")
	require.NoError(t, err)

	assert.Equal(t, "tester", dev.Prefs.NodeName)
	assert.Equal(t, uint32(123456), dev.Node.BLEPin())
	assert.Equal(t, uint16(3900), dev.Board.BattMilliVolts())
	assert.Equal(t, 2, dev.Node.NumContacts())
	bob, ok := dev.Node.ContactByIdx(1)
	require.True(t, ok)
	assert.Negative(t, bob.OutPathLen)

	heard := dev.Node.GetRecentlyHeard(10)
	require.Len(t, heard, 3)
	assert.Equal(t, "new", heard[0].Name)
	assert.Equal(t, "mid", heard[1].Name)
	assert.Equal(t, "old", heard[2].Name)
	assert.Equal(t, scenario.Epoch-5, heard[0].RecvTimestamp)
}

func TestDevice_LongPressHoldsButton(t *testing.T) {
	dev, err := scenario.NewDevice(scenario.Default(), config.Default(), testPrefs(), "v1", "")
	require.NoError(t, err)

	dev.Apply(scenario.Step{Button: "long"})
	assert.True(t, dev.Button.IsPressed())
	dev.Apply(scenario.Step{Release: true})
	assert.False(t, dev.Button.IsPressed())
}

func TestReplay_SendToChannel(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hello.yaml", sampleYAML)
	sc, err := scenario.Load(path)
	require.NoError(t, err)

	res, err := scenario.Replay(context.Background(), sc, config.Default(), testPrefs())
	require.NoError(t, err)

	assert.Equal(t, "compose", res.Screen)
	assert.False(t, res.Halted)
	require.Len(t, res.Sent, 1)
	assert.Equal(t, "#Public", res.Sent[0].To)
	assert.Equal(t, "hi", res.Sent[0].Text)

	var texts []string
	for _, a := range res.Alerts {
		texts = append(texts, a.Text)
	}
	assert.Contains(t, texts, "Keypad: OK")
	assert.Contains(t, texts, "Sent to #Public")
	assert.Equal(t, []string{"ack"}, res.Melodies)
	assert.Equal(t, int64(scenario.TickMS), res.Alerts[0].At)
}

func TestReplay_InboundMessage(t *testing.T) {
	sc := scenario.Default()
	sc.Steps = []scenario.Step{
		{At: 3500, Message: &scenario.Message{From: "bob", Text: "hello there", Direct: true}},
	}
	res, err := scenario.Replay(context.Background(), sc, config.Default(), testPrefs())
	require.NoError(t, err)
	assert.Equal(t, "preview", res.Screen)
	assert.Equal(t, 1, res.Unread)
	assert.Contains(t, res.Frame, "(D) bob:")
	assert.Contains(t, res.Frame, "hello there")
	assert.Equal(t, 1, res.Vibrations)

	sc.Steps = append(sc.Steps, scenario.Step{At: 4000, Type: "\r"})
	res, err = scenario.Replay(context.Background(), sc, config.Default(), testPrefs())
	require.NoError(t, err)
	assert.Equal(t, "home", res.Screen)
	assert.Equal(t, ui.PageFirst.String(), res.HomePage)
}

func TestReplay_LowBatteryShutsDown(t *testing.T) {
	sc := scenario.Default()
	sc.Config = map[string]any{"power": map[string]any{"auto_shutdown_millivolts": 3300}}
	sc.Steps = []scenario.Step{{At: 1000, BatteryMV: 3000}}
	sc.Until = 30000

	res, err := scenario.Replay(context.Background(), sc, config.Default(), testPrefs())
	require.NoError(t, err)
	assert.True(t, res.Halted)
	assert.Less(t, res.EndedAt, int64(10000))
	assert.False(t, res.DisplayOn)
}

func TestReplay_KeypadDisabled(t *testing.T) {
	sc := scenario.Default()
	sc.Config = map[string]any{"keypad": map[string]any{"enabled": false}}
	sc.Steps = []scenario.Step{{At: 3500, Type: "\r"}}

	res, err := scenario.Replay(context.Background(), sc, config.Default(), testPrefs())
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
	assert.Equal(t, "home", res.Screen)
}

func TestReplay_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := scenario.Replay(ctx, scenario.Default(), config.Default(), testPrefs())
	assert.ErrorIs(t, err, context.Canceled)
}
