package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/uilayers/internal/infrastructure/config"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/logging"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/server"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

const catalogYAML = `templates:
  - tag: inventory
    title: Inventory
    layers: [panel]
  - tag: main-menu
    title: Main Menu
    layers: [exclusive]
  - tag: saved
    kind: toast
    ttl: 1m
    layers: [overlay]
`

func startHost(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Frame.Rate = 120
	cfg.RateLimit.Enabled = false

	srv, err := server.NewServer(cfg, logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv.Start(ctx)
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		closeCtx, stop := context.WithTimeout(context.Background(), time.Second)
		defer stop()
		_ = srv.Close(closeCtx)
		cancel()
	})
	return ts.URL
}

// run executes uictl against host and returns stdout
func run(t *testing.T, host string, args ...string) (string, error) {
	t.Helper()
	jsonOutput = false
	openArgs = ""
	templatesKind = ""
	timeout = 5 * time.Second
	if f := rootCmd.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--host", host}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedCatalog(t *testing.T, host string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))

	out, err := run(t, host, "templates", "add", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Registered inventory")
	assert.Contains(t, out, "Registered saved")
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "http://unused", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "uictl")
	assert.Contains(t, out, "watch")
}

func TestOpenStateClose(t *testing.T) {
	host := startHost(t)
	seedCatalog(t, host)

	out, err := run(t, host, "open", "panel", "inventory", "--args", `{"slot": 2}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Opened inventory on panel")

	_, err = run(t, host, "open", "exclusive", "main-menu")
	require.NoError(t, err)

	out, err = run(t, host, "state")
	require.NoError(t, err)
	assert.Contains(t, out, "Panels (1)")
	assert.Contains(t, out, "inventory")
	assert.Contains(t, out, "main-menu")

	out, err = run(t, host, "close", "top")
	require.NoError(t, err)
	assert.Contains(t, out, "Closed ")

	out, err = run(t, host, "close", "top")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to close")

	out, err = run(t, host, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Closed 1 instance(s)")
}

func TestOpenErrors(t *testing.T) {
	host := startHost(t)
	seedCatalog(t, host)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown layer", []string{"open", "floor", "inventory"}},
		{"bad args", []string{"open", "panel", "inventory", "--args", "[1,2]"}},
		{"layer not allowed", []string{"open", "overlay", "inventory"}},
		{"missing template", []string{"open", "panel", "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, host, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestTemplatesList(t *testing.T) {
	host := startHost(t)
	seedCatalog(t, host)

	out, err := run(t, host, "templates", "--kind", "toast")
	require.NoError(t, err)
	assert.Contains(t, out, "saved")
	assert.NotContains(t, out, "inventory")

	_, err = run(t, host, "templates", "rm", "saved")
	require.NoError(t, err)
	_, err = run(t, host, "templates", "show", "saved")
	assert.Error(t, err)
}

func TestParseArgs(t *testing.T) {
	args, err := parseArgs("")
	require.NoError(t, err)
	assert.Nil(t, args)

	args, err = parseArgs(`{"a": 1}`)
	require.NoError(t, err)
	assert.Equal(t, float64(1), args["a"])

	_, err = parseArgs("not json")
	assert.Error(t, err)
}

func TestWatchModelFoldsEvents(t *testing.T) {
	m := newWatchModel("http://host", nil)
	m.apply(types.WSMessage{Type: "system"})
	assert.Equal(t, "connected", m.status)

	m.apply(types.WSMessage{Type: "state", State: &types.Snapshot{}})
	require.NotNil(t, m.snapshot)

	now := time.Now()
	events := []types.Event{
		{Type: types.EventEntered, InstanceID: "a", Tag: "inventory", Layer: types.LayerPanel, State: types.StateActive, Timestamp: now},
		{Type: types.EventPaused, InstanceID: "a", Tag: "inventory", Layer: types.LayerPanel, State: types.StatePaused, Timestamp: now},
		{Type: types.EventEntered, InstanceID: "b", Tag: "map", Layer: types.LayerPanel, State: types.StateActive, Timestamp: now},
		{Type: types.EventEntered, InstanceID: "c", Tag: "menu", Layer: types.LayerExclusive, State: types.StateActive, Timestamp: now},
		{Type: types.EventClosed, InstanceID: "b", Tag: "map", Layer: types.LayerPanel, State: types.StateDestroyed, Timestamp: now},
	}
	for i := range events {
		m.apply(types.WSMessage{Type: "event", Event: &events[i]})
	}

	require.Len(t, m.snapshot.Panels, 1)
	assert.Equal(t, types.StatePaused, m.snapshot.Panels[0].State)
	require.NotNil(t, m.snapshot.Exclusive)
	assert.Equal(t, "menu", m.snapshot.Exclusive.Tag)
	assert.Len(t, m.events, 5)

	view := m.View()
	assert.Contains(t, view, "inventory")
	assert.Contains(t, view, "Events")
}

func TestWatchModelCapsEventLog(t *testing.T) {
	m := newWatchModel("http://host", nil)
	for i := 0; i < maxEventLines+5; i++ {
		m.apply(types.WSMessage{Type: "event", Event: &types.Event{Type: types.EventEntered, Layer: types.LayerOverlay}})
	}
	assert.Len(t, m.events, maxEventLines)
}
