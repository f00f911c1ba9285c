package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"emojiharvest/pkg/config"
	"emojiharvest/pkg/harvest"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExampleConfigMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0644))

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))
	require.NoError(t, cfg.Validate())

	if diff := cmp.Diff(config.DefaultConfig(), cfg); diff != "" {
		t.Errorf("example config differs from defaults (-want +got):\n%s", diff)
	}
}

func TestRenderSections(t *testing.T) {
	var buf bytes.Buffer
	renderSections(&buf, []harvest.Section{
		{Name: "Alpha", Offset: 0},
		{Name: "Beta", Offset: 512.4},
	})

	out := buf.String()
	assert.Contains(t, out, "SERVER")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "512")
	assert.Contains(t, strings.ToLower(out), "2 servers")
}

func TestSectionNames(t *testing.T) {
	got := sectionNames([]harvest.Section{{Name: "Alpha"}, {Name: "Beta"}})
	assert.Equal(t, "Alpha, Beta", got)
}

func TestCommandFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	require.NoError(t, cmd.ParseFlags([]string{"--headless", "--output", "out", "--timeout", "5m"}))
	t.Cleanup(func() {
		headless = false
		outputDir = ""
		timeout = 0
	})

	flags := commandFlags(cmd, map[string]interface{}{"workspace": "acme"})

	assert.Equal(t, map[string]interface{}{
		"headless":  true,
		"output":    "out",
		"timeout":   5 * time.Minute,
		"workspace": "acme",
	}, flags)
}

func TestConfigWarnings(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Len(t, configWarnings(cfg), 2)

	cfg.Browser.UserDataDir = t.TempDir()
	cfg.Slack.Workspace = "acme"
	assert.Empty(t, configWarnings(cfg))

	cfg.Browser.ExecPath = filepath.Join(t.TempDir(), "missing-chrome")
	assert.Len(t, configWarnings(cfg), 1)
}
