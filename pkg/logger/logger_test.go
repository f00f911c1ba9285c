package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"emojiharvest/pkg/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := NewWithOutput(&config.LoggingConfig{Level: level}, &buf)
	require.NoError(t, err)
	return l, &buf
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info console", cfg: &config.LoggingConfig{Level: "info", Console: true}},
		{name: "debug json", cfg: &config.LoggingConfig{Level: "debug"}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "harvest.log")
	l, err := NewWithOutput(&config.LoggingConfig{Level: "info", File: path}, nil)
	require.NoError(t, err)

	l.WithField("source", "slack").Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"source":"slack"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := jsonLogger(t, "warn")

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFieldsChaining(t *testing.T) {
	l, buf := jsonLogger(t, "debug")

	parent := l.WithField("source", "discord")
	parent.
		WithFields(map[string]interface{}{"section": "Cool Server", "collected": 42}).
		Info("section complete")
	parent.Info("parent unchanged")

	out := buf.String()
	assert.Contains(t, out, `"source":"discord"`)
	assert.Contains(t, out, `"section":"Cool Server"`)
	assert.Contains(t, out, `"collected":42`)
	assert.Contains(t, out, `"app":"emojiharvest"`)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.NotContains(t, string(lines[1]), "section")
}

func TestWithError(t *testing.T) {
	l, buf := jsonLogger(t, "info")

	assert.Same(t, l, l.WithError(nil))

	l.WithError(errors.New("container vanished")).Error("scan failed")
	assert.Contains(t, buf.String(), `"error":"container vanished"`)
}

func TestFieldTypes(t *testing.T) {
	l, buf := jsonLogger(t, "info")

	l.InfoWithFields("typed", map[string]interface{}{
		"int64":    int64(456),
		"float":    3.5,
		"bool":     true,
		"duration": 5 * time.Second,
		"strings":  []string{"a", "b"},
		"cause":    errors.New("boom"),
		"custom":   struct{ Name string }{Name: "x"},
	})

	out := buf.String()
	assert.Contains(t, out, `"int64":456`)
	assert.Contains(t, out, `"float":3.5`)
	assert.Contains(t, out, `"strings":["a","b"]`)
	assert.Contains(t, out, `"cause":"boom"`)
	assert.Contains(t, out, `"custom":{"Name":"x"}`)
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitializeWithOutput(&config.LoggingConfig{Level: "debug"}, &buf))
	t.Cleanup(func() { globalLogger = nil })

	Info("global info")
	WithField("k", "v").Warn("global warn")
	WithError(errors.New("e")).Error("global error")
	LogComponentStart("browser", map[string]interface{}{"headless": true})
	LogComponentStop("browser", "done")
	LogMetrics("slack", time.Now(), map[string]interface{}{"emojis": 3})

	out := buf.String()
	assert.Contains(t, out, "global info")
	assert.Contains(t, out, `"k":"v"`)
	assert.Contains(t, out, "Component started")
	assert.Contains(t, out, `"reason":"done"`)
	assert.Contains(t, out, `"emojis":3`)
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("source", "slack").WithError(errors.New("oops"))

	child.WarnWithFields("extraction failed", map[string]interface{}{"attempt": 3})
	tl.Info("plain")

	msg, ok := tl.FindMessage("extraction failed")
	require.True(t, ok)
	assert.Equal(t, "WARN", msg.Level)
	assert.Equal(t, "slack", msg.Fields["source"])
	assert.Equal(t, 3, msg.Fields["attempt"])
	assert.EqualError(t, msg.Error, "oops")

	assert.True(t, tl.HasMessage("plain"))
	assert.Len(t, tl.GetMessages(), 2)
	assert.False(t, tl.HasError())

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
	assert.Empty(t, tl.String())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.WithField("a", 1).WithError(errors.New("x")).Error("nothing")
	assert.NotNil(t, l.GetZerolog())
}
