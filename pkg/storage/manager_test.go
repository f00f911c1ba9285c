package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	m, err := NewManager(dir, false)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, m.GetOutputDir())
}

func TestSaveAndSuffixPolicy(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, false)
	require.NoError(t, err)

	first, err := m.Save(strings.NewReader(`{"a": "1"}`), "slack_emojis.json")
	require.NoError(t, err)
	second, err := m.Save(strings.NewReader(`{"b": "2"}`), "slack_emojis.json")
	require.NoError(t, err)
	third, err := m.Save(strings.NewReader(`{"c": "3"}`), "slack_emojis.json")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "slack_emojis.json"), first)
	assert.Equal(t, filepath.Join(dir, "slack_emojis_1.json"), second)
	assert.Equal(t, filepath.Join(dir, "slack_emojis_2.json"), third)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, `{"a": "1"}`, string(data))
	assert.Equal(t, 3, m.GetWrittenCount())
	assert.True(t, m.Exists("slack_emojis_1.json"))

	info, err := os.Stat(first)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestSaveOverwrite(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, true)
	require.NoError(t, err)

	_, err = m.Save(strings.NewReader("old"), "all_servers_emojis.json")
	require.NoError(t, err)
	path, err := m.Save(strings.NewReader("new"), "all_servers_emojis.json")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestSaveCleansUpOnError(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, false)
	require.NoError(t, err)

	_, err = m.Save(failingReader{}, "x.json")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary file removed")
	assert.False(t, m.Exists("x.json"))
}

func TestSaveRejectsPaths(t *testing.T) {
	m, err := NewManager(t.TempDir(), false)
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.json", "sub/dir.json"} {
		_, err := m.Save(strings.NewReader("x"), name)
		assert.Error(t, err, name)
	}
}
