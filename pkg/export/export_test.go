package export

import (
	"encoding/json"
	"os"
	"testing"

	"emojiharvest/pkg/harvest"
	"emojiharvest/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromItemsOrderingAndCollisions(t *testing.T) {
	items := []harvest.Item{
		{Name: "zeta", Locator: "https://e/z1.png"},
		{Name: "", Locator: "https://e/anon.png"},
		{Name: "alpha", Locator: "https://e/a.png"},
		{Name: "zeta", Locator: "https://e/z2.png"},
	}

	e := FromItems(items)

	assert.Equal(t, []Entry{
		{Name: "zeta", URL: "https://e/z2.png"},
		{Name: "emoji_1", URL: "https://e/anon.png"},
		{Name: "alpha", URL: "https://e/a.png"},
	}, e.Entries())
}

func TestJSONIsOrderedAndIndented(t *testing.T) {
	e := New()
	e.Add("b", "https://e/b.png")
	e.Add("a", "https://e/a.png?x=1&y=2")

	data, err := e.JSON()
	require.NoError(t, err)

	want := "{\n  \"b\": \"https://e/b.png\",\n  \"a\": \"https://e/a.png?x=1\\u0026y=2\"\n}"
	assert.Equal(t, want, string(data))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "https://e/a.png?x=1&y=2", decoded["a"])
}

func TestJSONEmpty(t *testing.T) {
	data, err := New().JSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestPreview(t *testing.T) {
	e := New()
	for _, n := range []string{"a", "b", "c", "d"} {
		e.Add(n, "u")
	}

	shown, more := e.Preview(2)
	assert.Len(t, shown, 2)
	assert.Equal(t, 2, more)

	shown, more = e.Preview(20)
	assert.Len(t, shown, 4)
	assert.Equal(t, 0, more)

	shown, _ = e.Preview(-1)
	assert.Empty(t, shown)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"slack", "slack_emojis.json"},
		{"all_servers", "all_servers_emojis.json"},
		{"Cool Server!", "cool_server__emojis.json"},
		{"Ünïcode", "_n_code_emojis.json"},
		{"", "_emojis.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.label), tt.label)
	}
}

func TestWrite(t *testing.T) {
	m, err := storage.NewManager(t.TempDir(), false)
	require.NoError(t, err)

	e := New()
	e.Add("party", "https://e/party.gif")

	path, err := Write(m, "Cool Server", e)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, path, "cool_server_emojis.json")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"party": "https://e/party.gif"}`, string(data))
}
