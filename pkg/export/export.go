// Package export builds the name to URL documents written at the end of a harvest.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"emojiharvest/pkg/harvest"
	"emojiharvest/pkg/storage"
)

// Entry is one exported emoji
type Entry struct {
	Name string
	URL  string
}

// Emojis is an ordered name to URL mapping. A name keeps the position of its
// first appearance; a later URL for the same name replaces the earlier one.
type Emojis struct {
	index   map[string]int
	entries []Entry
}

// New returns an empty mapping
func New() *Emojis {
	return &Emojis{index: make(map[string]int)}
}

// FromItems builds a mapping from harvested items. Items without a name
// are called emoji_<i>, i being their position in items.
func FromItems(items []harvest.Item) *Emojis {
	e := New()
	for i, it := range items {
		name := it.Name
		if name == "" {
			name = fmt.Sprintf("emoji_%d", i)
		}
		e.Add(name, it.Locator)
	}
	return e
}

// Add inserts or updates name
func (e *Emojis) Add(name, url string) {
	if i, ok := e.index[name]; ok {
		e.entries[i].URL = url
		return
	}
	e.index[name] = len(e.entries)
	e.entries = append(e.entries, Entry{Name: name, URL: url})
}

// Len returns the number of distinct names
func (e *Emojis) Len() int { return len(e.entries) }

// Entries returns a copy of the entries in order
func (e *Emojis) Entries() []Entry {
	return append([]Entry(nil), e.entries...)
}

// Preview returns at most n leading entries and how many were left out
func (e *Emojis) Preview(n int) ([]Entry, int) {
	if n < 0 {
		n = 0
	}
	if n >= len(e.entries) {
		return e.Entries(), 0
	}
	return append([]Entry(nil), e.entries[:n]...), len(e.entries) - n
}

// MarshalJSON encodes the mapping as a JSON object in insertion order
func (e *Emojis) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range e.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(entry.URL)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSON returns the document as written to disk, indented by two spaces
func (e *Emojis) JSON() ([]byte, error) {
	raw, err := e.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Filename derives the export file name from a source or section label.
// Anything outside [a-zA-Z0-9] becomes an underscore and the result is lowercased.
func Filename(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.ToLower(b.String()) + "_emojis.json"
}

// Write encodes e and saves it under the label's file name. It returns the
// path written.
func Write(m *storage.Manager, label string, e *Emojis) (string, error) {
	data, err := e.JSON()
	if err != nil {
		return "", fmt.Errorf("encode %s export: %w", label, err)
	}
	path, err := m.Save(bytes.NewReader(data), Filename(label))
	if err != nil {
		return "", fmt.Errorf("save %s export: %w", label, err)
	}
	return path, nil
}
