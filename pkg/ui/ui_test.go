package ui

import (
	"bytes"
	"errors"
	"testing"

	"emojiharvest/pkg/config"
	"emojiharvest/pkg/export"
	"emojiharvest/pkg/harvest"

	"github.com/stretchr/testify/assert"
)

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name string
		p    harvest.Progress
		want string
	}{
		{"discover", harvest.Progress{Pass: "discover", Collected: 3, Attempt: 12, MaxAttempts: 200}, "Found 3 sections... Scrolling (12/200)"},
		{"section", harvest.Progress{Pass: "section", Collected: 1234}, "Found 1,234 emojis"},
		{"fast", harvest.Progress{Pass: "fast", Collected: 7}, "Found 7 emojis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusLine(tt.p))
		})
	}
}

func TestAttemptBar(t *testing.T) {
	assert.Equal(t, "[██░░░░░░░░] 20/100", AttemptBar(harvest.Progress{Attempt: 20, MaxAttempts: 100}, 10))
	assert.Equal(t, "[░░░░] 3/0", AttemptBar(harvest.Progress{Attempt: 3}, 4))
	assert.Equal(t, "[████] 9/5", AttemptBar(harvest.Progress{Attempt: 9, MaxAttempts: 5}, 4))
}

func emojis(n int) *export.Emojis {
	e := export.New()
	for i := 0; i < n; i++ {
		e.Add(string(rune('a'+i)), "https://e/"+string(rune('a'+i))+".png")
	}
	return e
}

func TestPreviewLines(t *testing.T) {
	lines := PreviewLines(emojis(5), 2)
	assert.Equal(t, []string{
		"a: https://e/a.png",
		"b: https://e/b.png",
		"...and 3 more",
	}, lines)

	assert.Len(t, PreviewLines(emojis(2), 20), 2)
}

func TestPrintPreview(t *testing.T) {
	var buf bytes.Buffer
	PrintPreview(&buf, "Cool Server", emojis(3), 20)

	out := buf.String()
	assert.Contains(t, out, "Emojis from Cool Server")
	assert.Contains(t, out, "3 emojis found")
	assert.NotContains(t, out, "more")
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(title, message string) error {
	f.sent = append(f.sent, title+": "+message)
	return f.err
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	sender := &fakeSender{err: errors.New("no notification daemon")}
	cfg := config.NotificationConfig{Enabled: true, OnComplete: true, OnError: false}
	n := NewNotifierWithSender(cfg, &buf, sender)

	n.SendSuccess("Export complete", "42 emojis")
	n.SendError("Harvest failed", "container not found")

	assert.Equal(t, []string{"Export complete: 42 emojis"}, sender.sent)
	assert.Contains(t, buf.String(), "Export complete")
	assert.Contains(t, buf.String(), "Harvest failed")
}

func TestNotifierDisabled(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifierWithSender(config.NotificationConfig{OnComplete: true}, nil, sender)

	n.SendSuccess("Export complete", "1 emoji")

	assert.Empty(t, sender.sent)
}

func TestNewNotifierTerminalOnly(t *testing.T) {
	n := NewNotifier(config.NotificationConfig{Enabled: true, NotificationType: "terminal"}, nil)
	assert.Nil(t, n.sender)
}

func TestAppleScriptString(t *testing.T) {
	assert.Equal(t, `"say \"hi\" \\o/"`, appleScriptString(`say "hi" \o/`))
}

func TestProgressDisplay(t *testing.T) {
	var buf bytes.Buffer
	d := NewProgressDisplay(&buf, "slack", false)

	d.Progress(harvest.Progress{Pass: "fast", Collected: 10, Attempt: 1, MaxAttempts: 300})
	d.Status("Resetting scroll position")
	d.Complete("slack", 10, "/tmp/slack_emojis.json", 2048, harvest.ReasonCancelled)

	out := buf.String()
	assert.Contains(t, out, "Found 10 emojis")
	assert.Contains(t, out, "Resetting scroll position")
	assert.Contains(t, out, "Saved 10 emojis from slack")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "partial")
}

func TestProgressDisplayDebugSkipsStatusLine(t *testing.T) {
	var buf bytes.Buffer
	d := NewProgressDisplay(&buf, "slack", true)

	d.Progress(harvest.Progress{Pass: "fast", Collected: 10})

	assert.Empty(t, buf.String())
}

func TestPrinterNilWriter(t *testing.T) {
	p := NewPrinter(nil)
	p.Success("ok")
	p.Error("failed", errors.New("boom"))
}
