package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestNotifyStaleWords(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(true, "", &buf)

	studied := time.Now().Add(-10 * 24 * time.Hour)
	err := n.NotifyStaleWords(context.Background(), []Reminder{
		{WordID: 1, Kanji: "山", Romaji: "yama", Vietnamese: "núi", LastStudiedAt: &studied},
		{WordID: 2, Kanji: "川", Romaji: "kawa", Vietnamese: "sông"},
	}, 7)
	if err != nil {
		t.Fatalf("NotifyStaleWords failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"REVIEW REMINDER", "2 words not reviewed in 7 days", "山 (yama) núi, last studied 10 days ago", "川 (kawa) sông"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNotifyStaleWords_DisabledOrEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewNotifier(false, "", &buf).NotifyStaleWords(context.Background(), []Reminder{{Kanji: "山"}}, 7)
	NewNotifier(true, "", &buf).NotifyStaleWords(context.Background(), nil, 7)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestNotifyStaleWords_Command(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(true, "cat", &buf)

	if err := n.NotifyStaleWords(context.Background(), []Reminder{{Kanji: "山", Romaji: "yama"}}, 3); err != nil {
		t.Fatalf("NotifyStaleWords failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "📚 1 words not reviewed in 3 days") {
		t.Errorf("command did not receive message: %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  ngắn  ", 10); got != "ngắn" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("dài quá rồi", 3); got != "dài..." {
		t.Errorf("truncate = %q", got)
	}
}
