// Package notify delivers review reminders for learned words that have not
// been studied recently.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Reminder is one word due for review.
type Reminder struct {
	WordID        int64
	Kanji         string
	Romaji        string
	Vietnamese    string
	LastStudiedAt *time.Time
}

type Notifier struct {
	enabled bool
	command string
	out     io.Writer
}

// NewNotifier creates a notifier. With a command, each message is piped to
// its stdin; otherwise messages are written to out (stdout when nil).
func NewNotifier(enabled bool, command string, out io.Writer) *Notifier {
	if out == nil {
		out = os.Stdout
	}
	return &Notifier{
		enabled: enabled,
		command: command,
		out:     out,
	}
}

// NotifyStaleWords sends a single reminder listing the words. It does
// nothing when disabled or when there is nothing to review.
func (n *Notifier) NotifyStaleWords(ctx context.Context, reminders []Reminder, days int) error {
	if !n.enabled || len(reminders) == 0 {
		return nil
	}
	if err := n.send(ctx, FormatReminder(reminders, days, time.Now())); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// FormatReminder renders the reminder text.
func FormatReminder(reminders []Reminder, days int, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 %d words not reviewed in %d days\n", len(reminders), days)
	for _, r := range reminders {
		fmt.Fprintf(&b, "\n%s (%s) %s", r.Kanji, r.Romaji, truncate(r.Vietnamese, 40))
		if r.LastStudiedAt != nil {
			fmt.Fprintf(&b, ", last studied %d days ago", int(now.Sub(*r.LastStudiedAt).Hours()/24))
		}
	}
	return b.String()
}

func (n *Notifier) send(ctx context.Context, message string) error {
	if n.command != "" {
		fields := strings.Fields(n.command)
		cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
		cmd.Stdin = strings.NewReader(message)
		cmd.Stdout = n.out
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}

	fmt.Fprintln(n.out, "╔════════════════════════════════════════════════════════════════════════")
	fmt.Fprintln(n.out, "║ 🔔 REVIEW REMINDER")
	fmt.Fprintln(n.out, "╠════════════════════════════════════════════════════════════════════════")
	fmt.Fprintln(n.out, message)
	fmt.Fprintln(n.out, "╚════════════════════════════════════════════════════════════════════════")
	return nil
}

// truncate truncates a string to maxLen runes
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
