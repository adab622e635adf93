// Package display provides terminal formatting for threaded listings.
package display

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailscope/internal/thread"
)

var (
	// Styles
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	Bold     = lipgloss.NewStyle().Bold(true)
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))

	bucketStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0284c7")).
			Bold(true)
)

// Buckets renders a threaded, date-bucketed listing for the terminal.
func Buckets(buckets []thread.Bucket, now time.Time) string {
	var b strings.Builder

	for _, bucket := range buckets {
		b.WriteString(bucketStyle.Render(strings.ToUpper(bucket.Label)))
		b.WriteString("\n")

		for _, group := range bucket.Groups {
			b.WriteString(groupLine(&group, now))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// groupLine formats one conversation as a single row: sender, message
// count, subject, relative date of the newest message.
func groupLine(group *thread.Group, now time.Time) string {
	newest := group.Newest()

	from := ""
	if newest.From != nil {
		from = FromLabel(*newest.From)
	}
	if len(group.Messages) > 1 {
		from = fmt.Sprintf("%s (%d)", from, len(group.Messages))
	}

	date := ""
	if newest.SentAt != nil {
		date = RelativeDate(*newest.SentAt, now)
	}

	return fmt.Sprintf("  %-32s %s  %s",
		truncate(from, 32),
		Bold.Render(truncate(group.Subject(), 60)),
		Dim.Render(date),
	)
}

// FromLabel extracts a display label from a raw From header: the
// first address's display name, falling back to the bare address,
// falling back to the raw header text.
func FromLabel(rawFrom string) string {
	addrs, err := mail.ParseAddressList(rawFrom)
	if err != nil || len(addrs) == 0 {
		return rawFrom
	}
	if addrs[0].Name != "" {
		return addrs[0].Name
	}
	return addrs[0].Address
}

// DateFormat renders a raw Date header as a full local timestamp,
// e.g. "Mon, Mar 06, 2023, 10:21 AM". Unparseable dates render empty.
func DateFormat(sentAt string) string {
	t, err := mail.ParseDate(sentAt)
	if err != nil {
		return ""
	}
	return t.Local().Format("Mon, Jan 02, 2006, 03:04 PM")
}

// RelativeDate renders a raw Date header compactly: time of day for
// today, month and day within the current year, full date otherwise.
func RelativeDate(sentAt string, now time.Time) string {
	t, err := mail.ParseDate(sentAt)
	if err != nil {
		return ""
	}
	t = t.In(now.Location())

	sy, sm, sd := t.Date()
	ny, nm, nd := now.Date()
	switch {
	case sy == ny && sm == nm && sd == nd:
		return t.Format("03:04 PM")
	case sy == ny:
		return t.Format("Jan 02")
	default:
		return t.Format("01/02/2006")
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
