package ui

import (
	"strings"

	"github.com/five82/tally/internal/logtail"
)

// handleActivity fills the activity pane from the tail of the log file and
// keeps it scrolled to the newest entry.
func (m *Model) handleActivity(msg activityMsg) {
	if msg.err != nil {
		m.activity.SetContent(m.theme.Styles().DangerText.Render("log unavailable: " + msg.err.Error()))
		return
	}
	lines := make([]string, 0, len(msg.entries))
	for _, e := range msg.entries {
		lines = append(lines, m.formatEntry(e))
	}
	m.activity.SetContent(strings.Join(lines, "\n"))
	m.activity.GotoBottom()
}

func (m Model) formatEntry(e logtail.Entry) string {
	styles := m.theme.Styles()
	if e.Level == "" {
		return styles.FaintText.Render(e.Raw)
	}

	level := styles.MutedText
	switch e.Level {
	case "ERROR":
		level = styles.DangerText
	case "WARN":
		level = styles.WarningText
	case "INFO":
		level = styles.InfoText
	}

	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(styles.FaintText.Render(e.Time.Format("15:04:05")))
		b.WriteString(" ")
	}
	b.WriteString(level.Render(padRight(e.Level, 5)))
	b.WriteString(" ")
	if e.Component != "" {
		b.WriteString(styles.AccentText.Render("[" + e.Component + "]"))
		b.WriteString(" ")
	}
	b.WriteString(styles.Text.Render(e.Message))
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(a.Key + "=" + a.Value))
	}
	return b.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func (m Model) renderActivity() string {
	styles := m.theme.Styles()
	title := styles.ColumnHeader.Width(m.width).Render("Activity")
	return title + "\n" + m.activity.View()
}
