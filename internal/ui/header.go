package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader draws the title line: app name, server and role on the left,
// connection and edit state on the right.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := lipgloss.Color(m.theme.Surface)
	on := func(s lipgloss.Style) lipgloss.Style { return s.Background(bg) }

	role := "child"
	if m.syncer != nil {
		role = string(m.syncer.Role())
	}
	left := on(styles.Logo).Render("tally") +
		on(styles.FaintText).Render(" · ") +
		on(styles.MutedText).Render(m.server) +
		on(styles.FaintText).Render(" · ") +
		on(styles.InfoText).Render(role)

	var right []string
	if m.syncer != nil {
		mount, ok := m.syncer.Store().Get(m.activeScope())
		switch {
		case ok && mount.IsOffline():
			right = append(right, on(styles.DangerText).Render(
				fmt.Sprintf("offline (%d failures)", mount.ConsecutiveFailures)))
		case ok && !mount.LastUpdated.IsZero():
			right = append(right, on(styles.FaintText).Render(
				"updated "+mount.LastUpdated.Format("15:04:05")))
		}
	}
	if v := m.currentView(); v.Pending() > 0 {
		right = append(right, on(styles.WarningText).Render(fmt.Sprintf("%d unsaved", v.Pending())))
	}
	switch {
	case m.saving:
		right = append(right, on(styles.AccentText).Render("saving…"))
	case m.loading:
		right = append(right, on(styles.AccentText).Render("loading…"))
	}
	rightText := strings.Join(right, on(styles.FaintText).Render(" · "))

	inner := max(m.width-2, 0)
	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(rightText), 1)
	line := left + on(lipgloss.NewStyle()).Render(strings.Repeat(" ", gap)) + rightText
	return styles.Header.Width(m.width).MaxWidth(m.width).Render(line)
}

// renderTabs draws one tab per scope.
func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	parts := make([]string, 0, len(m.tabs))
	for i, scope := range m.tabs {
		label := scope.Label()
		if m.syncer != nil && m.syncer.Store().View(scope).Pending() > 0 {
			label += " •"
		}
		if i == m.active {
			parts = append(parts, styles.TabActive.Render(label))
		} else {
			parts = append(parts, styles.TabInactive.Render(label))
		}
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, " "))
}

// renderStatusBar draws the prompt while one is open, otherwise the latest
// status message, the active filter and the short help.
func (m Model) renderStatusBar() string {
	styles := m.theme.Styles()
	if m.mode == modeFilter || m.mode == modeUpload {
		return styles.Footer.Width(m.width).MaxWidth(m.width).Render(m.prompt.View())
	}

	var parts []string
	if m.status != "" {
		style := styles.Text
		switch {
		case m.statusErr:
			style = styles.DangerText
		case time.Since(m.statusAt) > StatusTTL:
			style = styles.FaintText
		}
		parts = append(parts, style.Render(m.status))
	}
	if m.syncer != nil {
		if mount, ok := m.syncer.Store().Get(m.activeScope()); ok && mount.Filter != nil {
			parts = append(parts, styles.InfoText.Render("filter: "+mount.Filter.String()+" (F clears)"))
		}
	}
	parts = append(parts, m.help.ShortHelpView(m.keys.ShortHelp()))
	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(strings.Join(parts, "  "))
}
