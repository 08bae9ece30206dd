package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/five82/tally/internal/grid"
)

const (
	ellipsis     = "…"
	actionLabel  = "✕ delete"
	sortAscMark  = " ▲"
	sortDescMark = " ▼"
)

// columnWidths returns the display width of every header column, measured
// over the header text and every cell, clamped to the layout limits.
func columnWidths(v *grid.View) []int {
	header := v.Header()
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h) + runewidth.StringWidth(sortAscMark)
	}
	for _, r := range v.Rows {
		for i, c := range r.Cells {
			if w := runewidth.StringWidth(c.Text); w > widths[i] {
				widths[i] = w
			}
		}
	}
	if v.HasActions() {
		last := len(widths) - 1
		if w := runewidth.StringWidth(actionLabel); w > widths[last] {
			widths[last] = w
		}
	}
	for i, w := range widths {
		widths[i] = min(max(w, MinColumnWidth), MaxColumnWidth)
	}
	return widths
}

// fit truncates s to width display cells and pads it on the right.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, ellipsis)
	}
	return runewidth.FillRight(s, width)
}

// visibleEnd returns the exclusive end of the columns starting at offset that
// fit into avail cells. At least one column is always visible.
func visibleEnd(widths []int, offset, avail int) int {
	used := 0
	end := offset
	for end < len(widths) {
		need := widths[end]
		if end > offset {
			need += ColumnGap
		}
		if used+need > avail && end > offset {
			break
		}
		used += need
		end++
	}
	return end
}

// tableHeight is the number of data rows that fit on screen.
func (m Model) tableHeight() int {
	h := m.height - chromeLines
	if m.showActivity {
		h -= ActivityHeight + 1
	}
	return max(h, 1)
}

// clampCursor keeps the cursor inside the current view.
func (m *Model) clampCursor() {
	v := m.currentView()
	if v == nil || v.Failed() {
		m.cursorRow, m.cursorCol = 0, 0
		m.rowOffset, m.colOffset = 0, 0
		return
	}
	m.cursorRow = min(max(m.cursorRow, 0), max(len(v.Rows)-1, 0))
	m.cursorCol = min(max(m.cursorCol, 0), max(len(v.Header())-1, 0))
	m.scrollIntoView()
}

// scrollIntoView moves the row and column offsets so the cursor is visible.
func (m *Model) scrollIntoView() {
	v := m.currentView()
	if v == nil || v.Failed() {
		return
	}
	height := m.tableHeight()
	if m.cursorRow < m.rowOffset {
		m.rowOffset = m.cursorRow
	}
	if m.cursorRow >= m.rowOffset+height {
		m.rowOffset = m.cursorRow - height + 1
	}

	widths := columnWidths(v)
	if m.cursorCol < m.colOffset {
		m.colOffset = m.cursorCol
	}
	for m.colOffset < m.cursorCol && m.cursorCol >= visibleEnd(widths, m.colOffset, m.width) {
		m.colOffset++
	}
}

// renderTable draws the column header and the visible rows of the view.
func (m Model) renderTable() string {
	styles := m.theme.Styles()
	v := m.currentView()
	height := m.tableHeight()

	switch {
	case v == nil:
		return padLines(styles.MutedText.Render("Loading…"), height+1)
	case v.Failed():
		return padLines(styles.DangerText.Render(v.ErrorText()), height+1)
	case len(v.Header()) == 0:
		return padLines(styles.MutedText.Render("No data."), height+1)
	}

	widths := columnWidths(v)
	end := visibleEnd(widths, m.colOffset, m.width)
	gap := strings.Repeat(" ", ColumnGap)
	sortCol, sortDir := v.SortState()

	lines := make([]string, 0, height+1)

	header := v.Header()
	cols := make([]string, 0, end-m.colOffset)
	for c := m.colOffset; c < end; c++ {
		label := header[c]
		if c == sortCol {
			if sortDir == grid.Descending {
				label += sortDescMark
			} else {
				label += sortAscMark
			}
		}
		cols = append(cols, fit(label, widths[c]))
	}
	lines = append(lines, styles.ColumnHeader.Width(m.width).Render(strings.Join(cols, gap)))

	if len(v.Rows) == 0 {
		lines = append(lines, styles.MutedText.Render("No rows."))
		return padLines(strings.Join(lines, "\n"), height+1)
	}

	last := min(m.rowOffset+height, len(v.Rows))
	for r := m.rowOffset; r < last; r++ {
		lines = append(lines, m.renderRow(v, r, widths, end, styles))
	}
	return padLines(strings.Join(lines, "\n"), height+1)
}

func (m Model) renderRow(v *grid.View, r int, widths []int, end int, styles Styles) string {
	row := v.Rows[r]
	selected := r == m.cursorRow
	var b strings.Builder
	for c := m.colOffset; c < end; c++ {
		if c > m.colOffset {
			gap := strings.Repeat(" ", ColumnGap)
			if selected {
				gap = styles.SelectedRow.Render(gap)
			}
			b.WriteString(gap)
		}

		var text string
		style := styles.Cell
		if c < len(row.Cells) {
			cell := row.Cells[c]
			text = cell.Text
			if !cell.Editable {
				style = styles.LockedCell
			}
			if v.Dirty(r, c) {
				style = styles.DirtyCell
			}
		} else {
			text = actionLabel
			style = styles.ActionCell
		}

		if m.mode == modeEdit && m.editView == v && selected && c == m.cursorCol {
			b.WriteString(m.editorCell(widths[c]))
			continue
		}
		switch {
		case selected && c == m.cursorCol:
			style = styles.CursorCell
		case selected:
			style = style.Background(styles.SelectedRow.GetBackground())
		}
		b.WriteString(style.Render(fit(text, widths[c])))
	}
	return b.String()
}

// editorCell renders the inline cell editor, widened to at least the column.
func (m Model) editorCell(width int) string {
	out := m.editor.View()
	if w := lipgloss.Width(out); w < width {
		out += strings.Repeat(" ", width-w)
	}
	return out
}

// padLines pads s with empty lines up to n lines.
func padLines(s string, n int) string {
	count := strings.Count(s, "\n") + 1
	if count >= n {
		return s
	}
	return s + strings.Repeat("\n", n-count)
}
