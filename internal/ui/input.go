package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/forms"
	"github.com/five82/tally/internal/grid"
)

var errDirty = errors.New("save or discard the pending edits first (w / R)")

// Cell editor

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	v := m.currentView()
	if v == nil || v.Failed() {
		return m, nil
	}
	if m.saving {
		m.setStatus("Save in progress…")
		return m, nil
	}
	if m.cursorCol >= len(v.Columns) {
		return m.startDelete()
	}
	row, ok := v.Row(m.cursorRow)
	if !ok {
		return m, nil
	}
	cell := row.Cells[m.cursorCol]
	if !cell.Editable {
		if !v.Policy().Role.Privileged() {
			m.setStatus("Read only: editing needs the parent role.")
		} else {
			m.setStatus(fmt.Sprintf("Column %q is read only.", cell.Column))
		}
		return m, nil
	}

	m.mode = modeEdit
	m.editView = v
	m.editRow = m.cursorRow
	m.editCol = m.cursorCol
	m.editor.Width = max(columnWidths(v)[m.cursorCol], 12)
	m.editor.SetValue(cell.Text)
	m.editor.CursorEnd()
	return m, m.editor.Focus()
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopEdit()
		return m, nil
	case "enter":
		m.commitEdit()
		m.stopEdit()
		return m, nil
	case "tab":
		return m.commitAndMove(0, 1)
	case "shift+tab":
		return m.commitAndMove(0, -1)
	case "up":
		return m.commitAndMove(-1, 0)
	case "down":
		return m.commitAndMove(1, 0)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// commitEdit records the editor's text for the cell being left.
func (m *Model) commitEdit() {
	if m.editView == nil || m.editView != m.currentView() {
		m.setStatus("Table was reloaded; edit discarded.")
		return
	}
	if err := m.editView.CaptureEdit(m.editRow, m.editCol, m.editor.Value()); err != nil {
		m.setError(err)
		return
	}
	if n := m.editView.Pending(); n > 0 {
		m.setStatus(fmt.Sprintf("%d row(s) with unsaved edits. Press w to save.", n))
	}
}

func (m *Model) stopEdit() {
	m.mode = modeTable
	m.editView = nil
	m.editor.Blur()
}

// commitAndMove leaves the cell and opens the next editable cell in the
// given direction, if there is one.
func (m Model) commitAndMove(dRow, dCol int) (tea.Model, tea.Cmd) {
	m.commitEdit()
	v := m.editView
	m.stopEdit()
	if v == nil || v != m.currentView() {
		return m, nil
	}

	r, c := m.editRow, m.editCol
	for {
		r += dRow
		c += dCol
		row, ok := v.Row(r)
		if !ok || c < 0 || c >= len(v.Columns) {
			m.clampCursor()
			return m, nil
		}
		if row.Cells[c].Editable {
			m.cursorRow, m.cursorCol = r, c
			m.clampCursor()
			return m.startEdit()
		}
	}
}

// Filter and upload prompts

func (m Model) startFilter() (tea.Model, tea.Cmd) {
	v := m.currentView()
	if v == nil || v.Failed() || m.cursorCol >= len(v.Columns) {
		return m, nil
	}
	if v.Pending() > 0 {
		m.setError(errDirty)
		return m, nil
	}
	m.mode = modeFilter
	m.prompt.Prompt = fmt.Sprintf("Filter %s (lt/gt/eq or </>/= then a number): ", v.Columns[m.cursorCol])
	m.prompt.Placeholder = "gt 25"
	m.prompt.SetValue("")
	return m, m.prompt.Focus()
}

func (m Model) clearFilter() (tea.Model, tea.Cmd) {
	mount, ok := m.syncer.Store().Get(m.activeScope())
	if !ok || mount.Filter == nil {
		return m, nil
	}
	if mount.View.Pending() > 0 {
		m.setError(errDirty)
		return m, nil
	}
	m.loading = true
	m.setStatus("Filter cleared.")
	return m, m.loadCmd(m.activeScope())
}

func (m Model) startUpload() (tea.Model, tea.Cmd) {
	if m.dirty() {
		m.setError(errDirty)
		return m, nil
	}
	m.mode = modeUpload
	m.prompt.Prompt = "Upload CSV file: "
	m.prompt.Placeholder = "~/Downloads/expenses.csv"
	m.prompt.SetValue("")
	return m, m.prompt.Focus()
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeTable
		m.prompt.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		value := m.prompt.Value()
		current := m.mode
		m.mode = modeTable
		m.prompt.Blur()
		if current == modeFilter {
			return m.applyFilter(value)
		}
		return m.submitUpload(value)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) applyFilter(input string) (tea.Model, tea.Cmd) {
	v := m.currentView()
	if v == nil || m.cursorCol >= len(v.Columns) {
		return m, nil
	}
	op, threshold := splitFilterInput(input)
	f, err := grid.ParseFilter(v.Columns[m.cursorCol], op, threshold)
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.loading = true
	m.setStatus("Filter: " + f.String())
	return m, m.loadFilteredCmd(m.activeScope(), f)
}

// splitFilterInput accepts "gt 25", "gt25", ">25" or "> 25".
func splitFilterInput(input string) (op, threshold string) {
	s := strings.TrimSpace(input)
	for sym, name := range map[string]string{"<": "lt", ">": "gt", "=": "eq"} {
		if strings.HasPrefix(s, sym) {
			return name, strings.TrimSpace(strings.TrimPrefix(s, sym))
		}
	}
	if len(s) >= 2 {
		return s[:2], strings.TrimSpace(s[2:])
	}
	return s, ""
}

func (m Model) submitUpload(path string) (tea.Model, tea.Cmd) {
	path = expandHome(strings.TrimSpace(path))
	if err := forms.CheckCSVName(path); err != nil {
		m.setError(err)
		return m, nil
	}
	m.loading = true
	m.setStatus("Uploading…")
	return m, m.uploadCmd(m.activeScope(), path)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Add-expense form

const (
	fieldCategory = iota
	fieldAmount
	fieldDate
	fieldType
	fieldCount
)

type addForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newAddForm() addForm {
	var f addForm
	labels := [fieldCount]string{"Category", "Amount", "Date", "Type"}
	placeholders := [fieldCount]string{"Groceries", "12.50", "2024-03-01", "food"}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = fmt.Sprintf("%-9s ", labels[i]+":")
		in.Placeholder = placeholders[i]
		in.CharLimit = 128
		in.Width = 32
		f.inputs[i] = in
	}
	return f
}

func (f addForm) values() forms.AddExpense {
	return forms.AddExpense{
		Category:    f.inputs[fieldCategory].Value(),
		Amount:      f.inputs[fieldAmount].Value(),
		Date:        f.inputs[fieldDate].Value(),
		ExpenseType: f.inputs[fieldType].Value(),
	}
}

func (f *addForm) focusField(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (m Model) startAdd() (tea.Model, tea.Cmd) {
	if v := m.currentView(); v != nil && v.Pending() > 0 {
		m.setError(errDirty)
		return m, nil
	}
	m.form = newAddForm()
	scope := m.activeScope()
	if scope.Kind == api.ScopeCategory {
		m.form.inputs[fieldCategory].SetValue(scope.Category)
	}
	m.form.inputs[fieldDate].SetValue(time.Now().Format("2006-01-02"))
	m.mode = modeAdd
	start := fieldCategory
	if scope.Kind == api.ScopeCategory {
		start = fieldAmount
	}
	return m, m.form.focusField(start)
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeTable
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		return m, m.form.focusField(m.form.focus + 1)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.form.focusField(m.form.focus - 1)
	case key.Matches(msg, m.keys.Confirm):
		if m.form.focus < fieldCount-1 {
			return m, m.form.focusField(m.form.focus + 1)
		}
		values := m.form.values()
		if _, err := values.Validate(); err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.mode = modeTable
		m.loading = true
		m.setStatus("Adding expense…")
		return m, m.addCmd(m.activeScope(), values)
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

func (m Model) renderAddForm() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Add expense"))
	b.WriteString("\n\n")
	for i := range m.form.inputs {
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.form.err != "" {
		b.WriteString(styles.DangerText.Render(m.form.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("enter next/submit · tab move · esc cancel"))
	return m.overlay(b.String(), 48)
}

// Delete confirmation

func (m Model) startDelete() (tea.Model, tea.Cmd) {
	v := m.currentView()
	if v == nil || !v.HasActions() {
		return m, nil
	}
	if v.Pending() > 0 {
		m.setError(errDirty)
		return m, nil
	}
	row, ok := v.Row(m.cursorRow)
	if !ok || row.ID == "" {
		return m, nil
	}
	m.confirmID = row.ID
	m.mode = modeConfirmDelete
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmID
	m.mode = modeTable
	m.confirmID = ""
	switch msg.String() {
	case "y", "Y":
		m.loading = true
		m.setStatus("Deleting row " + id + "…")
		return m, m.deleteCmd(m.activeScope(), id)
	}
	m.setStatus("Delete cancelled.")
	return m, nil
}

func (m Model) renderConfirm() string {
	styles := m.theme.Styles()
	body := styles.DangerText.Render("Delete row "+m.confirmID+"?") + "\n\n" +
		styles.MutedText.Render("y delete · any other key cancels")
	return m.overlay(body, 40)
}

// overlay centers content in a bordered modal.
func (m Model) overlay(content string, width int) string {
	modal := m.theme.Styles().Modal.Width(width).Render(content)
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
