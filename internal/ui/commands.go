package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/batch"
	"github.com/five82/tally/internal/forms"
	"github.com/five82/tally/internal/grid"
	"github.com/five82/tally/internal/logtail"
)

// Messages

type scopesMsg struct {
	scopes []api.Scope
	err    error
}

type loadedMsg struct {
	scope api.Scope
	err   error
}

type pollMsg struct{}

type refreshedMsg struct {
	scope  api.Scope
	prev   *grid.View
	view   *grid.View
	filter *grid.Filter
	err    error
}

type savedMsg struct {
	scope  api.Scope
	report batch.Report
	err    error
}

type mutatedMsg struct {
	done   string
	rescan bool // tabs may have changed
	err    error
}

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func (m Model) loadScopesCmd() tea.Cmd {
	s, ctx := m.syncer, m.ctx
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		scopes, err := s.Scopes(ctx)
		return scopesMsg{scopes: scopes, err: err}
	}
}

func (m Model) loadCmd(scope api.Scope) tea.Cmd {
	s, ctx := m.syncer, m.ctx
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := s.Load(ctx, scope)
		return loadedMsg{scope: scope, err: err}
	}
}

func (m Model) loadFilteredCmd(scope api.Scope, f grid.Filter) tea.Cmd {
	s, ctx := m.syncer, m.ctx
	return func() tea.Msg {
		_, err := s.LoadFiltered(ctx, scope, f)
		return loadedMsg{scope: scope, err: err}
	}
}

func (m Model) refreshCmd(scope api.Scope, prev *grid.View) tea.Cmd {
	s, ctx := m.syncer, m.ctx
	return func() tea.Msg {
		view, filter, err := s.Refresh(ctx, scope)
		return refreshedMsg{scope: scope, prev: prev, view: view, filter: filter, err: err}
	}
}

func (m Model) saveCmd(scope api.Scope) tea.Cmd {
	s, ctx := m.syncer, m.ctx
	return func() tea.Msg {
		report, err := s.Save(ctx, scope)
		return savedMsg{scope: scope, report: report, err: err}
	}
}

func (m Model) addCmd(scope api.Scope, form forms.AddExpense) tea.Cmd {
	s, ctx := m.syncer, m.ctx
	return func() tea.Msg {
		_, err := s.AddExpense(ctx, scope, form)
		return mutatedMsg{done: "Expense added.", rescan: true, err: err}
	}
}

func (m Model) deleteCmd(scope api.Scope, rowID string) tea.Cmd {
	s, ctx := m.syncer, m.ctx
	return func() tea.Msg {
		_, err := s.DeleteRow(ctx, scope, rowID)
		return mutatedMsg{done: "Row " + rowID + " deleted.", err: err}
	}
}

func (m Model) uploadCmd(scope api.Scope, path string) tea.Cmd {
	s, ctx := m.syncer, m.ctx
	return func() tea.Msg {
		if err := s.UploadCSV(ctx, path); err != nil {
			return mutatedMsg{err: err}
		}
		_, err := s.Load(ctx, scope)
		return mutatedMsg{done: "Upload complete.", rescan: true, err: err}
	}
}

func (m Model) activityCmd() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, ActivityLines)
		return activityMsg{entries: logtail.ParseAll(lines), err: err}
	}
}
