package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/grid"
	"github.com/five82/tally/internal/prefs"
	"github.com/five82/tally/internal/syncer"
)

// mode is what currently receives key presses.
type mode int

const (
	modeTable mode = iota
	modeEdit
	modeFilter
	modeAdd
	modeUpload
	modeConfirmDelete
	modeHelp
)

// Refresher schedules background refreshes of the active table.
type Refresher interface {
	Watch(scope api.Scope)
	Start(ctx context.Context, notify func())
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Syncer    *syncer.Syncer
	Poller    Refresher
	Server    string
	LogPath   string
	ThemeName string
	LastTab   string
	PrefsPath string
	Logger    *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	syncer    *syncer.Syncer
	poller    Refresher
	server    string
	logPath   string
	prefsPath string
	logger    *slog.Logger

	// UI state
	keys   keyMap
	help   help.Model
	theme  Theme
	mode   mode
	width  int
	height int
	ready  bool

	// Tabs
	tabs    []api.Scope
	active  int
	lastTab string

	// Table cursor
	cursorRow int
	cursorCol int
	rowOffset int
	colOffset int

	// Cell editor
	editor   textinput.Model
	editView *grid.View
	editRow  int
	editCol  int

	// Prompts
	prompt    textinput.Model
	form      addForm
	confirmID string

	// In-flight work
	saving  bool
	loading bool

	// Status line
	status    string
	statusErr bool
	statusAt  time.Time

	// Activity pane
	showActivity bool
	activity     viewport.Model

	quitArmed bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	editor := textinput.New()
	editor.Prompt = ""
	editor.CharLimit = 256

	prompt := textinput.New()
	prompt.CharLimit = 512

	return Model{
		ctx:       ctx,
		syncer:    opts.Syncer,
		poller:    opts.Poller,
		server:    opts.Server,
		logPath:   opts.LogPath,
		prefsPath: prefsPath,
		logger:    logger,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		theme:     GetTheme(opts.ThemeName),
		tabs:      []api.Scope{api.BudgetScope()},
		lastTab:   opts.LastTab,
		editor:    editor,
		prompt:    prompt,
		form:      newAddForm(),
		activity:  viewport.New(0, ActivityHeight),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadScopesCmd(),
		m.loadCmd(m.activeScope()),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.activity.Width = msg.Width
		m.clampCursor()
		return m, nil

	case scopesMsg:
		return m.handleScopes(msg)

	case loadedMsg:
		m.loading = false
		if msg.scope.Key() == m.activeScope().Key() {
			m.clampCursor()
		}
		if msg.err != nil {
			m.setError(msg.err)
		}
		return m, nil

	case pollMsg:
		return m.handlePoll()

	case refreshedMsg:
		m.handleRefreshed(msg)
		return m, nil

	case savedMsg:
		return m.handleSaved(msg)

	case mutatedMsg:
		return m.handleMutated(msg)

	case activityMsg:
		m.handleActivity(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.mode == modeHelp {
		return m.renderHelp()
	}
	if m.mode == modeAdd {
		return m.renderAddForm()
	}
	if m.mode == modeConfirmDelete {
		return m.renderConfirm()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	if m.showActivity {
		b.WriteString(m.renderActivity())
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatusBar())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	switch m.mode {
	case modeHelp:
		// Any key closes help
		m.mode = modeTable
		return m, nil
	case modeEdit:
		return m.handleEditKey(msg)
	case modeFilter, modeUpload:
		return m.handlePromptKey(msg)
	case modeAdd:
		return m.handleAddKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	}
	return m.handleTableKey(msg)
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Quit) {
		m.quitArmed = false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.dirty() && !m.quitArmed {
			m.quitArmed = true
			m.setStatus("Unsaved edits. Press q again to quit without saving, w to save.")
			return m, nil
		}
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(m.active + 1)

	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(m.active - 1)

	case key.Matches(msg, m.keys.Activity):
		m.showActivity = !m.showActivity
		m.clampCursor()
		if m.showActivity {
			return m, m.activityCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.cursorRow--
	case key.Matches(msg, m.keys.Down):
		m.cursorRow++
	case key.Matches(msg, m.keys.Left):
		m.cursorCol--
	case key.Matches(msg, m.keys.Right):
		m.cursorCol++
	case key.Matches(msg, m.keys.Top):
		m.cursorRow = 0
	case key.Matches(msg, m.keys.Bottom):
		if v := m.currentView(); v != nil {
			m.cursorRow = len(v.Rows) - 1
		}
	case key.Matches(msg, m.keys.PageUp):
		m.cursorRow -= m.tableHeight()
	case key.Matches(msg, m.keys.PageDown):
		m.cursorRow += m.tableHeight()

	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()

	case key.Matches(msg, m.keys.Sort):
		m.sortColumn()
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		return m.startFilter()

	case key.Matches(msg, m.keys.ClearFilter):
		return m.clearFilter()

	case key.Matches(msg, m.keys.Add):
		return m.startAdd()

	case key.Matches(msg, m.keys.Delete):
		return m.startDelete()

	case key.Matches(msg, m.keys.Save):
		return m.save()

	case key.Matches(msg, m.keys.Reload):
		if m.currentView().Pending() > 0 {
			m.setStatus("Unsaved edits. Press w to save or R to discard them and reload.")
			return m, nil
		}
		return m.reload()

	case key.Matches(msg, m.keys.Discard):
		return m.reload()

	case key.Matches(msg, m.keys.Upload):
		return m.startUpload()
	}

	m.clampCursor()
	return m, nil
}

func (m Model) switchTab(idx int) (tea.Model, tea.Cmd) {
	if len(m.tabs) == 0 {
		return m, nil
	}
	idx = (idx + len(m.tabs)) % len(m.tabs)
	if idx == m.active {
		return m, nil
	}
	m.active = idx
	m.cursorRow, m.cursorCol, m.rowOffset, m.colOffset = 0, 0, 0, 0
	scope := m.activeScope()
	if m.poller != nil {
		m.poller.Watch(scope)
	}
	if m.currentView() != nil {
		// Mounted earlier: keep it, edits included.
		m.clampCursor()
		return m, nil
	}
	m.loading = true
	return m, m.loadCmd(scope)
}

func (m *Model) sortColumn() {
	v := m.currentView()
	if v == nil || v.Failed() {
		return
	}
	var selected string
	if row, ok := v.Row(m.cursorRow); ok {
		selected = row.ID
	}
	if err := v.Sort(m.cursorCol); err != nil {
		m.setError(err)
		return
	}
	if selected != "" {
		if idx := v.Find(selected); idx >= 0 {
			m.cursorRow = idx
		}
	}
	m.clampCursor()
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	m.setStatus("Reloading " + m.activeScope().Label() + "…")
	return m, m.loadCmd(m.activeScope())
}

func (m Model) save() (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	v := m.currentView()
	if v == nil || v.Failed() {
		return m, nil
	}
	if v.Pending() == 0 {
		m.setStatus("No changes to save.")
		return m, nil
	}
	m.saving = true
	m.setStatus("Saving…")
	return m, m.saveCmd(m.activeScope())
}

func (m Model) handleScopes(msg scopesMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(msg.err)
	}
	if len(msg.scopes) == 0 {
		return m, nil
	}
	current := m.activeScope().Key()
	want := current
	if m.lastTab != "" && current == api.BudgetScope().Key() {
		want = m.lastTab
		m.lastTab = ""
	}
	m.tabs = msg.scopes
	m.active = 0
	for i, s := range m.tabs {
		if s.Key() == want {
			m.active = i
			break
		}
	}

	var cmds []tea.Cmd
	scope := m.activeScope()
	if m.poller != nil {
		m.poller.Watch(scope)
	}
	if scope.Key() != current && m.currentView() == nil {
		m.loading = true
		cmds = append(cmds, m.loadCmd(scope))
	}
	m.clampCursor()
	return m, tea.Batch(cmds...)
}

func (m Model) handlePoll() (tea.Model, tea.Cmd) {
	if m.mode == modeEdit || m.saving || m.loading {
		return m, nil
	}
	v := m.currentView()
	if v != nil && v.Pending() > 0 {
		return m, nil
	}
	cmds := []tea.Cmd{m.refreshCmd(m.activeScope(), v)}
	if m.showActivity {
		cmds = append(cmds, m.activityCmd())
	}
	return m, tea.Batch(cmds...)
}

// handleRefreshed mounts a background refresh unless the user touched the
// table since it was requested.
func (m *Model) handleRefreshed(msg refreshedMsg) {
	store := m.syncer.Store()
	current := store.View(msg.scope)
	if current != msg.prev || current.Pending() > 0 {
		return
	}
	if m.mode == modeEdit && m.editView == current {
		return
	}
	if current != nil && !current.Failed() && msg.view.Failed() {
		// Keep showing the table; the status bar reports the outage.
		store.Fail(msg.scope, msg.err)
		m.setError(msg.err)
		return
	}

	var selected string
	if row, ok := current.Row(m.cursorRow); ok && msg.scope.Key() == m.activeScope().Key() {
		selected = row.ID
	}
	if current != nil {
		if col, dir := current.SortState(); dir != grid.Unsorted {
			_ = msg.view.Sort(col)
			if dir == grid.Descending {
				_ = msg.view.Sort(col)
			}
		}
	}
	store.Mount(msg.scope, msg.view, msg.filter)
	if selected != "" {
		if idx := msg.view.Find(selected); idx >= 0 {
			m.cursorRow = idx
		}
	}
	m.clampCursor()
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if msg.err != nil {
		m.setError(msg.err)
		m.clampCursor()
		return m, nil
	}
	m.statusErr = len(msg.report.Failed()) > 0
	m.status = msg.report.Summary()
	m.statusAt = time.Now()
	for _, line := range msg.report.Details() {
		m.logger.Debug("save detail", "scope", msg.scope.Key(), "detail", line)
	}
	m.clampCursor()
	return m, nil
}

func (m Model) handleMutated(msg mutatedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.setError(msg.err)
		m.clampCursor()
		return m, nil
	}
	m.setStatus(msg.done)
	m.clampCursor()
	if msg.rescan {
		return m, m.loadScopesCmd()
	}
	return m, nil
}

func (m Model) activeScope() api.Scope {
	if m.active < 0 || m.active >= len(m.tabs) {
		return api.BudgetScope()
	}
	return m.tabs[m.active]
}

func (m Model) currentView() *grid.View {
	if m.syncer == nil {
		return nil
	}
	return m.syncer.Store().View(m.activeScope())
}

func (m Model) dirty() bool {
	return m.syncer != nil && m.syncer.Store().Dirty()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
	m.statusAt = time.Now()
}

func (m *Model) setError(err error) {
	if err == nil {
		return
	}
	m.status = err.Error()
	m.statusErr = true
	m.statusAt = time.Now()
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, LastTab: m.activeScope().Key()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	if opts.Poller != nil {
		opts.Poller.Start(m.ctx, func() { p.Send(pollMsg{}) })
	}
	_, err := p.Run()
	return err
}
