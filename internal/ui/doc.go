// Package ui provides the terminal interface for tally.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds all UI state and is updated
// with value receivers; anything that talks to the server runs as a tea.Cmd
// that calls into syncer.Syncer and reports back with a message type
// (loadedMsg, savedMsg, refreshedMsg, ...). Tables live in state.Store, so a
// tab switch reuses the view it left, pending edits included.
//
// # Package Structure
//
//   - app.go: Model, Update/View, tab switching, sort, save and refresh handling
//   - commands.go: messages and the commands that produce them
//   - table.go: column sizing, scrolling and table rendering
//   - input.go: cell editor, filter and upload prompts, add form, delete confirm
//   - header.go: title line, tabs and status bar
//   - activity.go: log pane fed by logtail
//   - help.go, keys.go, theme.go, layout.go: help overlay, bindings, palettes, limits
//
// # Editing
//
// Enter opens the inline editor on an editable cell. Leaving the cell with
// enter, tab or an arrow records the trimmed text in the view's edit tracker;
// esc leaves it untouched. w sends every pending row as one batch and the
// status bar shows the outcome.
//
// # Background Refresh
//
// The poller goroutine only sends pollMsg. Update decides whether a refresh
// may run: never while a cell is open, a save or load is in flight, or the
// table has pending edits. A refresh result is mounted only if the table it
// was requested for is still the one on screen.
package ui
