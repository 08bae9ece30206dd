// Package app provides the orchestration layer for the tally application.
//
// # Overview
//
// This package wires together configuration, logging, the API client, the
// sync engine, polling and the UI. It is the composition root: every
// dependency is built here and handed down.
//
// # Architecture
//
//  1. Load configuration from ~/.config/tally/config.toml and TALLY_* variables
//  2. Open the log file and install the slog default logger
//  3. Build the HTTP client, the batch saver and the syncer over one state.Store
//  4. Load UI preferences (theme, last tab)
//  5. Start the TUI with a Poller and block until the user exits or ctx ends
//
// # Components
//
//   - app.go: Run, the startup sequence
//   - poller.go: background timer that asks the UI to refresh the active table
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()      Read config and env
//	       ├─────> logging.Setup()    File-backed slog
//	       ├─────> api.NewClient()    HTTP client
//	       ├─────> syncer.New()       Fetch, render, mount
//	       └─────> ui.Run()           Start TUI (blocks)
//
//	Poller Loop:
//	┌─────────────────────────────────────────┐
//	│ Poller.Start() goroutine                │
//	│  └─> notify()  ─> p.Send(pollMsg)       │
//	│      └─> UI decides, then Refresh()     │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// The poller never fetches or mounts anything. It only wakes the UI every
// RefreshEvery (default 30 seconds); the UI skips the refresh while the user
// has unsaved edits or a request is in flight. While loads of the watched
// table keep failing the delay doubles per failure, capped at 30 seconds.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration or reset policy
//   - Log file cannot be opened
//   - Malformed server address
//
// Everything after startup is recoverable: failed loads show in place of the
// table, failed saves are reported per row, and the poller keeps going.
package app
