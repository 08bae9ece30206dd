// Package state holds the table currently mounted for each scope.
//
// # Overview
//
// A scope (budget, one category, child expenses) has at most one mounted
// grid.View. Loads mount a freshly rendered view and replace the old one
// completely; a failed load mounts an error view, so a table from an earlier
// load never lingers next to an error message.
//
//	Producer (syncer.Load):          Consumer (UI, poller):
//	┌──────────────────┐            ┌───────────────────┐
//	│ Fetch(scope)     │            │                   │
//	│ grid.Render()    │            │                   │
//	│ store.Mount()    │───────────→│ store.Get(scope)  │
//	└──────────────────┘  (mutex)   │ store.Dirty()     │
//	                                 └───────────────────┘
//
// # Core Types
//
// Mount:
//   - View: live table, shared with the UI so cell edits land in its tracker
//   - Filter: numeric filter the view was rendered with, if any
//   - LastError / ConsecutiveFailures: load health for the status line
//
// Store:
//   - Mount(): replace a scope's view
//   - Get(): copy of the mount (errors and filters cloned)
//   - Dirty(): any mounted view with unsaved edits
//
// The View pointer is shared, not cloned: edits made through it land in the
// tracker that a save drains.
//
// # Offline detection
//
// IsOffline reports true after two consecutive failed loads of a scope, matching
// the status-line treatment of a server that went away.
package state
