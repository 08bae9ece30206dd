// Package edits tracks unsaved cell edits for one rendered table.
//
// A Tracker maps row id to column to the value the user left in the cell.
// Values are recorded when the user leaves a cell, never per keystroke, so the
// tracker only ever holds completed edits. Recording the same cell twice keeps
// the last value.
//
// Each rendered table owns its own Tracker. Rendering a new dataset builds a
// new Tracker, which is how stale edits from a previous render are discarded.
//
//	t := edits.NewTracker()
//	_ = t.Record("7", "amount", "12.50")
//	pending := t.Drain() // {"7": {"amount": "12.50"}}
//	t.Reset()
package edits
