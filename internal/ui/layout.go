package ui

import "time"

// Table layout limits.
const (
	// MaxColumnWidth caps a column's display width; longer values are truncated.
	MaxColumnWidth = 28

	// MinColumnWidth keeps narrow columns clickable by eye.
	MinColumnWidth = 4

	// ColumnGap is the space between columns.
	ColumnGap = 2

	// chromeLines counts header, tabs, column header and status bar lines.
	chromeLines = 5
)

// Activity pane limits.
const (
	// ActivityLines is how many log lines the activity pane reads.
	ActivityLines = 300

	// ActivityHeight is the pane height when shown below the table.
	ActivityHeight = 8
)

// Timing constants.
const (
	// StatusTTL is how long a status message stays before it fades.
	StatusTTL = 8 * time.Second
)
