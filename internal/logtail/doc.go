// Package logtail reads the end of tally's log file and parses its records
// for the activity pane.
//
// # Reading
//
// Read uses a ring buffer of maxLines entries, so memory stays bounded no
// matter how large the file has grown. A missing file is not an error; the
// log may simply not have been written yet. A non-positive maxLines reads the
// whole file.
//
//	lines, err := logtail.Read(cfg.LogPath(), 200)
//
// # Parsing
//
// Parse understands both slog handlers tally can be configured with:
//
//	time=2025-10-08T21:01:05.123+02:00 level=INFO msg="table loaded" component=syncer rows=3
//	{"time":"2025-10-08T21:01:05Z","level":"INFO","msg":"table loaded","component":"syncer","rows":3}
//
// The time, level, msg and component keys become Entry fields. Everything
// else is kept as Attrs, in file order for text records and sorted by key for
// JSON records. Lines that are not records (panics, stray output) come back
// with Level empty and the whole line as Message.
package logtail
