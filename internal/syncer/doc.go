// Package syncer keeps mounted tables in step with the server.
//
// Every operation that changes server state is followed by a full reload of
// the affected scope: the rendered table is replaced, never patched. A load
// that fails still mounts a view, one that shows the error text in place of
// the table.
//
// Save is the exception. It flushes the view's pending edits through a
// batch.Saver and only reloads when the tracker ended up empty, so rows kept
// pending under the full_success reset policy remain visible and editable.
package syncer
