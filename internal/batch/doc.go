// Package batch flushes pending cell edits to the server.
//
// Flush drains the tracker, sends one api.UpdateRequest per dirty row and
// waits for all of them. Rows are independent: a failure is recorded in the
// row's RowResult and the other rows carry on. Once everything has settled the
// ResetPolicy decides what is cleared.
//
// The default policy, ResetAfterSettle, empties the tracker even when some rows
// failed, which drops those edits. ResetOnFullSuccess keeps failed rows pending
// so the user can save again.
package batch
