// Package api is the HTTP client for the household expense tracker's JSON
// endpoints.
//
// # Endpoints
//
// Every call is a POST. Reads return an Envelope, mutations return an Ack:
//
//	/sync_budget              whole budget table            -> Envelope
//	/view_category_expenses   {"category": name}            -> Envelope
//	/view_child_expenses      no body                       -> Envelope
//	/add_expense              ExpenseInput                  -> Ack
//	/delete_expense           {"id": id}                    -> Ack
//	/update_table             UpdateRequest                 -> Ack
//	/open_file                multipart "file" (CSV)        -> redirect
//
// # Errors
//
// Three kinds of failure come back from a call:
//
//   - transport: wrapped as "execute request: ..." or "api <path> returned status N"
//   - decoding: "decode response: ..."
//   - application: *ServerError carrying the server's message when success=false
//
// None of them are retried. Callers render the message and let the user act again.
//
// # Request tracing
//
// Each request carries a fresh X-Request-ID (uuid v4). The id is logged with the
// path, status and duration so a slow save can be matched against server logs.
//
// # Usage
//
//	client, err := api.NewClient("127.0.0.1:5001", api.WithSession(cookie))
//	if err != nil {
//		return err
//	}
//	env, err := client.Fetch(ctx, api.CategoryScope("Groceries"))
package api
