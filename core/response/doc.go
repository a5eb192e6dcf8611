// Package response provides constructors for the framework's canonical
// HTTP responses: plain text, JSON, bytes, redirects, streams, empty
// statuses, and structured JSON errors.
//
// Every constructor returns a handler.Response, a deferred render
// function executed by the router once the middleware pipeline has
// resolved. Errors cross the wire as:
//
//	{"error": "...", "code": "...", "hint": "...", "exit_code": 2}
//
// with the HTTP status taken from the error's declared status.
// HTTPError implements error, so handlers can return predefined values
// directly:
//
//	return response.Error(response.ErrNotFound.WithHint("check the id"))
package response
