package response

import (
	"net/http"

	"github.com/relayhttp/relay/core/handler"
)

// Normalize converts an arbitrary handler result into one canonical
// response, in precedence order: an already-built Response is forwarded
// as-is; an error becomes the canonical JSON error body with its
// declared status or 500; nil becomes an empty 204; anything else is
// JSON-serialized with 200. Integration points that bridge untyped
// handlers go through this; typed handlers return a Response directly.
func Normalize(result any) handler.Response {
	switch v := result.(type) {
	case handler.Response:
		return v
	case func(http.ResponseWriter, *http.Request) error:
		return v
	case error:
		httpErr := convertToHTTPError(v)
		return JSONWithStatus(httpErr, httpErr.Status)
	case nil:
		return NoContent()
	default:
		return JSON(v)
	}
}
