package response

import (
	"net/http"

	"github.com/relayhttp/relay/core/handler"
)

// Stream creates a response that hands the body writer to fn, flushing
// after fn returns when the underlying writer supports it. Use it for
// chunked or long-lived payloads where buffering the whole body is not
// an option.
func Stream(contentType string, fn func(w http.ResponseWriter) error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(http.StatusOK)
		err := fn(w)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		return err
	}
}
