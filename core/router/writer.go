package router

import (
	"net/http"
)

// responseWriter is a minimal wrapper around http.ResponseWriter that
// tracks whether a response has been written and injects configured
// headers at first write. Terminal operations are first-wins: a second
// WriteHeader is ignored and marks the writer as discarding, so the
// second operation's body bytes never reach the stream either.
type responseWriter struct {
	http.ResponseWriter
	status    int
	written   bool
	discard   bool
	inject    map[string]string
	overwrite bool
}

// newResponseWriter creates a new response writer wrapper. The inject
// map is merged into the header set when the status line is written;
// existing header values win unless overwrite is set.
func newResponseWriter(w http.ResponseWriter, inject map[string]string, overwrite bool) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		inject:         inject,
		overwrite:      overwrite,
	}
}

func (w *responseWriter) WriteHeader(status int) {
	if w.written {
		// A repeated status line means a second terminal operation
		// started; its body must not be appended to the first one.
		w.discard = true
		return
	}
	for k, v := range w.inject {
		if w.overwrite || w.Header().Get(k) == "" {
			w.Header().Set(k, v)
		}
	}
	w.status = status
	w.written = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.discard {
		return len(b), nil
	}
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Written returns true if WriteHeader has been called.
func (w *responseWriter) Written() bool {
	return w.written
}

// Status returns the HTTP status code.
func (w *responseWriter) Status() int {
	return w.status
}

// Flush implements http.Flusher if the underlying writer supports it.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
