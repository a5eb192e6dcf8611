package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Context is the default request context implementation. It delegates
// context.Context methods to the request's context and exposes the
// route match metadata plus lazy body accessors.
type Context struct {
	w        http.ResponseWriter
	r        *http.Request
	params   map[string]string
	segments map[string][]string

	body     []byte
	bodyErr  error
	bodyRead bool
}

// newContext creates a Context bound to the given request and match.
func newContext(w http.ResponseWriter, r *http.Request, m Match) *Context {
	return &Context{
		w:        w,
		r:        r,
		params:   m.Params,
		segments: m.Segments,
	}
}

// Deadline delegates to the request context.
func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

// Done delegates to the request context.
func (c *Context) Done() <-chan struct{} {
	return c.r.Context().Done()
}

// Err delegates to the request context.
func (c *Context) Err() error {
	return c.r.Context().Err()
}

// Value delegates to the request context.
func (c *Context) Value(key any) any {
	return c.r.Context().Value(key)
}

// Request returns the *http.Request associated with the context.
func (c *Context) Request() *http.Request {
	return c.r
}

// ResponseWriter returns the http.ResponseWriter associated with the context.
func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}

// Param returns the value of the named route parameter, or "".
func (c *Context) Param(key string) string {
	if c.params == nil {
		return ""
	}
	return c.params[key]
}

// Segments returns the path segments captured by the named wildcard,
// or nil if the wildcard did not bind.
func (c *Context) Segments(key string) []string {
	if c.segments == nil {
		return nil
	}
	return c.segments[key]
}

// SetValue stores a value on the request context for downstream stages.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

// Body reads and caches the raw request body. The stream is consumed on
// first use; subsequent calls return the cached bytes.
func (c *Context) Body() ([]byte, error) {
	if !c.bodyRead {
		c.bodyRead = true
		c.body, c.bodyErr = io.ReadAll(c.r.Body)
		// Restore the stream so raw consumers further down still work.
		c.r.Body = io.NopCloser(bytes.NewReader(c.body))
	}
	return c.body, c.bodyErr
}

// Text returns the request body as a string.
func (c *Context) Text() (string, error) {
	b, err := c.Body()
	return string(b), err
}

// JSON decodes the request body into v.
func (c *Context) JSON(v any) error {
	b, err := c.Body()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
