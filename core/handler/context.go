package handler

import (
	"context"
	"net/http"
)

// Context defines the contract for request contexts in the framework.
// It carries the raw request and response writer together with the
// route-bound parameters and wildcard segment captures.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	Segments(key string) []string
	SetValue(key, val any)
}
