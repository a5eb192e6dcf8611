package router

// Issue describes a single validation failure.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Validator is the capability the dispatch layer consults before the
// middleware pipeline runs. SafeParse never reports failure by error:
// it returns the parsed value on success, or a non-empty issue list.
type Validator interface {
	SafeParse(raw []byte) (any, []Issue)
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(raw []byte) (any, []Issue)

// SafeParse implements Validator.
func (f ValidatorFunc) SafeParse(raw []byte) (any, []Issue) {
	return f(raw)
}

// ValidatedBodyKey is the context key under which the parsed body
// produced by a route's body validator is stored.
type ValidatedBodyKey struct{}

// ValidatedQueryKey is the context key under which the parsed query
// produced by a route's query validator is stored.
type ValidatedQueryKey struct{}

// validationError is the 400 payload rendered when a route validator
// rejects the request.
type validationError struct {
	Error  string  `json:"error"`
	Issues []Issue `json:"issues"`
}
