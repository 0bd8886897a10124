// Package multiform exposes multipart form data (uploaded files and form
// fields) through a uniform request interface, independent of the web engine
// that carried the request. Engine adapters resolve the multipart body into
// three maps; the core MultipartRequest merges them with the wrapped
// request's own parameters.
package multiform

import (
	"context"
	"iter"
	"net/http"

	"github.com/iaconlabs/multiform/form"
)

// ctxKey is a private type for context keys to avoid collisions with other packages.
type ctxKey string

const (
	// RequestKey stores the resolved multipart Request in the request context.
	RequestKey ctxKey = "___multiform_request___"
	// BindingKey stores bound-and-validated form data after middleware processing.
	BindingKey ctxKey = "___multiform_binding___"
)

// ParameterSource is the wrapped request: the engine-native parameter
// accessors a multipart request falls back to for everything not carried in
// the multipart body. Implementations are read-only; the adapter never
// mutates the underlying request.
type ParameterSource interface {
	// Parameter returns the first value for name, or "" when absent.
	Parameter(name string) string
	// ParameterValues returns all values for name, or nil when absent.
	ParameterValues(name string) []string
	// ParameterMap returns all native parameters.
	ParameterMap() map[string][]string
	// ParameterNames returns the distinct native parameter names.
	ParameterNames() []string
}

// Request is the capability interface downstream handlers depend on. A
// handler calling these accessors does not need to know which engine parsed
// the request, nor whether the data was resolved eagerly or lazily.
type Request interface {
	// File returns the primary file uploaded under name, or nil.
	File(name string) form.File
	// FileMap returns one entry per uploaded field name, mapped to its
	// primary file.
	FileMap() map[string]form.File
	// FileNames yields the uploaded field names; the sequence is finite and
	// restartable on every call.
	FileNames() iter.Seq[string]
	// Files returns every file uploaded under name, in submission order.
	// The list is empty, never nil, when the name is absent.
	Files(name string) []form.File
	// MultiFileMap returns the full name-to-files multimap.
	MultiFileMap() *form.FileMap
	// ContentType returns the content type of the file or form part named
	// name, or "" when unknown.
	ContentType(name string) string
	// Parameter returns the first value for name, preferring multipart
	// parameters over the wrapped request's.
	Parameter(name string) string
	// ParameterMap merges the wrapped request's parameters with the
	// multipart ones; multipart entries win on name collision.
	ParameterMap() map[string][]string
	// ParameterNames returns the deduplicated union of native and multipart
	// parameter names. Order is unspecified.
	ParameterNames() []string
	// ParameterValues returns all values for name, preferring multipart
	// parameters over the wrapped request's. Nil when neither has it.
	ParameterValues(name string) []string
	// Source returns the wrapped request.
	Source() ParameterSource
}

// WithRequest returns a shallow copy of r carrying mr in its context.
func WithRequest(r *http.Request, mr Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), RequestKey, mr))
}

// FromRequest retrieves the multipart Request stored by WithRequest or the
// Multipart middleware. ok is false when the request never went through
// multipart resolution.
func FromRequest(r *http.Request) (Request, bool) {
	mr, ok := r.Context().Value(RequestKey).(Request)
	return mr, ok
}
