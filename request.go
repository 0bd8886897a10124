package multiform

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/iaconlabs/multiform/form"
)

// ErrNotInitialized is the fault raised (as a panic value, possibly wrapped)
// when multipart data is accessed on a lazily-constructed MultipartRequest
// whose initializer is missing, failed, or did not populate. It signals a
// wiring error, not a bad request; Recovery translates it at the HTTP
// boundary.
var ErrNotInitialized = errors.New("multipart request not initialized")

// Initializer populates a lazily-constructed MultipartRequest on first
// access, by calling Populate from InitializeMultipart. It is the extension
// point for adapters that resolve multipart data on demand instead of
// up front.
type Initializer interface {
	InitializeMultipart(r *MultipartRequest) error
}

// MultipartRequest is the default Request implementation. It has two states:
// unpopulated and populated. Populate is the only transition between them,
// invoked either eagerly by New or on first access via the Initializer.
// Instances are request-scoped and not safe for concurrent use.
type MultipartRequest struct {
	src  ParameterSource
	init Initializer

	populated    bool
	files        *form.FileMap
	params       map[string][]string
	contentTypes map[string]string
}

var _ Request = (*MultipartRequest)(nil)

// New wraps src with fully resolved multipart data. The file map is
// deep-copied; params and contentTypes are stored as given and must not be
// mutated afterwards by the caller.
func New(src ParameterSource, files *form.FileMap, params map[string][]string, contentTypes map[string]string) *MultipartRequest {
	r := &MultipartRequest{src: src}
	r.Populate(files, params, contentTypes)
	return r
}

// NewLazy wraps src without multipart data; init runs on first access to
// any multipart accessor. A nil init makes every such access panic with
// ErrNotInitialized.
func NewLazy(src ParameterSource, init Initializer) *MultipartRequest {
	return &MultipartRequest{src: src, init: init}
}

// Populate moves the request into the populated state. It is a no-op once
// populated: the three maps are set exactly once for the life of the
// request. Nil maps normalize to empty ones.
func (r *MultipartRequest) Populate(files *form.FileMap, params map[string][]string, contentTypes map[string]string) {
	if r.populated {
		return
	}
	if files == nil {
		files = form.NewFileMap()
	}
	if params == nil {
		params = map[string][]string{}
	}
	if contentTypes == nil {
		contentTypes = map[string]string{}
	}
	r.files = files.Clone()
	r.params = params
	r.contentTypes = contentTypes
	r.populated = true
}

// File returns the primary file for name, or nil.
func (r *MultipartRequest) File(name string) form.File {
	return r.multipartFiles().First(name)
}

// FileMap returns one entry per uploaded field name, mapped to its primary file.
func (r *MultipartRequest) FileMap() map[string]form.File {
	return r.multipartFiles().SingleValueMap()
}

// FileNames yields the uploaded field names in submission order.
func (r *MultipartRequest) FileNames() iter.Seq[string] {
	return r.multipartFiles().Names()
}

// Files returns every file for name in submission order; empty, never nil,
// when absent.
func (r *MultipartRequest) Files(name string) []form.File {
	return r.multipartFiles().Get(name)
}

// MultiFileMap returns a copy of the full file multimap.
func (r *MultipartRequest) MultiFileMap() *form.FileMap {
	return r.multipartFiles().Clone()
}

// ContentType returns the content type for the file or form part named
// name. A file's own declared type wins; otherwise the content-type map
// supplied at resolution is consulted.
func (r *MultipartRequest) ContentType(name string) string {
	if f := r.File(name); f != nil {
		return f.ContentType()
	}
	return r.multipartContentTypes()[name]
}

// Parameter returns the first multipart value for name, "" when the
// multipart entry exists but is empty, or the wrapped request's value when
// there is no multipart entry at all.
func (r *MultipartRequest) Parameter(name string) string {
	if values, ok := r.multipartParams()[name]; ok {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	return r.src.Parameter(name)
}

// ParameterMap overlays the multipart parameters onto the wrapped request's
// map. Multipart entries win on collision; this is deliberate and
// asymmetric with Parameter, which never reaches the wrapped request for
// names the multipart body carries.
func (r *MultipartRequest) ParameterMap() map[string][]string {
	merged := make(map[string][]string)
	maps.Copy(merged, r.src.ParameterMap())
	maps.Copy(merged, r.multipartParams())
	return merged
}

// ParameterNames returns the deduplicated union of native and multipart
// parameter names, in no particular order.
func (r *MultipartRequest) ParameterNames() []string {
	seen := make(map[string]struct{})
	for _, name := range r.src.ParameterNames() {
		seen[name] = struct{}{}
	}
	for name := range r.multipartParams() {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names
}

// ParameterValues returns the multipart values for name, or the wrapped
// request's when there is no multipart entry. Nil when neither has it.
func (r *MultipartRequest) ParameterValues(name string) []string {
	if values, ok := r.multipartParams()[name]; ok {
		return values
	}
	return r.src.ParameterValues(name)
}

// Source returns the wrapped request.
func (r *MultipartRequest) Source() ParameterSource { return r.src }

func (r *MultipartRequest) multipartFiles() *form.FileMap {
	r.initialize()
	return r.files
}

func (r *MultipartRequest) multipartParams() map[string][]string {
	r.initialize()
	return r.params
}

func (r *MultipartRequest) multipartContentTypes() map[string]string {
	r.initialize()
	return r.contentTypes
}

// initialize runs the Initializer if the request is still unpopulated. The
// fault is deterministic: a missing, failing, or non-populating initializer
// panics again on every subsequent access.
func (r *MultipartRequest) initialize() {
	if r.populated {
		return
	}
	if r.init == nil {
		panic(ErrNotInitialized)
	}
	if err := r.init.InitializeMultipart(r); err != nil {
		panic(fmt.Errorf("%w: %v", ErrNotInitialized, err))
	}
	if !r.populated {
		panic(ErrNotInitialized)
	}
}
