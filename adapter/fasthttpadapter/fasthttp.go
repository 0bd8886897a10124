// Package fasthttpadapter bridges fasthttp requests into multiform. The
// multipart body is parsed by fasthttp itself; this package only maps the
// resulting *multipart.Form into the maps a MultipartRequest is built from.
//
// fasthttp's parsed form does not retain per-value Content-Type headers, so
// the resolved content-type map covers files only.
package fasthttpadapter

import (
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/iaconlabs/multiform"
	"github.com/iaconlabs/multiform/form"
)

// Source adapts a fasthttp request's query args to multiform.ParameterSource.
// It snapshots the args at construction time: fasthttp reuses request
// objects, and the source must stay valid for the adapter's lifetime.
type Source struct {
	params map[string][]string
	names  []string
}

var _ multiform.ParameterSource = (*Source)(nil)

// NewSource builds a Source over ctx's query arguments.
func NewSource(ctx *fasthttp.RequestCtx) *Source {
	s := &Source{params: make(map[string][]string)}
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		name := string(key)
		if _, ok := s.params[name]; !ok {
			s.names = append(s.names, name)
		}
		s.params[name] = append(s.params[name], string(value))
	})
	return s
}

func (s *Source) Parameter(name string) string {
	values := s.params[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (s *Source) ParameterValues(name string) []string {
	values, ok := s.params[name]
	if !ok {
		return nil
	}
	return values
}

func (s *Source) ParameterMap() map[string][]string {
	out := make(map[string][]string, len(s.params))
	for name, values := range s.params {
		out[name] = values
	}
	return out
}

func (s *Source) ParameterNames() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Resolve maps ctx's parsed multipart form into a MultipartRequest wrapping
// ctx's query arguments. Returns fasthttp's own error when the request is
// not multipart.
func Resolve(ctx *fasthttp.RequestCtx) (*multiform.MultipartRequest, error) {
	mf, err := ctx.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}

	files := form.NewFileMap()
	for name, headers := range mf.File {
		for _, fh := range headers {
			files.Add(name, form.NewHeaderFile(name, fh))
		}
	}

	params := make(map[string][]string, len(mf.Value))
	for name, values := range mf.Value {
		params[name] = values
	}

	return multiform.New(NewSource(ctx), files, params, nil), nil
}
