// Package httpadapter bridges net/http requests into multiform. Source
// exposes the request's query parameters as the wrapped parameter source;
// Resolver maps the multipart body — parsed by mime/multipart, never by this
// package — into the three maps a MultipartRequest is built from.
package httpadapter

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/iaconlabs/multiform"
	"github.com/iaconlabs/multiform/form"
)

const (
	defaultMaxPartSize  = 10 << 20 // 10 MiB per part
	defaultMaxValueSize = 1 << 20  // 1 MiB per non-file value
)

// ErrNotMultipart is returned by Resolve for requests whose Content-Type is
// not multipart/form-data.
var ErrNotMultipart = errors.New("request is not multipart/form-data")

// ErrPartTooLarge is returned when a single part exceeds the configured limit.
var ErrPartTooLarge = errors.New("multipart part exceeds size limit")

// Source adapts an *http.Request's query string to multiform.ParameterSource.
// The body is deliberately left alone: form values carried in a multipart
// body belong to the resolver, not to the wrapped source.
type Source struct {
	query url.Values
}

var _ multiform.ParameterSource = (*Source)(nil)

// NewSource builds a Source over r's query parameters.
func NewSource(r *http.Request) *Source {
	return &Source{query: r.URL.Query()}
}

func (s *Source) Parameter(name string) string { return s.query.Get(name) }

func (s *Source) ParameterValues(name string) []string {
	values, ok := s.query[name]
	if !ok {
		return nil
	}
	return values
}

func (s *Source) ParameterMap() map[string][]string {
	out := make(map[string][]string, len(s.query))
	for name, values := range s.query {
		out[name] = values
	}
	return out
}

func (s *Source) ParameterNames() []string {
	names := make([]string, 0, len(s.query))
	for name := range s.query {
		names = append(names, name)
	}
	return names
}

// Resolver turns multipart net/http requests into populated
// MultipartRequest values. It walks the part stream so that explicit
// Content-Type headers on non-file parts are retained, which
// http.Request.ParseMultipartForm discards.
type Resolver struct {
	// MaxPartSize caps each file part, MaxValueSize each non-file value.
	// Zero means the package default.
	MaxPartSize  int64
	MaxValueSize int64
}

// NewResolver returns a Resolver with default size limits.
func NewResolver() *Resolver { return &Resolver{} }

// Resolve reads the multipart body of r and wraps r in a MultipartRequest.
// The body is consumed; call Resolve once per request.
func (res *Resolver) Resolve(r *http.Request) (*multiform.MultipartRequest, error) {
	if !isMultipart(r) {
		return nil, ErrNotMultipart
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("open multipart body: %w", err)
	}

	maxPart := res.MaxPartSize
	if maxPart <= 0 {
		maxPart = defaultMaxPartSize
	}
	maxValue := res.MaxValueSize
	if maxValue <= 0 {
		maxValue = defaultMaxValueSize
	}

	files := form.NewFileMap()
	params := make(map[string][]string)
	contentTypes := make(map[string]string)

	for {
		part, err := reader.NextPart()
		// A bare io.EOF means the final boundary was seen; wrapped EOFs are
		// truncated bodies and must fail.
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart part: %w", err)
		}

		name := part.FormName()
		if name == "" {
			_ = part.Close()
			continue
		}

		if part.FileName() == "" {
			data, err := readPart(part, maxValue)
			if err != nil {
				return nil, fmt.Errorf("part %q: %w", name, err)
			}
			params[name] = append(params[name], string(data))
			if ct := part.Header.Get("Content-Type"); ct != "" {
				contentTypes[name] = ct
			}
			continue
		}

		data, err := readPart(part, maxPart)
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", name, err)
		}
		files.Add(name, form.NewMemory(name, part.FileName(), part.Header.Get("Content-Type"), data))
	}

	return multiform.New(NewSource(r), files, params, contentTypes), nil
}

// readPart reads a part fully, failing once it grows past limit.
func readPart(part io.ReadCloser, limit int64) ([]byte, error) {
	defer func() { _ = part.Close() }()
	data, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrPartTooLarge
	}
	return data, nil
}

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "multipart/")
}
