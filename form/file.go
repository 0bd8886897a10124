// Package form models the data carried by a multipart form: uploaded files
// and the multi-value map that groups them by field name.
package form

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

// File is a single uploaded file as received in a multipart form.
// Implementations are read-only views over content that has already been
// materialized by the engine that parsed the request body.
type File interface {
	// Name returns the form field name the file was submitted under.
	Name() string
	// Filename returns the original filename sent by the client, which may
	// be empty and must never be trusted as a filesystem path.
	Filename() string
	// ContentType returns the declared or detected MIME type of the file.
	ContentType() string
	// Size returns the length of the file content in bytes.
	Size() int64
	// Open returns a fresh reader over the file content.
	Open() (io.ReadCloser, error)
	// Bytes returns the full file content.
	Bytes() ([]byte, error)
}

// Memory is a File held entirely in memory.
type Memory struct {
	name        string
	filename    string
	contentType string
	data        []byte
}

var _ File = (*Memory)(nil)

// NewMemory builds an in-memory file. If contentType is empty the type is
// sniffed from the content itself.
func NewMemory(name, filename, contentType string, data []byte) *Memory {
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	return &Memory{
		name:        name,
		filename:    filename,
		contentType: contentType,
		data:        data,
	}
}

func (m *Memory) Name() string        { return m.name }
func (m *Memory) Filename() string    { return m.filename }
func (m *Memory) ContentType() string { return m.contentType }
func (m *Memory) Size() int64         { return int64(len(m.data)) }

func (m *Memory) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

func (m *Memory) Bytes() ([]byte, error) {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

// headerFile adapts a stdlib *multipart.FileHeader, keeping the content
// wherever the engine left it (memory or temp file).
type headerFile struct {
	name   string
	header *multipart.FileHeader
}

// NewHeaderFile wraps a *multipart.FileHeader produced by mime/multipart
// under the given field name.
func NewHeaderFile(name string, fh *multipart.FileHeader) File {
	return &headerFile{name: name, header: fh}
}

func (h *headerFile) Name() string     { return h.name }
func (h *headerFile) Filename() string { return h.header.Filename }
func (h *headerFile) Size() int64      { return h.header.Size }

func (h *headerFile) ContentType() string {
	if ct := h.header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	data, err := h.Bytes()
	if err != nil {
		return ""
	}
	return mimetype.Detect(data).String()
}

func (h *headerFile) Open() (io.ReadCloser, error) {
	f, err := h.header.Open()
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (h *headerFile) Bytes() ([]byte, error) {
	f, err := h.header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
