// Package adapter provides the shared contract test batteries that every
// engine adapter must pass, guaranteeing that handlers observe the same
// multipart semantics regardless of the engine that parsed the request.
package adapter

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"slices"
	"testing"

	"github.com/iaconlabs/multiform"
)

// ResolveFunc builds a multiform.Request out of a canonical multipart
// payload using the engine under test. rawQuery carries the native
// parameters the engine must expose through the wrapped source.
type ResolveFunc func(t *testing.T, contentType string, body []byte, rawQuery string) multiform.Request

// SourceFunc builds a multiform.ParameterSource for the given query string
// using the engine under test.
type SourceFunc func(t *testing.T, rawQuery string) multiform.ParameterSource

// ContractForm returns the canonical multipart payload used by
// RunRequestContract: two files under "avatar", a multipart field "name"
// with value "alice", and a "notes" field with an explicit content type.
func ContractForm(t *testing.T) (contentType string, body []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, filename := range []string{"avatar-1.png", "avatar-2.png"} {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="avatar"; filename="`+filename+`"`)
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write([]byte("png-bytes-" + filename)); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}

	if err := w.WriteField("name", "alice"); err != nil {
		t.Fatalf("write field: %v", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="notes"`)
	h.Set("Content-Type", "text/markdown")
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create notes part: %v", err)
	}
	if _, err := part.Write([]byte("# hi")); err != nil {
		t.Fatalf("write notes part: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return w.FormDataContentType(), buf.Bytes()
}

// contractQuery carries the native parameters: age=30 plus a "name" that the
// multipart field must shadow.
const contractQuery = "age=30&name=native-alice"

// RunRequestContract executes the functional contract every engine adapter
// must satisfy: file lookup and ordering, parameter precedence, merge
// semantics, and absence-is-not-an-error behavior.
func RunRequestContract(t *testing.T, resolve ResolveFunc) {
	t.Run("Primary File and Ordering", func(t *testing.T) {
		req := newContractRequest(t, resolve)

		files := req.Files("avatar")
		if len(files) != 2 {
			t.Fatalf("expected 2 avatar files, got %d", len(files))
		}
		if files[0].Filename() != "avatar-1.png" || files[1].Filename() != "avatar-2.png" {
			t.Errorf("file order lost: %s, %s", files[0].Filename(), files[1].Filename())
		}

		first := req.File("avatar")
		if first == nil || first.Filename() != files[0].Filename() {
			t.Error("File must return the first file of Files")
		}

		single := req.FileMap()
		if f, ok := single["avatar"]; !ok || f.Filename() != "avatar-1.png" {
			t.Errorf("FileMap must map avatar to its primary file, got %+v", single)
		}

		names := slices.Collect(req.FileNames())
		if !slices.Contains(names, "avatar") {
			t.Errorf("FileNames missing avatar: %v", names)
		}
	})

	t.Run("File Content and Type", func(t *testing.T) {
		req := newContractRequest(t, resolve)

		f := req.File("avatar")
		if f == nil {
			t.Fatal("avatar file missing")
		}
		data, err := f.Bytes()
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if string(data) != "png-bytes-avatar-1.png" {
			t.Errorf("unexpected content: %q", data)
		}
		if f.Size() != int64(len(data)) {
			t.Errorf("Size %d does not match content length %d", f.Size(), len(data))
		}
		if req.ContentType("avatar") != "image/png" {
			t.Errorf("expected image/png, got %q", req.ContentType("avatar"))
		}
	})

	t.Run("Parameter Precedence", func(t *testing.T) {
		req := newContractRequest(t, resolve)

		if got := req.Parameter("name"); got != "alice" {
			t.Errorf("multipart field must shadow native parameter, got %q", got)
		}
		if got := req.Parameter("age"); got != "30" {
			t.Errorf("native fallback broken, got %q", got)
		}
		if got := req.ParameterValues("name"); !slices.Equal(got, []string{"alice"}) {
			t.Errorf("ParameterValues precedence broken: %v", got)
		}
	})

	t.Run("Merged Map and Names", func(t *testing.T) {
		req := newContractRequest(t, resolve)

		merged := req.ParameterMap()
		if !slices.Equal(merged["name"], []string{"alice"}) {
			t.Errorf("multipart entry must win in merged map: %v", merged["name"])
		}
		if !slices.Equal(merged["age"], []string{"30"}) {
			t.Errorf("native entry missing from merged map: %v", merged["age"])
		}

		names := req.ParameterNames()
		for _, want := range []string{"name", "age", "notes"} {
			if !slices.Contains(names, want) {
				t.Errorf("ParameterNames missing %q: %v", want, names)
			}
		}
		seen := map[string]int{}
		for _, n := range names {
			seen[n]++
			if seen[n] > 1 {
				t.Errorf("duplicate name %q in %v", n, names)
			}
		}
	})

	t.Run("Absence Is Not an Error", func(t *testing.T) {
		req := newContractRequest(t, resolve)

		if req.File("missing") != nil {
			t.Error("File for unknown name must be nil")
		}
		if files := req.Files("missing"); files == nil || len(files) != 0 {
			t.Errorf("Files for unknown name must be empty non-nil, got %v", files)
		}
		if got := req.ParameterValues("missing"); got != nil {
			t.Errorf("ParameterValues for unknown name must be nil, got %v", got)
		}
		if got := req.Parameter("missing"); got != "" {
			t.Errorf("Parameter for unknown name must be empty, got %q", got)
		}
	})
}

// RunSourceContract verifies a ParameterSource implementation against a
// known query string.
func RunSourceContract(t *testing.T, build SourceFunc) {
	src := build(t, "a=1&a=2&b=x")

	t.Run("Single and Multi Value", func(t *testing.T) {
		if got := src.Parameter("a"); got != "1" {
			t.Errorf("expected first value 1, got %q", got)
		}
		if got := src.ParameterValues("a"); !slices.Equal(got, []string{"1", "2"}) {
			t.Errorf("expected [1 2], got %v", got)
		}
		if got := src.ParameterValues("zz"); got != nil {
			t.Errorf("absent name must yield nil, got %v", got)
		}
	})

	t.Run("Map and Names", func(t *testing.T) {
		m := src.ParameterMap()
		if !slices.Equal(m["a"], []string{"1", "2"}) || !slices.Equal(m["b"], []string{"x"}) {
			t.Errorf("unexpected map: %v", m)
		}
		names := src.ParameterNames()
		slices.Sort(names)
		if !slices.Equal(names, []string{"a", "b"}) {
			t.Errorf("unexpected names: %v", names)
		}
	})
}

func newContractRequest(t *testing.T, resolve ResolveFunc) multiform.Request {
	t.Helper()
	contentType, body := ContractForm(t)
	return resolve(t, contentType, body, contractQuery)
}
