package multiform_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iaconlabs/multiform"
	"github.com/iaconlabs/multiform/form"
)

func TestWithRequestRoundTrip(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/upload", nil)

	mr := multiform.New(&stubSource{}, form.NewFileMap(), nil, nil)
	r2 := multiform.WithRequest(r, mr)

	if r == r2 {
		t.Error("WithRequest must return a new request instance")
	}

	got, ok := multiform.FromRequest(r2)
	if !ok {
		t.Fatal("FromRequest must find the stored request")
	}
	if got != multiform.Request(mr) {
		t.Error("FromRequest returned a different request")
	}
}

func TestFromRequestMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/plain", nil)

	if _, ok := multiform.FromRequest(r); ok {
		t.Error("FromRequest must report ok=false for unresolved requests")
	}
}
