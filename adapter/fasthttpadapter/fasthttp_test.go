package fasthttpadapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/iaconlabs/multiform"
	"github.com/iaconlabs/multiform/adapter"
	"github.com/iaconlabs/multiform/adapter/fasthttpadapter"
)

func newCtx(method, uri, contentType string, body []byte) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	if body != nil {
		req.SetBody(body)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

func resolve(t *testing.T, contentType string, body []byte, rawQuery string) multiform.Request {
	t.Helper()

	ctx := newCtx(fasthttp.MethodPost, "http://test/upload?"+rawQuery, contentType, body)
	req, err := fasthttpadapter.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return req
}

func TestRequestContract(t *testing.T) {
	adapter.RunRequestContract(t, resolve)
}

func TestSourceContract(t *testing.T) {
	adapter.RunSourceContract(t, func(t *testing.T, rawQuery string) multiform.ParameterSource {
		t.Helper()
		return fasthttpadapter.NewSource(newCtx(fasthttp.MethodGet, "http://test/?"+rawQuery, "", nil))
	})
}

func TestResolveRejectsNonMultipart(t *testing.T) {
	is := assert.New(t)

	ctx := newCtx(fasthttp.MethodPost, "http://test/upload", "application/json", []byte(`{}`))
	_, err := fasthttpadapter.Resolve(ctx)
	is.Error(err)
}

func TestSourceSurvivesRequestReset(t *testing.T) {
	is := assert.New(t)

	ctx := newCtx(fasthttp.MethodGet, "http://test/?a=1&b=2", "", nil)
	src := fasthttpadapter.NewSource(ctx)

	// fasthttp reuses request objects; the source must be a snapshot.
	ctx.Request.Reset()

	is.Equal("1", src.Parameter("a"))
	is.Equal([]string{"2"}, src.ParameterValues("b"))
	is.ElementsMatch([]string{"a", "b"}, src.ParameterNames())
}
