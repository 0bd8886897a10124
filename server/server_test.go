package server_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/iaconlabs/multiform"
	"github.com/iaconlabs/multiform/adapter/httpadapter"
	"github.com/iaconlabs/multiform/middleware"
	"github.com/iaconlabs/multiform/server"
)

func startServer(t *testing.T, h http.Handler) (addr string, srv *server.Server) {
	t.Helper()

	srv = server.New(server.Config{Addr: "127.0.0.1:0"}, h)
	go func() {
		_ = srv.Start(t.Context())
	}()

	addr = srv.Addr()
	if addr == "" {
		t.Fatal("server did not become ready")
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return addr, srv
}

// End to end: a multipart upload travels through Recovery, Multipart
// resolution, and a handler using the uniform accessors.
func TestServerServesUploads(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, ok := multiform.FromRequest(r)
		if !ok {
			http.Error(w, "no multipart view", http.StatusBadRequest)
			return
		}
		f := req.File("report")
		fmt.Fprintf(w, "%s|%s|%s", req.Parameter("owner"), req.Parameter("age"), f.Filename())
	})

	chain := multiform.Recovery(false)(middleware.Multipart(httpadapter.NewResolver())(handler))
	addr, _ := startServer(t, chain)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("owner", "alice")
	part, err := w.CreateFormFile("report", "q3.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("a,b,c"))
	_ = w.Close()

	resp, err := http.Post("http://"+addr+"/upload?age=30", w.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "alice|30|q3.csv" {
		t.Errorf("unexpected response: %s", body)
	}
}

func TestServerGracefulShutdown(t *testing.T) {
	requestStarted := make(chan struct{})

	slowHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(requestStarted)
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("done"))
	})

	addr, srv := startServer(t, slowHandler)

	clientResult := make(chan string, 1)
	go func() {
		resp, err := http.Get("http://" + addr)
		if err != nil {
			clientResult <- "error: " + err.Error()
			return
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		clientResult <- string(body)
	}()

	<-requestStarted

	// Shutdown while the request is in flight: it must still complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if got := <-clientResult; got != "done" {
		t.Errorf("in-flight request was dropped: %s", got)
	}
}
