package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGetLighthouseFileCtx_OK(t *testing.T) {
	srv := startHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ipfs/cid123/1.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	b, err := GetLighthouseFileCtx(context.Background(), srv.Client(), srv.URL+"/ipfs/", "cid123/1.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "ok" {
		t.Fatalf("got %q want %q", string(b), "ok")
	}
}

func TestGetLighthouseFileCtx_Timeout(t *testing.T) {
	srv := startHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := GetLighthouseFileCtx(ctx, srv.Client(), srv.URL+"/", "cid123")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if dur := time.Since(start); dur > 500*time.Millisecond {
		t.Fatalf("took too long: %v", dur)
	}
}

func TestGetLighthouseFileCtx_NoEndpoint(t *testing.T) {
	if _, err := GetLighthouseFileCtx(context.Background(), nil, "", "cid"); err == nil {
		t.Fatal("expected error without gateway")
	}
}

func TestGetURL_StatusError(t *testing.T) {
	srv := startHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := GetURL(context.Background(), srv.Client(), srv.URL+"/missing")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestReadFileHTTP(t *testing.T) {
	srv := startHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"MiniPay"}`))
	}))
	defer srv.Close()

	s := NewStorage("", "https://unused/", time.Second)
	data, err := s.ReadFile(context.Background(), srv.URL+"/1.json")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != `{"name":"MiniPay"}` {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestReadFileConcurrentOnPlainClient(t *testing.T) {
	srv := startHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	s := &Client{LighthouseURL: srv.URL + "/"}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := s.ReadFile(context.Background(), "ipfs://bafyroot/1.json")
			if err != nil {
				errs <- err
				return
			}
			if string(data) != "/bafyroot/1.json" {
				errs <- fmt.Errorf("unexpected body %q", data)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("ReadFile: %v", err)
	}
	if s.lighthouseFetcher != nil || s.ipfsFetcher != nil {
		t.Fatal("ReadFile must not modify the client")
	}
}

func startHTTPServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			if strings.Contains(msg, "operation not permitted") {
				t.Skip("network operations not permitted in sandbox")
			}
			panic(r)
		}
	}()
	return httptest.NewServer(handler)
}
