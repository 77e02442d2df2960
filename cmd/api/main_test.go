package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/springlegal/website/backend/internal/config"
)

func TestBaseURL(t *testing.T) {
	cases := map[string]string{
		":3001":          "http://localhost:3001",
		"127.0.0.1:9000": "http://127.0.0.1:9000",
	}
	for addr, want := range cases {
		if got := baseURL(addr); got != want {
			t.Fatalf("baseURL(%q) = %q, want %q", addr, got, want)
		}
	}
}

func TestRunServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runServer err: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runServer did not return after cancel")
	}
}

func TestStartServerReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := &config.Config{Server: config.ServerConfig{Addr: ln.Addr().String(), SiteName: "Spring Legal Consultancy"}}
	if err := startServer(context.Background(), cfg, false, http.NotFoundHandler()); err == nil {
		t.Fatal("expected an error for an address already in use")
	}
}
