package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCheckWebPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := context.Background()

	if err := CheckWebPage(ctx, srv.URL+"/", time.Second); err != nil {
		t.Errorf("Expected the page to answer, got %v", err)
	}
	if err := CheckWebPage(ctx, srv.URL+"/missing", time.Second); err == nil {
		t.Error("Expected an error for a 404 page")
	}
}

func TestCheckWebPageUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if err := CheckWebPage(context.Background(), url, 500*time.Millisecond); err == nil {
		t.Error("Expected an error for a closed server")
	}
}

func TestPingService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if err := PingService(srv.URL, time.Second); err != nil {
		t.Errorf("Expected the service to be reachable, got %v", err)
	}
	if err := PingService("://bad", time.Second); err == nil {
		t.Error("Expected an error for an invalid URL")
	}
}
