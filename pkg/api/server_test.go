package api

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestNewHTTPServer(t *testing.T) {
	server := NewHTTPServer(testConfig(), testLogger(), createTestHandlers(t))

	if server == nil {
		t.Fatal("NewHTTPServer returned nil")
	}
	if server.server == nil {
		t.Error("HTTP server not initialized")
	}
	if server.router == nil {
		t.Error("Router not initialized")
	}
}

func TestHTTPServer_StartAndShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 18080 // fixed port to avoid conflicts with other tests

	server := NewHTTPServer(cfg, testLogger(), createTestHandlers(t))

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	// Wait for the listener to come up.
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get("http://127.0.0.1:18080/health")
	if err != nil {
		t.Fatalf("Failed to connect to server: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health check status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Start() did not return after shutdown")
	}
}
