package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/BlackLightinger/rsoi-lab-03/internal/config"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := config.MustLoad("test")
	cfg.Port = "0" // ephemeral port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, http.NewServeMux(), cfg, "test", "v0")
		close(done)
	}()

	// Give the listener a moment to start, then signal shutdown.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
