// internal/app/broker/hub_internal_test.go
package broker

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell-live/inkwell/internal/app/system/auth"
	"go.uber.org/zap"
)

func TestTrackRefusesConnectionAfterShutdown(t *testing.T) {
	h := New(nil, nil, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	// A connection whose handshake finished just before Shutdown flipped
	// the flag must be turned away at registration, never left running
	// untracked.
	late := newClient(h, nil, &auth.User{ID: "late"})
	if h.track(late) {
		t.Fatal("hub accepted a connection after shutdown began")
	}

	// The refused connection holds no waitgroup slot, so a second
	// Shutdown returns without waiting out its context.
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	if err := h.Shutdown(ctx2); err != nil {
		t.Fatalf("Shutdown after refused connection failed: %v", err)
	}
}

func TestTrackCountsLiveConnections(t *testing.T) {
	h := New(nil, nil, zap.NewNop())

	c := newClient(h, nil, &auth.User{ID: "u"})
	if !h.track(c) {
		t.Fatal("track refused a connection on an open hub")
	}
	h.disconnect(c)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}
