package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/huddlechat/huddle-server/internal/config"
	"github.com/huddlechat/huddle-server/internal/core"
	"github.com/huddlechat/huddle-server/internal/store"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// newServerForStore spins up a full server (hub included) over the given
// store and returns the httptest wrapper.
func newServerForStore(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()

	hub := core.NewHub(st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, st, config.Config{
		Addr:              ":0",
		HistoryLimit:      50,
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, nopLogger())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}
