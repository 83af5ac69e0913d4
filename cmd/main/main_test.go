package main

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-service/internal/config"
	"match-service/internal/store"
)

func TestServe_ListenErrorIsReturned(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	srv := &http.Server{Addr: busy.Addr().String(), Handler: http.NotFoundHandler()}
	err = serve(context.Background(), srv, zerolog.Nop())
	require.Error(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, zerolog.Nop()) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestRun_ListenErrorClosesStore(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	host, port, err := net.SplitHostPort(busy.Addr().String())
	require.NoError(t, err)

	cfg := config.Defaults()
	cfg.Host = host
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)
	cfg.StorePath = filepath.Join(t.TempDir(), "reports.db")
	cfg.RateLimitPerMin = 0
	cfg.ReportTTL = config.Duration{}

	require.Error(t, run(cfg, zerolog.Nop()))

	// bbolt держит файловую блокировку: повторное открытие удаётся,
	// только если run закрыл хранилище
	st, err := store.Open(cfg.StorePath)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}
