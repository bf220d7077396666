package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/simonvc/simplebalance/internal/book"
	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/server"
	"github.com/simonvc/simplebalance/internal/store"
)

// openBook opens the configured store and hydrates the ledger from it.
// The returned close func flushes pending writes before closing the store.
func openBook(ctx context.Context, log *slog.Logger) (*book.Book, func(), error) {
	blobs, err := store.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	b, err := book.Open(ctx, blobs,
		book.WithLogger(log),
		book.WithSaveTimeout(cfg.SaveTimeout),
	)
	if err != nil {
		blobs.Close()
		return nil, nil, err
	}

	closeFn := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.SaveTimeout)
		defer cancel()
		if err := b.Close(closeCtx); err != nil {
			log.Error("final save failed", slog.Any("error", err))
		}
		blobs.Close()
	}
	return b, closeFn, nil
}

// startEmbedded serves the API on a free loopback port for the lifetime of
// ctx and returns its base URL once it answers.
func startEmbedded(ctx context.Context, log *slog.Logger) (string, func(), error) {
	b, closeBook, err := openBook(ctx, log)
	if err != nil {
		return "", nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		closeBook()
		return "", nil, err
	}

	srvCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	srv := server.New(b, ln.Addr().String(), log)
	go func() {
		defer close(done)
		if err := srv.Serve(srvCtx, ln); err != nil {
			log.Error("embedded server error", slog.Any("error", err))
		}
	}()
	stop := func() {
		cancel()
		<-done
		closeBook()
	}

	apiAddr := "http://" + ln.Addr().String()

	// Wait for server to be ready
	c := client.New(apiAddr)
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	for {
		if err := c.Ping(pingCtx); err == nil {
			break
		}
		if pingCtx.Err() != nil {
			stop()
			return "", nil, fmt.Errorf("timeout waiting for embedded server")
		}
		time.Sleep(50 * time.Millisecond)
	}
	return apiAddr, stop, nil
}
