package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/magonotec/magonotec-api/internal/config"
	"github.com/magonotec/magonotec-api/internal/handler"
	"github.com/magonotec/magonotec-api/internal/service/conversation"
	"github.com/magonotec/magonotec-api/internal/service/reply"
	"github.com/magonotec/magonotec-api/internal/service/session"
	"github.com/magonotec/magonotec-api/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := storage.New(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("failed to open storage at %s: %v", cfg.Storage.Path, err)
	}
	defer db.Close()

	replyClient := reply.NewClient(cfg.Reply.BaseURL, cfg.Reply.Timeout)
	if cfg.Reply.Enabled() {
		log.Printf("reply backend configured at %s", cfg.Reply.BaseURL)
	} else {
		log.Println("REPLY_API_BASE_URL not set, answering with local canned replies")
	}

	store := conversation.NewStore(db)
	ctrl := session.NewController(db, store, replyClient, cfg.Greeting.CheckInterval)
	defer ctrl.Close()

	router := handler.NewRouter(ctrl)
	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("magonotec backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
