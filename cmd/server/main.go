package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Keganchiaa/fyp-bank/internal/config"
	"github.com/Keganchiaa/fyp-bank/internal/server"
)

func main() {
	cfg := config.Load()

	srv := server.NewServer(cfg)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("bangbank listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Println("shutting down...")
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatalf("shutdown failed: %v", err)
		}
	case err := <-errCh:
		log.Fatal(err)
	}
}
