// Command xsspd serves the profile pipeline over HTTP. All settings come
// from xssp.yaml (or the built-in defaults); see the config package.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nyue/xssp/api"
	"github.com/nyue/xssp/config"
	"github.com/nyue/xssp/hssp"
	"github.com/nyue/xssp/jackhmmer"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}

	pipe := &hssp.Pipeline{
		Search: &jackhmmer.Runner{
			Path:       cfg.JackHmmer.Path,
			FastaDir:   cfg.JackHmmer.FastaDir,
			Databank:   cfg.JackHmmer.Databank,
			Iterations: cfg.JackHmmer.Iterations,
			Timeout:    cfg.JackHmmer.MaxRunTime,
		},
		Databank:          hssp.EmptyDatabank{VersionString: cfg.JackHmmer.Databank},
		MinChainLength:    cfg.Pipeline.MinChainLength,
		RetryAfterTimeout: cfg.Pipeline.RetryAfterTimeout,
	}

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     api.NewRouter(pipe),
		IdleTimeout: 60 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Server is shutting down...")

		ctx, cancel := context.WithTimeout(
			context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Could not gracefully shutdown: %v", err)
		}
		close(done)
	}()

	log.Printf("xsspd listening on %s", cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v", cfg.Server.Addr, err)
	}

	<-done
	log.Println("Server stopped")
}
