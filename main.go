// main.go
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"nilakkal-parking/config"
	"nilakkal-parking/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.InitLogger(cfg.LogDir); err != nil {
		logger.Warn.Printf("File logging disabled: %v", err)
	}
	logger.SetLogLevel(cfg.AppEnv)

	// Set Gin to release mode for production
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Error.Fatalf("Failed to open backup store: %v", err)
	}

	app := newApp(cfg, store, newPublisher(cfg), rand.New(rand.NewSource(time.Now().UnixNano()))) // #nosec G404
	ctx, cancel := context.WithCancel(context.Background())
	app.Start(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error.Fatalf("Failed to run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info.Println("Shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("Server shutdown failed: %v", err)
	}
	cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("Failed to close backup store: %v", err)
	}
}
