// Command cardscand serves card rectification and scanning over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"card-rectifier/internal/config"
	"card-rectifier/internal/rectify"
	"card-rectifier/internal/scan"
	"card-rectifier/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		os.Stderr.WriteString("ERROR: " + err.Error() + "\n")
		os.Exit(2)
	}
	log := cfg.Logger(os.Stderr, false)

	rect, err := rectify.New(cfg.Rectify, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create rectifier")
	}
	lk, closeLookup, err := cfg.OpenLookup()
	if err != nil {
		log.Fatal().Err(err).Msg("open catalog")
	}
	defer closeLookup()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(rect, scan.New(rect, cfg.OpenRecognizer(), lk, log), log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Str("recognizer", cfg.Recognizer).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("run server")
	}
}
