package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/config"
	"github.com/lab1702/starweb/internal/persistence"
	"github.com/lab1702/starweb/internal/server"
)

type options struct {
	Addr     string `short:"a" long:"addr" env:"STARWEB_ADDR" default:":8080" description:"HTTP listen address"`
	Config   string `short:"c" long:"config" env:"STARWEB_CONFIG" default:"config.yaml" description:"Path to the YAML config file"`
	DataDir  string `short:"d" long:"data-dir" env:"STARWEB_DATA_DIR" default:"./data" description:"Directory for gamestate snapshots and backups"`
	LogLevel string `short:"l" long:"log-level" env:"STARWEB_LOG_LEVEL" default:"info" description:"debug, info, warn, or error"`
}

func main() {
	_ = godotenv.Load()

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	cfg := config.Default()
	if raw, err := os.ReadFile(opts.Config); err == nil {
		decoded, err := config.Decode(raw)
		if err != nil {
			log.Fatal().Err(err).Str("path", opts.Config).Msg("invalid config")
		}
		for _, w := range decoded.Warnings {
			log.Warn().Str("path", opts.Config).Msg(w)
		}
		cfg = decoded
	} else {
		log.Warn().Str("path", opts.Config).Msg("config file not found, using built-in defaults")
	}

	persist, err := persistence.New(opts.DataDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize persistence")
	}

	srv, err := server.New(cfg, persist, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize game server")
	}
	go srv.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	httpSrv := &http.Server{
		Addr:         opts.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", opts.Addr).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Stop(); err != nil {
		log.Error().Err(err).Msg("error saving state during shutdown")
	}
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down http server")
	}
	log.Info().Msg("stopped")
}
