package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/justone/go/internal/client"
	"github.com/mcdev12/justone/go/internal/client/effects"
	"github.com/mcdev12/justone/go/internal/clientconfig"
	"github.com/mcdev12/justone/go/internal/device"
	"github.com/mcdev12/justone/go/internal/statusapi"
	"github.com/mcdev12/justone/go/internal/transport"
)

// logNotifier prints server-pushed user messages. A UI would show a modal
// here instead.
type logNotifier struct{}

func (logNotifier) Notify(text string) {
	log.Info().Str("text", text).Msg("server message")
}

// exitReloader ends the process so a supervisor restarts it with a fresh
// connect cycle.
type exitReloader struct{}

func (exitReloader) Reload() {
	log.Info().Msg("reload requested, exiting for supervisor restart")
	os.Exit(0)
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := clientconfig.Load(getEnv("JUSTONE_CONFIG", "client.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	store, err := device.OpenSQLite(cfg.DevicePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open device store")
	}
	defer store.Close()

	ch, err := dialChannel(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to game server")
	}
	defer ch.Close()

	log.Info().
		Str("transport", cfg.Transport).
		Str("room_id", cfg.RoomID).
		Msg("starting room client")

	muted, err := device.BoolFlag(context.Background(), store, device.KeyMute)
	if err != nil {
		log.Warn().Err(err).Msg("could not read mute flag")
	}

	fxOpts := []effects.Option{effects.WithMute(func() bool { return muted })}
	if len(cfg.Volumes) > 0 {
		volumes := effects.DefaultVolumes()
		for cue, v := range cfg.Volumes {
			volumes[cue] = v
		}
		fxOpts = append(fxOpts, effects.WithVolumes(volumes))
	}

	clientCfg := client.DefaultConfig()
	clientCfg.RoomID = cfg.RoomID
	c := client.New(clientCfg, ch, clockwork.NewRealClock(), store,
		client.WithDispatcher(effects.New(effects.NopPlayer{}, fxOpts...)),
		client.WithNotifier(logNotifier{}),
		client.WithReloader(exitReloader{}),
	)
	if err := c.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to start client")
	}
	defer c.Close()

	status := statusapi.New(statusapi.Config{Addr: cfg.StatusAddr}, c)
	go func() {
		if err := status.Start(); err != nil {
			log.Error().Err(err).Msg("status server failed")
		}
	}()

	// Drain countdown samples so the channel never backs up headless.
	go func() {
		for range c.CountdownSamples() {
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := status.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("status server shutdown failed")
	}

	log.Info().Msg("room client shutdown complete")
}

func dialChannel(cfg clientconfig.Config) (transport.Channel, error) {
	switch cfg.Transport {
	case "nats":
		natsCfg := transport.DefaultNATSConfig()
		natsCfg.URL = cfg.NATSURL
		natsCfg.SubjectPrefix = "room." + cfg.RoomID
		return transport.DialNATS(natsCfg)
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return transport.DialWebSocket(ctx, cfg.ServerURL, transport.DefaultWebSocketConfig())
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
