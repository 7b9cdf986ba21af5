package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	lw "github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/golog"
	"github.com/shimmeringbee/logwrap/impl/nest"

	"roonknob/config"
	"roonknob/knob"
	"roonknob/state"
)

func main() {
	ctx := context.Background()
	l := lw.New(golog.Wrap(log.New(os.Stderr, "", log.LstdFlags)))

	l.LogInfo(ctx, "Roon Knob Controller - Starting...")

	directories := enumerateDirectories(ctx, l)

	l.LogInfo(ctx, "Directory enumeration complete.", lw.Datum("directories", directories))

	l, err := configureLogging(filepath.Join(directories.Config, "logging"), directories.Log, l)
	if err != nil {
		l.LogFatal(ctx, "Failed to configure logging.", lw.Err(err))
	}

	cfg, err := config.LoadControllerConfig(filepath.Join(directories.Config, "controller.json"))
	if err != nil {
		l.LogFatal(ctx, "Failed to load controller configuration.", lw.Err(err))
	}

	bus := state.NewEventBus()

	store, err := state.NewStore(filepath.Join(directories.Data, "roonknob.db"), bus)
	if err != nil {
		l.LogFatal(ctx, "Failed to open settings store.", lw.Err(err))
	}

	tracker := state.NewKnobTracker(bus)

	l.LogInfo(ctx, "Starting media core client.", lw.Datum("server", cfg.Media.Server))
	mediaClient, shutdownMedia := startMediaClient(cfg.Media, store, bus, l)

	knobLogger := lw.New(nest.Wrap(l))
	knobLogger.AddOptionsToLogger(lw.Source("knob"))

	translator := &knob.Translator{
		Control:   mediaClient,
		Settings:  store,
		Publisher: bus,
		Logger:    knobLogger,
	}

	l.LogInfo(ctx, "Starting control interface.", lw.Datum("server", cfg.Knob.Server))
	broker, shutdownControl, err := startControlInterface(cfg.Knob, translator, tracker, store, mediaClient, bus, l)
	if err != nil {
		l.LogFatal(ctx, "Failed to start control interface.", lw.Err(err))
	}

	l.LogInfo(ctx, "Starting web interface.", lw.Datum("port", cfg.HTTP.Port))
	shutdownHTTP := startHTTPInterface(cfg.HTTP, mediaClient, store, tracker, broker, l)

	l.LogInfo(ctx, "Controller ready.")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, os.Kill)

	s := <-signalCh
	l.LogInfo(ctx, "Signal received, shutting down.", lw.Datum("signal", s.String()))

	l.LogInfo(ctx, "Shutting down web interface.")
	if err := shutdownHTTP(); err != nil {
		l.LogError(ctx, "Failed to shutdown web interface.", lw.Err(err))
	}

	l.LogInfo(ctx, "Shutting down control interface.")
	if err := shutdownControl(); err != nil {
		l.LogError(ctx, "Failed to shutdown control interface.", lw.Err(err))
	}

	l.LogInfo(ctx, "Shutting down media core client.")
	if err := shutdownMedia(); err != nil {
		l.LogError(ctx, "Failed to shutdown media core client.", lw.Err(err))
	}

	l.LogInfo(ctx, "Closing settings store.")
	if err := store.Close(); err != nil {
		l.LogError(ctx, "Failed to close settings store.", lw.Err(err))
	}

	l.LogInfo(ctx, "Shut down complete.")
}
