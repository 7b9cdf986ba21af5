package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/nest"

	"roonknob/config"
	"roonknob/media"
	"roonknob/state"
)

const controllerVersion = "1.0.0"

const MaximumZoneSelectionTime = 5 * time.Second

func startMediaClient(cfg config.MediaConfig, store *state.Store, bus *state.EventBus, l logwrap.Logger) (*media.Client, func() error) {
	wl := logwrap.New(nest.Wrap(l))
	wl.AddOptionsToLogger(logwrap.Source("media"))

	client := media.New(cfg.Server, media.Extension{
		ID:             cfg.ExtensionID,
		DisplayName:    "Roon Knob Controller",
		DisplayVersion: controllerVersion,
		InstanceID:     uuid.NewString(),
	}, store, bus, wl)

	client.Start()

	stop := make(chan bool, 1)
	go superviseZoneSelection(client, store, bus, wl, stop)

	return client, func() error {
		stop <- true
		client.Stop()
		return nil
	}
}

// superviseZoneSelection keeps the stored zone selection aligned with what the
// core reports: the zone is re-resolved by identifier then name whenever the
// zone list changes, and the configured initial volume is applied once per
// core connection.
func superviseZoneSelection(client *media.Client, store *state.Store, bus *state.EventBus, l logwrap.Logger, stop chan bool) {
	ch := make(chan any, 100)
	bus.Subscribe(ch)
	defer bus.Unsubscribe(ch)

	initialVolumeApplied := false

	for {
		select {
		case e := <-ch:
			switch event := e.(type) {
			case media.ConnectionChanged:
				if !event.Connected {
					initialVolumeApplied = false
				}
			case media.OutputsUpdated:
				resolveSelectedZone(client, store, l)

				if !initialVolumeApplied {
					initialVolumeApplied = applyInitialVolume(client, store, l)
				}
			}
		case <-stop:
			return
		}
	}
}

func resolveSelectedZone(client *media.Client, store *state.Store, l logwrap.Logger) {
	settings := store.Settings()
	if len(settings.OutputID) == 0 && len(settings.OutputName) == 0 {
		return
	}

	output, found := client.ResolveOutput(settings.OutputID, settings.OutputName)
	if !found {
		l.LogWarn(context.Background(), "Selected zone is not reported by the media core.", logwrap.Datum("zone", settings.OutputName))
		return
	}

	if output.ID == settings.OutputID && output.DisplayName == settings.OutputName {
		return
	}

	l.LogInfo(context.Background(), "Selected zone re-resolved.", logwrap.Datum("zone", output.DisplayName), logwrap.Datum("identifier", output.ID))

	settings.OutputID = output.ID
	settings.OutputName = output.DisplayName

	if err := store.SetSettings(settings); err != nil {
		l.LogError(context.Background(), "Failed to store re-resolved zone.", logwrap.Err(err))
	}
}

func applyInitialVolume(client *media.Client, store *state.Store, l logwrap.Logger) bool {
	settings := store.Settings()
	if settings.InitialVolume == nil || len(settings.OutputID) == 0 {
		return true
	}

	if _, found := client.Output(settings.OutputID); !found {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), MaximumZoneSelectionTime)
	defer cancel()

	if err := client.SetVolume(ctx, settings.OutputID, *settings.InitialVolume); err != nil {
		l.LogError(ctx, "Failed to apply initial volume to zone.", logwrap.Datum("zone", settings.OutputName), logwrap.Err(err))
		return false
	}

	l.LogInfo(ctx, "Applied initial volume to zone.", logwrap.Datum("zone", settings.OutputName), logwrap.Datum("volume", *settings.InitialVolume))
	return true
}
