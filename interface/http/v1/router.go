package v1

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shimmeringbee/logwrap"

	"roonknob/media"
	"roonknob/state"
)

type zoneProvider interface {
	Outputs() []media.Output
	Output(id string) (media.Output, bool)
	Connected() bool
	SetVolume(ctx context.Context, outputID string, value int) error
	TogglePlayback(ctx context.Context, outputID string) error
}

type settingsStore interface {
	Settings() state.Settings
	SetSettings(settings state.Settings) error
}

type knobStatusProvider interface {
	Status() state.KnobStatus
}

type brokerStatus interface {
	Online() bool
}

func ConstructRouter(zones zoneProvider, settings settingsStore, knobStatus knobStatusProvider, broker brokerStatus, l logwrap.Logger, apiKey string) http.Handler {
	r := mux.NewRouter()

	zc := zoneController{zones: zones}
	sc := settingsController{settings: settings, zones: zones, logger: l}
	stc := statusController{zones: zones, settings: settings, knob: knobStatus, broker: broker}
	ac := actionController{zones: zones, settings: settings, logger: l}

	r.HandleFunc("/zones", zc.listZones).Methods("GET")

	r.HandleFunc("/settings", sc.getSettings).Methods("GET")
	r.HandleFunc("/settings", sc.updateSettings).Methods("PATCH")

	r.HandleFunc("/status", stc.getStatus).Methods("GET")
	r.HandleFunc("/health", stc.getHealth).Methods("GET")

	r.HandleFunc("/actions/volume-test", ac.volumeTest).Methods("POST")
	r.HandleFunc("/actions/playback", ac.togglePlayback).Methods("POST")

	r.Use(apiKeyMiddleware(apiKey))

	return r
}
