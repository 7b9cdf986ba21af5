package main

import (
	"context"
	"fmt"
	"net/http"

	gorillamux "github.com/gorilla/mux"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/nest"

	"roonknob/config"
	v1 "roonknob/interface/http/v1"
	"roonknob/interface/mqtt"
	"roonknob/media"
	"roonknob/state"
)

func startHTTPInterface(cfg config.HTTPConfig, mediaClient *media.Client, store *state.Store, tracker *state.KnobTracker, broker *mqtt.Interface, l logwrap.Logger) func() error {
	wl := logwrap.New(nest.Wrap(l))
	wl.AddOptionsToLogger(logwrap.Source("http"))

	r := gorillamux.NewRouter()

	if containsString(cfg.EnabledAPIs, "v1") {
		wl.LogInfo(context.Background(), "Mounting v1 API endpoint on /api/v1.")

		v1Router := v1.ConstructRouter(mediaClient, store, tracker, broker, wl, cfg.APIKey)
		// Use http.StripPrefix to obscure the real path from the v1 api code, though this will cause issues if we
		// ever issue redirects from the API.
		r.PathPrefix("/api/v1").Handler(http.StripPrefix("/api/v1", v1Router))
	}

	r.PathPrefix("/").Handler(v1.ConstructUIRouter())

	bindAddress := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: bindAddress, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			wl.LogError(context.Background(), "Failed to start http server.", logwrap.Err(err))
		}
	}()

	return func() error {
		return srv.Shutdown(context.Background())
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}

	return false
}
