package v1

import (
	"encoding/json"
	"net/http"

	"github.com/shimmeringbee/logwrap"
)

type actionController struct {
	zones    zoneProvider
	settings settingsStore
	logger   logwrap.Logger
}

// volumeTestThreshold decides which direction the test nudge goes, so the
// change is audible from any starting volume.
const (
	volumeTestThreshold = 50
	volumeTestLow       = 25
	volumeTestHigh      = 75
)

type volumeTestResponse struct {
	From int
	To   int
}

func (a *actionController) volumeTest(w http.ResponseWriter, r *http.Request) {
	settings := a.settings.Settings()
	if len(settings.OutputID) == 0 {
		http.Error(w, "no zone configured", http.StatusBadRequest)
		return
	}

	output, found := a.zones.Output(settings.OutputID)
	if !found {
		http.NotFound(w, r)
		return
	}

	target := volumeTestHigh
	if output.Volume.Value > volumeTestThreshold {
		target = volumeTestLow
	}

	if err := a.zones.SetVolume(r.Context(), output.ID, target); err != nil {
		a.logger.LogError(r.Context(), "Volume test failed.", logwrap.Err(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	data, err := json.Marshal(volumeTestResponse{From: output.Volume.Value, To: target})
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}

func (a *actionController) togglePlayback(w http.ResponseWriter, r *http.Request) {
	settings := a.settings.Settings()
	if len(settings.OutputID) == 0 {
		http.Error(w, "no zone configured", http.StatusBadRequest)
		return
	}

	if err := a.zones.TogglePlayback(r.Context(), settings.OutputID); err != nil {
		a.logger.LogError(r.Context(), "Playback toggle failed.", logwrap.Err(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	http.Error(w, http.StatusText(http.StatusNoContent), http.StatusNoContent)
}
