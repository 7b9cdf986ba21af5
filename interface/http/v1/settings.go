package v1

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/shimmeringbee/logwrap"

	"roonknob/state"
)

type settingsController struct {
	settings settingsStore
	zones    zoneProvider
	logger   logwrap.Logger
}

func exportSettings(s state.Settings) ExportedSettings {
	return ExportedSettings{
		ZoneIdentifier: s.OutputID,
		ZoneName:       s.OutputName,
		VolumeStep:     s.VolumeStep,
		InitialVolume:  s.InitialVolume,
		KnobTopic:      s.KnobTopic,
	}
}

func (s *settingsController) getSettings(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(exportSettings(s.settings.Settings()))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}

type updateSettingsRequest struct {
	ZoneIdentifier *string
	VolumeStep     *int
	InitialVolume  *int
	KnobTopic      *string
}

func (s *settingsController) updateSettings(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	request := updateSettingsRequest{}
	if err = json.Unmarshal(data, &request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	settings := s.settings.Settings()

	if request.ZoneIdentifier != nil {
		if len(*request.ZoneIdentifier) == 0 {
			settings.OutputID = ""
			settings.OutputName = ""
		} else {
			// Only zones the core currently reports may be selected.
			output, found := s.zones.Output(*request.ZoneIdentifier)
			if !found {
				http.NotFound(w, r)
				return
			}

			settings.OutputID = output.ID
			settings.OutputName = output.DisplayName
		}
	}

	if request.VolumeStep != nil {
		settings.VolumeStep = *request.VolumeStep
	}

	if request.InitialVolume != nil {
		settings.InitialVolume = request.InitialVolume
	}

	if request.KnobTopic != nil {
		settings.KnobTopic = *request.KnobTopic
	}

	if err := s.settings.SetSettings(settings); err != nil {
		s.logger.LogInfo(r.Context(), "Rejected settings update.", logwrap.Err(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	http.Error(w, http.StatusText(http.StatusNoContent), http.StatusNoContent)
}
