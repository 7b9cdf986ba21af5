package v1

import (
	"encoding/json"
	"net/http"
)

type statusController struct {
	zones    zoneProvider
	settings settingsStore
	knob     knobStatusProvider
	broker   brokerStatus
}

func (s *statusController) getStatus(w http.ResponseWriter, r *http.Request) {
	settings := s.settings.Settings()
	knobStatus := s.knob.Status()

	status := ExportedStatus{
		MQTTConnected:  s.broker.Online(),
		CoreConnected:  s.zones.Connected(),
		ZoneIdentifier: settings.OutputID,
		ZoneName:       settings.OutputName,
		Knob: ExportedKnobStatus{
			Battery:     knobStatus.Battery,
			Voltage:     knobStatus.Voltage,
			LinkQuality: knobStatus.LinkQuality,
			LastSeen:    knobStatus.LastSeen,
		},
	}

	if output, found := s.zones.Output(settings.OutputID); found {
		volume := output.Volume.Value
		status.CurrentVolume = &volume
		status.PlaybackState = output.State
	}

	data, err := json.Marshal(status)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}

func (s *statusController) getHealth(w http.ResponseWriter, r *http.Request) {
	health := ExportedHealth{
		Status:        "ok",
		MQTTConnected: s.broker.Online(),
		CoreConnected: s.zones.Connected(),
	}

	if !health.MQTTConnected || !health.CoreConnected {
		health.Status = "degraded"
	}

	data, err := json.Marshal(health)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}
