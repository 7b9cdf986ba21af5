package v1

import (
	"encoding/json"
	"net/http"
)

type zoneController struct {
	zones zoneProvider
}

func (z *zoneController) listZones(w http.ResponseWriter, r *http.Request) {
	outputs := z.zones.Outputs()

	apiZones := make([]ExportedZone, 0, len(outputs))
	for _, output := range outputs {
		apiZones = append(apiZones, ExportedZone{
			Identifier: output.ID,
			Name:       output.DisplayName,
			State:      output.State,
			Volume:     output.Volume.Value,
			Muted:      output.Volume.Muted,
		})
	}

	data, err := json.Marshal(apiZones)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}
