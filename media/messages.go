package media

import (
	"encoding/json"
)

// The core speaks JSON messages over a single websocket. Requests carry a
// client-assigned id which the matching response echoes; events are
// unsolicited and carry no id.
type message struct {
	Type   string          `json:"type"`
	ID     uint64          `json:"id,omitempty"`
	Name   string          `json:"name,omitempty"`
	Status string          `json:"status,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
}

const (
	messageRequest  = "request"
	messageResponse = "response"
	messageEvent    = "event"
)

const (
	statusOK      = "ok"
	statusPending = "pending"
)

const (
	requestRegister       = "registry/register"
	requestSubscribeZones = "zones/subscribe"
	requestChangeVolume   = "zones/volume"
	requestMute           = "zones/mute"
	requestControl        = "zones/control"

	eventZonesChanged = "zones/changed"
)

type registerRequest struct {
	ExtensionID    string `json:"extension_id"`
	DisplayName    string `json:"display_name"`
	DisplayVersion string `json:"display_version"`
	InstanceID     string `json:"instance_id"`
	Token          string `json:"token,omitempty"`
}

type registerResponse struct {
	Token string `json:"token"`
}

type zonesBody struct {
	Outputs []Output `json:"outputs"`
}

const (
	volumeAbsolute = "absolute"

	muteOn  = "mute"
	muteOff = "unmute"

	controlPlay      = "play"
	controlPause     = "pause"
	controlPlayPause = "playpause"
)

type changeVolumeRequest struct {
	OutputID string `json:"output_id"`
	How      string `json:"how"`
	Value    int    `json:"value"`
}

type muteRequest struct {
	OutputID string `json:"output_id"`
	How      string `json:"how"`
}

type controlRequest struct {
	ZoneID  string `json:"zone_id"`
	Control string `json:"control"`
}
