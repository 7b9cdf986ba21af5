package v1

import (
	"time"
)

type ExportedZone struct {
	Identifier string
	Name       string
	State      string
	Volume     int
	Muted      bool
}

type ExportedSettings struct {
	ZoneIdentifier string
	ZoneName       string
	VolumeStep     int
	InitialVolume  *int
	KnobTopic      string
}

type ExportedKnobStatus struct {
	Battery     *int
	Voltage     *int
	LinkQuality *int
	LastSeen    *time.Time
}

type ExportedStatus struct {
	MQTTConnected bool
	CoreConnected bool

	ZoneIdentifier string
	ZoneName       string
	CurrentVolume  *int
	PlaybackState  string

	Knob ExportedKnobStatus
}

type ExportedHealth struct {
	Status        string
	MQTTConnected bool
	CoreConnected bool
}
