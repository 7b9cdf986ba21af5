package state

import (
	"sync"
	"time"
)

// KnobStatus is the last telemetry reported by the knob. Battery-powered
// Zigbee devices report sporadically, so every field may be absent until the
// knob has been used at least once.
type KnobStatus struct {
	Battery     *int
	Voltage     *int
	LinkQuality *int
	LastSeen    *time.Time
}

// KnobTracker records knob telemetry as messages arrive from the bridge.
type KnobTracker struct {
	publisher EventPublisher

	lock   *sync.Mutex
	status KnobStatus
}

func NewKnobTracker(publisher EventPublisher) *KnobTracker {
	return &KnobTracker{
		publisher: publisher,
		lock:      &sync.Mutex{},
	}
}

// Seen updates the telemetry fields present in a message, marks the knob as
// seen now, and publishes the new status. Absent fields keep their previous
// values.
func (k *KnobTracker) Seen(battery *int, voltage *int, linkQuality *int) {
	k.lock.Lock()
	defer k.lock.Unlock()

	now := time.Now()
	k.status.LastSeen = &now

	if battery != nil {
		k.status.Battery = battery
	}

	if voltage != nil {
		k.status.Voltage = voltage
	}

	if linkQuality != nil {
		k.status.LinkQuality = linkQuality
	}

	k.publisher.Publish(KnobStatusUpdate{Status: k.status})
}

func (k *KnobTracker) Status() KnobStatus {
	k.lock.Lock()
	defer k.lock.Unlock()

	return k.status
}
