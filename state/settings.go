package state

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

type SettingsError string

func (s SettingsError) Error() string {
	return string(s)
}

const (
	ErrInvalidVolumeStep    = SettingsError("volume step must be between 1 and 20")
	ErrInvalidInitialVolume = SettingsError("initial volume must be between 0 and 100")
	ErrEmptyKnobTopic       = SettingsError("knob topic must not be empty")
)

const (
	MinimumVolumeStep = 1
	MaximumVolumeStep = 20

	DefaultVolumeStep = 5
	DefaultKnobTopic  = "zigbee2mqtt/TuyaKnob"
)

// Settings is the runtime configuration record: which output the knob
// controls and how aggressively rotation changes its volume.
type Settings struct {
	OutputID   string
	OutputName string

	VolumeStep    int
	InitialVolume *int

	KnobTopic string
}

// DefaultSettings returns the record used until the owner selects a zone via
// the web interface.
func DefaultSettings() Settings {
	return Settings{
		VolumeStep: DefaultVolumeStep,
		KnobTopic:  DefaultKnobTopic,
	}
}

func (s Settings) Validate() error {
	if s.VolumeStep < MinimumVolumeStep || s.VolumeStep > MaximumVolumeStep {
		return ErrInvalidVolumeStep
	}

	if s.InitialVolume != nil && (*s.InitialVolume < 0 || *s.InitialVolume > 100) {
		return ErrInvalidInitialVolume
	}

	if len(s.KnobTopic) == 0 {
		return ErrEmptyKnobTopic
	}

	return nil
}

var (
	bucketSettings = []byte("settings")
	bucketPairing  = []byte("pairing")
	keySettings    = []byte("current")
	keyToken       = []byte("token")
)

// Store persists the settings record and the media core pairing token in a
// bolt database, and announces settings replacements on the event bus.
type Store struct {
	db        *bolt.DB
	publisher EventPublisher

	lock    *sync.Mutex
	current Settings
}

func NewStore(path string, publisher EventPublisher) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketSettings, bucketPairing} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings buckets: %w", err)
	}

	s := &Store{
		db:        db,
		publisher: publisher,
		lock:      &sync.Mutex{},
		current:   DefaultSettings(),
	}

	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSettings).Get(keySettings)
		if data == nil {
			return nil
		}

		loaded := DefaultSettings()
		if err := json.Unmarshal(data, &loaded); err != nil {
			return fmt.Errorf("failed to parse persisted settings: %w", err)
		}

		s.current = loaded
		return nil
	})
}

func (s *Store) Settings() Settings {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.current
}

// SetSettings validates, persists and publishes the replacement record.
func (s *Store) SetSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSettings).Put(keySettings, data)
	})
	if err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}

	s.current = settings
	s.publisher.Publish(SettingsChanged{Settings: settings})

	return nil
}

// Token returns the media core pairing token, or an empty string when the
// extension has never been paired.
func (s *Store) Token() string {
	var token string

	s.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(bucketPairing).Get(keyToken); data != nil {
			token = string(data)
		}
		return nil
	})

	return token
}

func (s *Store) SetToken(token string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPairing).Put(keyToken, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("failed to persist pairing token: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
