package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ControllerConfig is the static configuration: where the broker, the media
// core and the web interface live. The runtime record (zone, step, topic) is
// managed through the web interface instead and lives in the data directory.
type ControllerConfig struct {
	Knob  KnobConfig
	Media MediaConfig
	HTTP  HTTPConfig
}

type KnobConfig struct {
	Server string

	TLS         *MQTTTLS
	Credentials *MQTTCredentials

	QOS         byte
	Retained    bool
	TopicPrefix string
}

type MQTTTLS struct {
	IgnoreSystemRootCertificates bool
	SkipCertificateVerification  bool
	Key                          string
	Cert                         string
	CACert                       string
}

type MQTTCredentials struct {
	Username string
	Password string
}

type MediaConfig struct {
	Server      string
	ExtensionID string
}

type HTTPConfig struct {
	Port        int
	APIKey      string
	EnabledAPIs []string
}

func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Knob: KnobConfig{
			Server:      "tcp://localhost:1883",
			Retained:    true,
			TopicPrefix: "roonknob",
		},
		Media: MediaConfig{
			Server:      "ws://localhost:9330/api",
			ExtensionID: "roonknob",
		},
		HTTP: HTTPConfig{
			Port:        8081,
			EnabledAPIs: []string{"v1"},
		},
	}
}

const DefaultFilePermissions = 0600

// LoadControllerConfig reads the configuration file, writing a default one
// first when none exists so the owner has something to edit.
func LoadControllerConfig(path string) (ControllerConfig, error) {
	cfg := DefaultControllerConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		data, err := json.MarshalIndent(cfg, "", "    ")
		if err != nil {
			return cfg, fmt.Errorf("failed to marshal default configuration: %w", err)
		}

		if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
			return cfg, fmt.Errorf("failed to write default configuration file '%s': %w", path, err)
		}

		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("failed to read configuration file '%s': %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse configuration file '%s': %w", path, err)
	}

	return cfg, nil
}
