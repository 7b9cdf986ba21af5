package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadControllerConfig(t *testing.T) {
	t.Run("a missing file is created with defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "controller.json")

		cfg, err := LoadControllerConfig(path)
		assert.NoError(t, err)
		assert.Equal(t, DefaultControllerConfig(), cfg)

		data, err := os.ReadFile(path)
		assert.NoError(t, err)

		written := ControllerConfig{}
		assert.NoError(t, json.Unmarshal(data, &written))
		assert.Equal(t, DefaultControllerConfig(), written)
	})

	t.Run("an existing file overrides defaults, keeping unset fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "controller.json")
		content := []byte(`{
  "Knob": {
    "Server": "tcp://broker.local:1883",
    "Credentials": {
      "Username": "knob",
      "Password": "secret"
    }
  },
  "HTTP": {
    "Port": 9000
  }
}`)
		assert.NoError(t, os.WriteFile(path, content, 0600))

		cfg, err := LoadControllerConfig(path)
		assert.NoError(t, err)

		assert.Equal(t, "tcp://broker.local:1883", cfg.Knob.Server)
		assert.Equal(t, "knob", cfg.Knob.Credentials.Username)
		assert.Equal(t, 9000, cfg.HTTP.Port)

		// Unset stanzas keep their defaults.
		assert.Equal(t, "ws://localhost:9330/api", cfg.Media.Server)
		assert.Equal(t, "roonknob", cfg.Knob.TopicPrefix)
	})

	t.Run("an unparsable file errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "controller.json")
		assert.NoError(t, os.WriteFile(path, []byte(`{`), 0600))

		_, err := LoadControllerConfig(path)
		assert.Error(t, err)
	})
}
