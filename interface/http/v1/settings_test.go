package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"roonknob/media"
	"roonknob/state"
)

func Test_settingsController_getSettings(t *testing.T) {
	t.Run("exports the stored settings", func(t *testing.T) {
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		initial := 30
		mss.On("Settings").Return(state.Settings{
			OutputID:      "out-1",
			OutputName:    "Library",
			VolumeStep:    3,
			InitialVolume: &initial,
			KnobTopic:     "zigbee2mqtt/TuyaKnob",
		})

		router := newTestRouter(&MockZoneProvider{}, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("GET", "/settings", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"ZoneIdentifier":"out-1","ZoneName":"Library","VolumeStep":3,"InitialVolume":30,"KnobTopic":"zigbee2mqtt/TuyaKnob"}`, rr.Body.String())
	})
}

func Test_settingsController_updateSettings(t *testing.T) {
	t.Run("selecting a known zone stores its identifier and name", func(t *testing.T) {
		mzp := &MockZoneProvider{}
		defer mzp.AssertExpectations(t)
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(state.DefaultSettings())
		mzp.On("Output", "out-2").Return(media.Output{ID: "out-2", DisplayName: "Kitchen"}, true)

		expected := state.DefaultSettings()
		expected.OutputID = "out-2"
		expected.OutputName = "Kitchen"
		mss.On("SetSettings", expected).Return(nil)

		router := newTestRouter(mzp, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("PATCH", "/settings", strings.NewReader(`{"ZoneIdentifier":"out-2"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("selecting an unknown zone is rejected without storing", func(t *testing.T) {
		mzp := &MockZoneProvider{}
		defer mzp.AssertExpectations(t)
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(state.DefaultSettings())
		mzp.On("Output", "out-9").Return(media.Output{}, false)

		router := newTestRouter(mzp, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("PATCH", "/settings", strings.NewReader(`{"ZoneIdentifier":"out-9"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mss.AssertNotCalled(t, "SetSettings")
	})

	t.Run("an empty zone identifier clears the selected zone", func(t *testing.T) {
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		current := state.DefaultSettings()
		current.OutputID = "out-1"
		current.OutputName = "Library"
		mss.On("Settings").Return(current)

		expected := state.DefaultSettings()
		mss.On("SetSettings", expected).Return(nil)

		router := newTestRouter(&MockZoneProvider{}, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("PATCH", "/settings", strings.NewReader(`{"ZoneIdentifier":""}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("omitted fields keep their stored values", func(t *testing.T) {
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		current := state.DefaultSettings()
		current.OutputID = "out-1"
		current.OutputName = "Library"
		mss.On("Settings").Return(current)

		expected := current
		expected.VolumeStep = 2
		mss.On("SetSettings", expected).Return(nil)

		router := newTestRouter(&MockZoneProvider{}, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("PATCH", "/settings", strings.NewReader(`{"VolumeStep":2}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("a store validation failure is reported as a bad request", func(t *testing.T) {
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(state.DefaultSettings())

		expected := state.DefaultSettings()
		expected.VolumeStep = 0
		mss.On("SetSettings", expected).Return(state.ErrInvalidVolumeStep)

		router := newTestRouter(&MockZoneProvider{}, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("PATCH", "/settings", strings.NewReader(`{"VolumeStep":0}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("a malformed body is rejected", func(t *testing.T) {
		router := newTestRouter(&MockZoneProvider{}, &MockSettingsStore{}, fixedBroker{}, "")

		req, _ := http.NewRequest("PATCH", "/settings", strings.NewReader(`not json`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
