package v1

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"roonknob/media"
	"roonknob/state"
)

func selectedZoneSettings(id string) state.Settings {
	settings := state.DefaultSettings()
	settings.OutputID = id
	settings.OutputName = "Library"
	return settings
}

func Test_actionController_volumeTest(t *testing.T) {
	t.Run("nudges a quiet zone up", func(t *testing.T) {
		mzp := &MockZoneProvider{}
		defer mzp.AssertExpectations(t)
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(selectedZoneSettings("out-1"))
		mzp.On("Output", "out-1").Return(media.Output{ID: "out-1", Volume: media.Volume{Value: 40}}, true)
		mzp.On("SetVolume", mock.Anything, "out-1", 75).Return(nil)

		router := newTestRouter(mzp, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("POST", "/actions/volume-test", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"From":40,"To":75}`, rr.Body.String())
	})

	t.Run("nudges a loud zone down", func(t *testing.T) {
		mzp := &MockZoneProvider{}
		defer mzp.AssertExpectations(t)
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(selectedZoneSettings("out-1"))
		mzp.On("Output", "out-1").Return(media.Output{ID: "out-1", Volume: media.Volume{Value: 80}}, true)
		mzp.On("SetVolume", mock.Anything, "out-1", 25).Return(nil)

		router := newTestRouter(mzp, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("POST", "/actions/volume-test", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"From":80,"To":25}`, rr.Body.String())
	})

	t.Run("rejects the request when no zone is configured", func(t *testing.T) {
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(state.DefaultSettings())

		router := newTestRouter(&MockZoneProvider{}, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("POST", "/actions/volume-test", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("reports when the selected zone is no longer available", func(t *testing.T) {
		mzp := &MockZoneProvider{}
		defer mzp.AssertExpectations(t)
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(selectedZoneSettings("out-1"))
		mzp.On("Output", "out-1").Return(media.Output{}, false)

		router := newTestRouter(mzp, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("POST", "/actions/volume-test", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("reports a failed core command as a bad gateway", func(t *testing.T) {
		mzp := &MockZoneProvider{}
		defer mzp.AssertExpectations(t)
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(selectedZoneSettings("out-1"))
		mzp.On("Output", "out-1").Return(media.Output{ID: "out-1", Volume: media.Volume{Value: 40}}, true)
		mzp.On("SetVolume", mock.Anything, "out-1", 75).Return(errors.New("core went away"))

		router := newTestRouter(mzp, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("POST", "/actions/volume-test", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func Test_actionController_togglePlayback(t *testing.T) {
	t.Run("toggles playback on the selected zone", func(t *testing.T) {
		mzp := &MockZoneProvider{}
		defer mzp.AssertExpectations(t)
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(selectedZoneSettings("out-1"))
		mzp.On("TogglePlayback", mock.Anything, "out-1").Return(nil)

		router := newTestRouter(mzp, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("POST", "/actions/playback", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("rejects the request when no zone is configured", func(t *testing.T) {
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(state.DefaultSettings())

		router := newTestRouter(&MockZoneProvider{}, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("POST", "/actions/playback", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("reports a failed core command as a bad gateway", func(t *testing.T) {
		mzp := &MockZoneProvider{}
		defer mzp.AssertExpectations(t)
		mss := &MockSettingsStore{}
		defer mss.AssertExpectations(t)

		mss.On("Settings").Return(selectedZoneSettings("out-1"))
		mzp.On("TogglePlayback", mock.Anything, "out-1").Return(errors.New("core went away"))

		router := newTestRouter(mzp, mss, fixedBroker{}, "")

		req, _ := http.NewRequest("POST", "/actions/playback", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}
