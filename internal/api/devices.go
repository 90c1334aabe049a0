package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-irclimate/internal/bridges/ir"
	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/device"
)

// controlTimeout bounds a control call made through the API.
const controlTimeout = 10 * time.Second

// maxQueryParamLen bounds path and query values.
const maxQueryParamLen = 100

// handleListDevices returns all units.
//
// Query parameters:
//   - platform: filter by platform (mbishi, ...)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.ListDevices(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list devices")
		return
	}

	if platform := r.URL.Query().Get("platform"); platform != "" {
		filtered := devices[:0]
		for _, d := range devices {
			if d.Platform == platform {
				filtered = append(filtered, d)
			}
		}
		devices = filtered
	}

	for i := range devices {
		s.overlayLiveState(&devices[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single unit by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}
	s.overlayLiveState(dev)
	writeJSON(w, http.StatusOK, dev)
}

// overlayLiveState replaces the persisted state with the bridge's, which also
// carries the latest room temperature.
func (s *Server) overlayLiveState(d *device.Device) {
	if s.bridge == nil {
		return
	}
	if st, ok := s.bridge.State(d.ID); ok {
		d.State = device.StateFromClimate(st)
	}
}

// handleGetDeviceState returns the unit's current state.
func (s *Server) handleGetDeviceState(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}

	if s.bridge != nil {
		if st, ok := s.bridge.State(dev.ID); ok {
			writeJSON(w, http.StatusOK, map[string]any{"device_id": dev.ID, "state": st})
			return
		}
	}

	st, err := dev.ClimateState()
	if err != nil {
		writeNotFound(w, "no state recorded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device_id":  dev.ID,
		"state":      st,
		"updated_at": dev.StateUpdatedAt,
	})
}

// handleSetDeviceState applies a climate call and transmits it.
//
// The body is a partial state: {"mode":"cool","target_temperature":22}.
// The response carries the state that was transmitted.
func (s *Server) handleSetDeviceState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxQueryParamLen {
		writeBadRequest(w, "invalid device ID")
		return
	}

	var call climate.Call
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if s.bridge == nil {
		writeUnavailable(w, "IR bridge not running")
		return
	}

	id = s.resolveDeviceID(r.Context(), id)

	ctx, cancel := context.WithTimeout(r.Context(), controlTimeout)
	defer cancel()

	st, err := s.bridge.Control(ctx, id, call)
	if err != nil {
		switch {
		case errors.Is(err, ir.ErrDeviceNotConfigured):
			writeNotFound(w, "device not found")
		case errors.Is(err, climate.ErrEmptyCall),
			errors.Is(err, climate.ErrInvalidMode),
			errors.Is(err, climate.ErrInvalidFanMode),
			errors.Is(err, climate.ErrInvalidSwingMode),
			errors.Is(err, climate.ErrInvalidTemperature):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("control call failed", "device_id", id, "error", err)
			writeError(w, http.StatusBadGateway, ErrCodeTransmitFailed, "failed to transmit IR frame")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"device_id": id, "state": st})
}

// handleDeviceStats returns registry statistics.
func (s *Server) handleDeviceStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.devices.GetStats())
}

// lookupDevice loads the device named by the {id} URL parameter, which may be
// an ID or a slug, writing the error response itself when that fails.
func (s *Server) lookupDevice(w http.ResponseWriter, r *http.Request) (*device.Device, bool) {
	key := chi.URLParam(r, "id")
	if key == "" || len(key) > maxQueryParamLen {
		writeBadRequest(w, "invalid device ID")
		return nil, false
	}

	dev, err := s.devices.GetDevice(r.Context(), key)
	if errors.Is(err, device.ErrDeviceNotFound) {
		dev, err = s.devices.GetDeviceBySlug(r.Context(), key)
	}
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return nil, false
		}
		writeInternalError(w, "failed to get device")
		return nil, false
	}
	return dev, true
}

// resolveDeviceID maps a slug to its device ID. Anything that is not a known
// slug is returned unchanged.
func (s *Server) resolveDeviceID(ctx context.Context, key string) string {
	if _, err := s.devices.GetDevice(ctx, key); err == nil {
		return key
	}
	if dev, err := s.devices.GetDeviceBySlug(ctx, key); err == nil {
		return dev.ID
	}
	return key
}
