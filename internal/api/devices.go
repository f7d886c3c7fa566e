package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prismled/prism-core/internal/inventory"
	"github.com/prismled/prism-core/internal/scope"
)

// handleListDevices returns the current device snapshot.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.registry.Devices()
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns one device by port.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	port := chi.URLParam(r, "port")
	dev, err := s.registry.Device(port)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleScanDevices asks the hardware service to rescan. The refreshed
// snapshot arrives asynchronously on the retained devices topic.
func (s *Server) handleScanDevices(w http.ResponseWriter, _ *http.Request) {
	if s.mqtt == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "hardware channel not connected")
		return
	}
	if err := s.mqtt.Publish(s.topics.ScanRequest(), []byte("{}"), s.qos, false); err != nil {
		s.logger.Error("failed to publish scan request", "error", err)
		writeInternalError(w, "failed to request scan")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "scanning"})
}

// scopeRequest addresses a scope within the device named by the URL.
type scopeRequest struct {
	OutputID  string `json:"output_id"`
	SegmentID string `json:"segment_id"`
}

// resolveScope normalizes the request against the current snapshot so
// stale ids degrade to the nearest valid scope instead of failing.
func (s *Server) resolveScope(port string, req scopeRequest) scope.Ref {
	raw := scope.Ref{Port: port, OutputID: req.OutputID, SegmentID: req.SegmentID}
	return scope.Normalize(raw, s.registry.Devices())
}

// handleSetScopeEffect selects or clears the effect at a scope.
func (s *Server) handleSetScopeEffect(w http.ResponseWriter, r *http.Request) {
	port := chi.URLParam(r, "port")

	var req struct {
		scopeRequest
		EffectID string `json:"effect_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	ref := s.resolveScope(port, req.scopeRequest)
	if err := s.registry.SetScopeEffect(ref.Port, ref.OutputID, ref.SegmentID, req.EffectID); err != nil {
		s.writeRegistryError(w, err)
		return
	}

	s.afterMutation(r.Context(), port, "set_scope_effect", map[string]any{
		"scope":     ref,
		"effect_id": req.EffectID,
	})
	s.respondWithDevice(w, port)
}

// handleSetScopeEffectParams merges effect parameters at a scope.
func (s *Server) handleSetScopeEffectParams(w http.ResponseWriter, r *http.Request) {
	port := chi.URLParam(r, "port")

	var req struct {
		scopeRequest
		Params map[string]any `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if len(req.Params) == 0 {
		writeBadRequest(w, "params must not be empty")
		return
	}

	ref := s.resolveScope(port, req.scopeRequest)
	if err := s.registry.UpdateScopeEffectParams(ref.Port, ref.OutputID, ref.SegmentID, req.Params); err != nil {
		s.writeRegistryError(w, err)
		return
	}

	s.afterMutation(r.Context(), port, "update_scope_effect_params", map[string]any{
		"scope":  ref,
		"params": req.Params,
	})
	s.respondWithDevice(w, port)
}

// handleSetScopeBrightness stores brightness at a scope. A negative value
// clears an output or segment override.
func (s *Server) handleSetScopeBrightness(w http.ResponseWriter, r *http.Request) {
	port := chi.URLParam(r, "port")

	var req struct {
		scopeRequest
		Value int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	ref := s.resolveScope(port, req.scopeRequest)
	if err := s.registry.SetScopeBrightness(ref.Port, ref.OutputID, ref.SegmentID, req.Value); err != nil {
		s.writeRegistryError(w, err)
		return
	}

	s.afterMutation(r.Context(), port, "set_scope_brightness", map[string]any{
		"scope": ref,
		"value": req.Value,
	})
	s.respondWithDevice(w, port)
}

// handleSetOutputSegments replaces an output's user segment list.
func (s *Server) handleSetOutputSegments(w http.ResponseWriter, r *http.Request) {
	port := chi.URLParam(r, "port")
	outputID := chi.URLParam(r, "outputID")

	var req struct {
		Segments []scope.SegmentDefinition `json:"segments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := s.registry.SetOutputSegments(port, outputID, req.Segments); err != nil {
		s.writeRegistryError(w, err)
		return
	}

	s.afterMutation(r.Context(), port, "set_output_segments", map[string]any{
		"output_id": outputID,
		"segments":  req.Segments,
	})
	s.respondWithDevice(w, port)
}

// afterMutation persists the device's config, forwards the command to the
// hardware service, and notifies WebSocket clients. All three are
// best-effort: the registry is already the source of truth.
func (s *Server) afterMutation(ctx context.Context, port, action string, payload map[string]any) {
	if s.configRepo != nil {
		deviceID, persisted, err := s.registry.Export(port)
		if err == nil && deviceID != "" {
			if err := s.configRepo.Save(ctx, deviceID, port, persisted); err != nil {
				s.logger.Warn("failed to persist device config", "port", port, "error", err)
			}
		}
	}

	if s.mqtt != nil {
		cmd := map[string]any{"action": action}
		for k, v := range payload {
			cmd[k] = v
		}
		data, err := json.Marshal(cmd)
		if err == nil {
			if err := s.mqtt.Publish(s.topics.DeviceCommand(port), data, s.qos, false); err != nil {
				s.logger.Warn("failed to publish device command", "port", port, "action", action, "error", err)
			}
		}
	}

	if s.hub != nil {
		s.hub.Broadcast(ChannelDevicesUpdated, s.registry.Devices())
	}
}

// respondWithDevice writes the device's post-mutation DTO.
func (s *Server) respondWithDevice(w http.ResponseWriter, port string) {
	dev, err := s.registry.Device(port)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// writeRegistryError maps registry and validation errors to HTTP statuses.
func (s *Server) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scope.ErrDeviceNotFound),
		errors.Is(err, scope.ErrOutputNotFound),
		errors.Is(err, scope.ErrSegmentNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, inventory.ErrInvalidScope),
		errors.Is(err, inventory.ErrNoActiveEffect),
		errors.Is(err, inventory.ErrInvalidBrightness):
		writeBadRequest(w, err.Error())
	case errors.Is(err, scope.ErrOutputNotLinear),
		errors.Is(err, scope.ErrOutputNotEditable),
		errors.Is(err, scope.ErrSegmentTypeDenied),
		errors.Is(err, scope.ErrSegmentLedMismatch),
		errors.Is(err, scope.ErrTotalLedMismatch),
		errors.Is(err, scope.ErrTotalLedRange):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	default:
		s.logger.Error("registry operation failed", "error", err)
		writeInternalError(w, "internal server error")
	}
}
