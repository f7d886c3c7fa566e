package api

import (
	"encoding/json"
	"net/http"

	"github.com/prismled/prism-core/internal/scope"
)

// handleGetTree returns the selection tree over the current snapshot.
func (s *Server) handleGetTree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scope.BuildTree(s.registry.Devices()))
}

// handleNormalizeScope canonicalizes a scope ref against the snapshot.
// Always succeeds: unknown ports pass through, stale ids degrade.
func (s *Server) handleNormalizeScope(w http.ResponseWriter, r *http.Request) {
	var ref scope.Ref
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, scope.Normalize(ref, s.registry.Devices()))
}
