package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rebrag/GTOLite-Helper-Script/internal/grid"
	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
)

// writeJSON writes a standard response envelope
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error": message,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

// handleListNodes returns the node ids of the current collection.
func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	col := s.service.Collection()
	if col == nil {
		writeError(w, http.StatusServiceUnavailable, "No collection available yet")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"build_id": col.BuildID,
		"built_at": col.BuiltAt,
		"nodes":    col.NodeIDs(),
	})
}

// handleGetNode returns the full per-hand strategies of one node.
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	node, ok := s.lookupNode(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, node.Hands)
}

// handleGetNodeGrid returns the 13x13 visualization grid for one node.
func (s *Server) handleGetNodeGrid(w http.ResponseWriter, r *http.Request) {
	node, ok := s.lookupNode(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, grid.Build(node))
}

// handleGetNodeStats returns per-action weight and EV statistics.
func (s *Server) handleGetNodeStats(w http.ResponseWriter, r *http.Request) {
	node, ok := s.lookupNode(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, grid.Summarize(node))
}

// handleListBuilds returns persisted build history, newest first.
func (s *Server) handleListBuilds(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusNotImplemented, "Build history is disabled")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = n
	}

	builds, err := s.repo.ListBuilds(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list builds")
		writeError(w, http.StatusInternalServerError, "Failed to list builds")
		return
	}

	writeJSON(w, http.StatusOK, builds)
}

// handleRescan triggers a synchronous rescan of the range folder.
func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Rescan(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Rescan failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleExport writes the JSON export of the current collection.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	paths, err := s.service.Export()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"files":   len(paths),
		"written": paths,
	})
}

// lookupNode resolves the {node} URL parameter against the current
// collection, writing the error response itself on failure.
func (s *Server) lookupNode(w http.ResponseWriter, r *http.Request) (*nodes.NodeStrategies, bool) {
	col := s.service.Collection()
	if col == nil {
		writeError(w, http.StatusServiceUnavailable, "No collection available yet")
		return nil, false
	}

	id := chi.URLParam(r, "node")
	n, ok := col.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown node: "+id)
		return nil, false
	}
	return n, true
}
