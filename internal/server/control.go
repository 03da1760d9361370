package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/arcbank/offlinegate/internal/ports"
)

// handleSkipWaiting applies a staged cache version immediately instead of
// waiting for the next restart.
func (s *Server) handleSkipWaiting(w http.ResponseWriter, r *http.Request) {
	if err := s.skipWaiting(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]string{"status": "activated"})
}

// handleCacheStatus walks every partition and replies with a name→count map.
func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	names, err := s.cache.Partitions(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := make(map[string]int, len(names))
	for _, name := range names {
		n, err := s.cache.Count(r.Context(), name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		status[name] = n
	}
	writeJSON(w, status)
}

// handleSync requests a replay pass from the coordinator.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	s.coord.Trigger()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "sync requested"})
}

// handleEvents streams sync notices to a subscribed page over SSE.
// The subscription lives as long as the page holds the connection open.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	id, ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case notice, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(notice)
			if err != nil {
				s.logger.Error("marshal notice", ports.Err(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
