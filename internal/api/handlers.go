package api

import (
	"encoding/json"
	"net/http"
)

// Handler methods for routerHandlers. This debug surface is
// deliberately read-only: no player join, no weapon purchase, no
// stream control — the game itself speaks only the UDP protocol, and
// there is nothing here worth mutating from an HTTP client.

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *routerHandlers) handleStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeJSON(w, map[string]interface{}{})
		return
	}
	writeJSON(w, map[string]interface{}{
		"playerCount": h.stats.PlayerCount(),
		"enemyCount":  h.stats.EnemyCount(),
		"tick":        h.stats.TickNumber(),
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
