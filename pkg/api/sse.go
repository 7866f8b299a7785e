package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// minStatsInterval bounds how fast clients may poll the stats stream.
const minStatsInterval = 100 * time.Millisecond

// StatsSSE handles Server-Sent Events for streaming learning statistics.
// GET /api/stats/stream?interval=1s
//
// A "stats" event with the current InfoResponse is sent immediately and then
// on every interval tick until the client disconnects. Useful for watching
// exploration decay and table growth during a live game.
func (h *Handlers) StatsSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	interval := time.Second
	if raw := r.URL.Query().Get("interval"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			writeSSEError(w, "invalid interval: "+raw)
			return
		}
		if parsed < minStatsInterval {
			parsed = minStatsInterval
		}
		interval = parsed
	}

	writeSSEEvent(w, "stats", statsToResponse(h.engine.Stats()))
	flusher.Flush()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			writeSSEEvent(w, "stats", statsToResponse(h.engine.Stats()))
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and closes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
