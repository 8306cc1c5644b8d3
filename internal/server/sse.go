package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sema-dev/sema-core/internal/event"
	"github.com/sema-dev/sema-core/internal/logging"
)

// sseFrame is the wire shape of one server-sent event frame.
type sseFrame struct {
	Name string `json:"name"`
	Data any    `json:"data"`
}

const heartbeatInterval = 30 * time.Second

// globalEvents streams every event emitted on the engine's bus to the
// client for as long as the connection stays open.
func (s *Server) globalEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	frames := make(chan sseFrame, 64)
	unsubscribe := s.engine.Bus.OnAll(func(e event.Event) {
		select {
		case frames <- sseFrame{Name: string(e.Name), Data: e.Data}:
		default:
			logging.Logger.Warn().Str("event", string(e.Name)).Msg("sse client too slow, dropping frame")
		}
	})
	defer s.engine.Bus.Off(unsubscribe)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": heartbeat\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case frame := <-frames:
			payload, err := json.Marshal(frame)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
