package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard and API share an origin; cross-origin use is fine for
	// a local tool.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// handleWS streams bus events to the client as JSON, one message per
// event, until the client disconnects.
func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		http.Error(w, "event bus not configured", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events := s.bus.Subscribe(64)
	defer s.bus.Unsubscribe(events)

	// Reader goroutine: consume control frames and detect disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Debug("websocket client connected", "remote", r.RemoteAddr)
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case e := <-events:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(e); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
