package server

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// wsWriteTimeout bounds a single event write to one client.
const wsWriteTimeout = 5 * time.Second

// handleEvents streams rescan completion events over a websocket. Each
// message is one viewer.Event; the connection stays open until the client
// disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	events, cancel := s.service.Subscribe()
	defer cancel()

	ctx := r.Context()
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("Event subscriber connected")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			writeCtx, done := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(writeCtx, conn, ev)
			done()
			if err != nil {
				s.log.Debug().Err(err).Msg("Event subscriber dropped")
				return
			}
		}
	}
}
