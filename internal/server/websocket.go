package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/event"
	"github.com/muurk/tvremote/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients never need to send
	// anything beyond control frames.
	maxMessageSize = 512

	// Events buffered per client before new ones are dropped
	streamBuffer = 64
)

// TopicState is the topic of the snapshot sent when a stream opens
const TopicState = "state"

// handleEvents upgrades to a WebSocket and streams every bus event as JSON
// until the client goes away or the server shuts down.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("event stream upgrade failed", zap.Error(err))
		return
	}
	remoteAddr := conn.RemoteAddr().String()

	s.mu.Lock()
	s.streams[remoteAddr] = conn
	s.mu.Unlock()
	s.wg.Add(1)

	s.logger.Info("event stream opened", zap.String("remote_addr", remoteAddr))

	events := make(chan event.Event, streamBuffer)
	unsubscribe := s.remote.Subscribe(func(_ context.Context, e event.Event) {
		select {
		case events <- e:
		default:
			s.logger.Warn("event stream lagging, dropping event",
				zap.String("remote_addr", remoteAddr),
				zap.String("topic", e.Topic),
			)
		}
	})

	defer func() {
		unsubscribe()
		_ = conn.Close()
		s.mu.Lock()
		delete(s.streams, remoteAddr)
		s.mu.Unlock()
		s.wg.Done()
		s.logger.Info("event stream closed", zap.String("remote_addr", remoteAddr))
	}()

	closed := make(chan struct{})
	go s.readStream(conn, closed)

	if err := s.writeEvent(conn, event.Event{
		Topic:     TopicState,
		Source:    "server",
		Timestamp: time.Now(),
		Payload:   s.remote.State(),
	}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e := <-events:
			if err := s.writeEvent(conn, e); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

// readStream discards client messages so control frames are processed,
// and closes done when the connection fails.
func (s *Server) readStream(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("event stream read error", zap.Error(err))
			}
			return
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, e event.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(e); err != nil {
		s.logger.Debug("event stream write failed", zap.String("topic", e.Topic), zap.Error(err))
		return err
	}
	logging.LogWebSocketMessage(s.logger, conn.RemoteAddr().String(), "sent", websocket.TextMessage, []byte(e.Topic))
	return nil
}
