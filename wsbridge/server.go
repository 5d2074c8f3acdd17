package wsbridge

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Server accepts WebSocket connections from game servers and routes their
// messages through the Handler
type Server struct {
	addr     string
	handler  *Handler
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer creates a bridge server listening on addr
func NewServer(addr string, handler *Handler) *Server {
	s := &Server{
		addr:    addr,
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Game servers connect directly, not from browsers
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s
}

// ListenAndServe blocks serving connections until Shutdown is called
func (s *Server) ListenAndServe() error {
	log.WithField("addr", s.addr).Info("Bridge server listening")
	err := s.httpSrv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains active ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("Bridge upgrade failed")
		return
	}

	client := &bridgeConn{conn: conn}
	log.WithField("remote", conn.RemoteAddr().String()).Info("Bridge connection opened")

	s.readLoop(r.Context(), client)
}

// bridgeConn wraps a websocket connection with a write mutex; gorilla
// connections allow only one concurrent writer
type bridgeConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *bridgeConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(v)
}

func (s *Server) readLoop(ctx context.Context, client *bridgeConn) {
	defer func() {
		client.conn.Close()
		log.WithField("remote", client.conn.RemoteAddr().String()).Info("Bridge connection closed")
	}()

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("Bridge connection read error")
			}
			return
		}

		var msg Envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			// Unparseable payloads are dropped without a response; there is
			// no correlationId to answer to
			log.WithError(err).Warn("Discarded malformed bridge message")
			continue
		}

		resp := s.handler.Handle(ctx, &msg)
		if resp == nil {
			continue
		}
		if err := client.writeJSON(resp); err != nil {
			log.WithError(err).Warn("Failed to write bridge response")
			return
		}
	}
}
