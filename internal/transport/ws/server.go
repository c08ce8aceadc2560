package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type ServerConfig struct {
	PingEvery    time.Duration
	WriteTimeout time.Duration
	SendQueue    int
	ReadLimit    int64
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		PingEvery:    15 * time.Second,
		WriteTimeout: 5 * time.Second,
		SendQueue:    64,
		ReadLimit:    1 << 20,
	}
}

// Server upgrades HTTP requests and pumps frames between the socket and the
// Gateway.
type Server struct {
	upgrader websocket.Upgrader
	gateway  *Gateway
	cfg      ServerConfig
}

func NewServer(gateway *Gateway, cfg ServerConfig) *Server {
	def := DefaultServerConfig()
	if cfg.PingEvery <= 0 {
		cfg.PingEvery = def.PingEvery
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.SendQueue <= 0 {
		cfg.SendQueue = def.SendQueue
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = def.ReadLimit
	}
	return &Server{
		gateway: gateway,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// WS endpoint: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, s.cfg.SendQueue)
	slog.Info("ws connected", "conn", c.ID(), "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.writeLoop(ctx, c)
	s.readLoop(ctx, c)

	s.gateway.Disconnect(c)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.ID(), "err", err)
	}
	slog.Info("ws disconnected", "conn", c.ID())
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	c.conn.SetReadLimit(s.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.cfg.PingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.cfg.PingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("ws read failed", "conn", c.ID(), "err", err)
			}
			return
		}
		s.gateway.Dispatch(ctx, c, data)
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.cfg.PingEvery)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg, s.cfg.WriteTimeout); err != nil {
				slog.Debug("ws write failed", "conn", c.ID(), "event", msg.Event, "err", err)
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				_ = c.Close()
				return
			}
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}
