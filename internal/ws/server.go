package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/curlben/msuas-server/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server owns the realtime endpoint: it verifies the handshake token,
// admits the connection into the registry and runs the read loop.
type Server struct {
	registry  *Registry
	router    *Router
	jwtSecret string
}

func NewServer(registry *Registry, router *Router, jwtSecret string) *Server {
	return &Server{registry: registry, router: router, jwtSecret: jwtSecret}
}

// Handle upgrades the request and serves the connection until close.
// The credential travels as a query parameter; a bad or missing token
// closes the socket with a policy-violation code before any
// application data is exchanged.
func (s *Server) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade: %v", err)
		return
	}

	claims, err := auth.ParseJWT(c.Query("token"), s.jwtSecret)
	if err != nil {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Authentication failed")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	userID := claims.UserID
	wc := newWSConn(conn)
	s.registry.Register(userID, wc)

	defer func() {
		s.registry.Unregister(userID, wc)
		_ = wc.Close()
	}()

	s.router.send(wc, ConnectedEvent{
		Type:      "connected",
		UserID:    userID,
		Timestamp: time.Now().UnixMilli(),
	})

	ctx := c.Request.Context()

	// Frames from one connection are handled in arrival order; there is
	// no cross-connection ordering guarantee.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: read user=%d: %v", userID, err)
			}
			return
		}
		s.router.HandleFrame(ctx, userID, wc, data)
	}
}
