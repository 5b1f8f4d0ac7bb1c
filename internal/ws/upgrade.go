package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 64
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

// NewUpgrader accepts browser connections only from allowed origins. Requests
// without an Origin header come from non-browser clients and are accepted.
func NewUpgrader(allowed []string) *websocket.Upgrader {
	origins := make(map[string]struct{}, len(allowed))
	allowAny := false
	for _, o := range allowed {
		if o == "*" {
			allowAny = true
		}
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowAny {
				return true
			}
			_, ok := origins[origin]
			return ok
		},
	}
}

// UpgradeFeed serves GET /ws/donations. The feed is read-only; client
// messages are discarded.
func UpgradeFeed(feed *FeedHub, upgrader *websocket.Upgrader, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Info("feed upgrade rejected", zap.Error(err))
			return
		}
		defer conn.Close()

		client := NewClient(sendBuffer)
		feed.Register(client)
		defer client.Close()

		go writePump(client, conn)
		readPump(conn)
	}
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
