package server

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/penwyp/go-eld-planner/internal/util"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and pushes hub messages as JSON
// text frames. The first frame describes the current snapshot.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		util.LogWarnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	messages, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	// Read pump: only used to notice the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snap := s.backend.Snapshot()
	if err := writeMessage(conn, Message{Type: MessageHello, Trips: len(snap.Trips), LoadedAt: snap.LoadedAt}); err != nil {
		return
	}

	for {
		select {
		case <-gone:
			return
		case msg, ok := <-messages:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if err := writeMessage(conn, msg); err != nil {
				util.LogDebugf("websocket write failed: %v", err)
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msg Message) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
