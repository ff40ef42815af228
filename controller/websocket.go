package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/haeksim/noonsongi/common/logger"
	"github.com/haeksim/noonsongi/model"
	"github.com/haeksim/noonsongi/view"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type sessionEvent struct {
	Type   string              `json:"type"`
	Key    string              `json:"key"`
	Screen view.Screen         `json:"screen"`
	State  *model.SessionState `json:"state,omitempty"`
}

func newSessionEvent(state model.SessionState) sessionEvent {
	screen := view.Select(state)
	return sessionEvent{Type: "screen", Key: screen.Key(), Screen: screen, State: &state}
}

// SessionWS pushes the session's screen after every change until the client leaves
// or the session is evicted.
func SessionWS(c *gin.Context) {
	ctx := c.Request.Context()
	sess := currentSession(c)

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf(ctx, "websocket upgrade failed: %s", err.Error())
		return
	}
	defer conn.Close()

	updates, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// the reader only drives control frames and notices the client going away
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-readerDone:
			return
		case state, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(newSessionEvent(state)); err != nil {
				logger.Debugf(ctx, "websocket write failed: %s", err.Error())
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
