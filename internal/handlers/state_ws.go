package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/gamenight/internal/middleware"
	"github.com/jason-s-yu/gamenight/internal/tracker"
)

const stateSubprotocol = "state"

// wsWriteTimeout bounds each snapshot write.
var wsWriteTimeout = 5 * time.Second

type stateMessage struct {
	Type string `json:"type"`
	tracker.Snapshot
}

type clientMessage struct {
	Type string `json:"type"`
}

// StateWSHandler upgrades to a websocket that receives the full snapshot on
// connect and again after every mutation. Clients may send {"type":"ping"}
// and {"type":"refresh"}; everything else is ignored.
func StateWSHandler(logger *logrus.Logger, tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{stateSubprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "state feed closed")

		if r.Header.Get("Sec-WebSocket-Protocol") != "" && c.Subprotocol() != stateSubprotocol {
			c.Close(BadSubprotocolError, "client must use the 'state' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		updates, unsubscribe := tr.Subscribe()
		defer unsubscribe()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		refresh := make(chan struct{}, 1)
		readErr := make(chan error, 1)
		go func() {
			readErr <- readStateMessages(ctx, c, refresh)
		}()

		if err := sendState(ctx, c, tr); err != nil {
			middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
			c.Close(SlowConsumerError, "write failed")
			return
		}
		for {
			select {
			case <-updates:
			case <-refresh:
			case err := <-readErr:
				middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, closeReason(err))
				c.Close(websocket.StatusNormalClosure, "")
				return
			case <-ctx.Done():
				middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
				return
			}
			if err := sendState(ctx, c, tr); err != nil {
				middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
				c.Close(SlowConsumerError, "write failed")
				return
			}
		}
	}
}

// readStateMessages runs until the peer goes away.
func readStateMessages(ctx context.Context, c *websocket.Conn, refresh chan<- struct{}) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}
		var msg clientMessage
		if json.Unmarshal(data, &msg) != nil {
			continue
		}
		switch msg.Type {
		case "ping":
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := c.Write(writeCtx, websocket.MessageText, []byte(`{"type":"pong"}`))
			cancel()
			if err != nil {
				return err
			}
		case "refresh":
			select {
			case refresh <- struct{}{}:
			default:
			}
		}
	}
}

func sendState(ctx context.Context, c *websocket.Conn, tr *tracker.Tracker) error {
	data, err := json.Marshal(stateMessage{Type: "state", Snapshot: tr.Snapshot()})
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}

// closeReason hides normal closes from the disconnect log.
func closeReason(err error) error {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return nil
	}
	return err
}
