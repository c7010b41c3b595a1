package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quizcast/quizcast/internal/hub"
	"github.com/quizcast/quizcast/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the request and bridges the connection to the hub: a
// writer goroutine drains the hub-owned outbox, the reader loop decodes
// client messages. Each connection gets an opaque generated identifier.
func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		outbox := make(chan []byte, 16)

		h.Inbox() <- hub.Connect{ConnID: connID, Outbox: outbox}
		defer func() { h.Inbox() <- hub.Disconnect{ConnID: connID} }()

		// Closed before the Disconnect above is sent, so the writer can tell
		// a hub-initiated drop from an ordinary reader teardown.
		readerStopped := make(chan struct{})
		defer close(readerStopped)

		logger.Info("connected", zap.String("conn", connID))

		// Writer goroutine; ends when the hub closes the outbox.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for payload := range outbox {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err := conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
			select {
			case <-readerStopped:
				// Ordinary teardown; the reader already initiated the close.
			default:
				// Hub dropped us as a slow consumer; unblock the reader.
				conn.Close(websocket.StatusPolicyViolation, "write backlog")
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					logger.Info("disconnected", zap.String("conn", connID))
				default:
					logger.Info("read ended", zap.String("conn", connID), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				// Malformed frames never kill the connection.
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","error":"bad json"}`))
				continue
			}

			h.Inbox() <- hub.FromClient{ConnID: connID, Msg: cm}
		}
	}
}
