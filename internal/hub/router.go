package hub

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/quizcast/quizcast/internal/types"
)

// router owns the per-connection outboxes and implements the three delivery
// scopes: one connection, one room's members, or everyone. Delivery is
// fire-and-forget; a connection that can't keep up is dropped.
type router struct {
	conns  map[string]chan []byte
	logger *zap.Logger
}

func newRouter(logger *zap.Logger) *router {
	return &router{
		conns:  make(map[string]chan []byte),
		logger: logger,
	}
}

func (rt *router) add(connID string, outbox chan []byte) {
	rt.conns[connID] = outbox
}

func (rt *router) remove(connID string) {
	if outbox, ok := rt.conns[connID]; ok {
		close(outbox)
		delete(rt.conns, connID)
	}
}

func (rt *router) toConn(connID string, msg types.ServerMessage) {
	outbox, ok := rt.conns[connID]
	if !ok {
		return
	}
	rt.send(connID, outbox, rt.encode(msg))
}

func (rt *router) toConns(connIDs []string, msg types.ServerMessage) {
	payload := rt.encode(msg)
	for _, connID := range connIDs {
		if outbox, ok := rt.conns[connID]; ok {
			rt.send(connID, outbox, payload)
		}
	}
}

func (rt *router) toAll(msg types.ServerMessage) {
	payload := rt.encode(msg)
	for connID, outbox := range rt.conns {
		rt.send(connID, outbox, payload)
	}
}

func (rt *router) encode(msg types.ServerMessage) []byte {
	payload, err := json.Marshal(msg)
	if err != nil {
		rt.logger.Error("encode server message", zap.String("type", msg.Type), zap.Error(err))
		return nil
	}
	return payload
}

func (rt *router) send(connID string, outbox chan []byte, payload []byte) {
	if payload == nil {
		return
	}
	select {
	case outbox <- payload:
	default:
		// Connection is slow or stuck; drop it. The transport handler
		// notices the closed outbox and issues the Disconnect.
		rt.logger.Warn("dropping slow connection", zap.String("conn", connID))
		close(outbox)
		delete(rt.conns, connID)
	}
}
