package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/quizcast/quizcast/internal/hub"
	"github.com/quizcast/quizcast/internal/types"
)

// A hub-side drop closes the outbox while the reader is still open; the
// writer must end the socket with the backlog status so the reader unblocks.
func TestHandler_HubDropClosesWithBacklogStatus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := hub.NewHub(ctx, zap.NewNop(), hub.Options{ReapInterval: time.Hour, RoomTTL: time.Hour})
	srv := httptest.NewServer(Handler(h, zap.NewNop()))
	defer srv.Close()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	payload, err := json.Marshal(types.ClientMessage{Type: types.MsgCreateRoom, RoomID: "wsroom123"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	// room-created confirms the hub has registered this connection.
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var sm types.ServerMessage
	if err := json.Unmarshal(data, &sm); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sm.Type != types.MsgRoomCreated {
		t.Fatalf("type = %q, want %q", sm.Type, types.MsgRoomCreated)
	}

	reply := make(chan hub.RoomView, 1)
	h.Inbox() <- hub.GetRoom{RoomID: "wsroom123", Reply: reply}
	var view hub.RoomView
	select {
	case view = <-reply:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for room view")
	}
	if !view.OK {
		t.Fatal("room not found")
	}

	h.Inbox() <- hub.Disconnect{ConnID: view.Room.Director}

	// Drain whatever was already queued, then expect the backlog close.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			if got := websocket.CloseStatus(err); got != websocket.StatusPolicyViolation {
				t.Fatalf("close status = %v, want %v", got, websocket.StatusPolicyViolation)
			}
			return
		}
	}
}
