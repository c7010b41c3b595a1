// Package hub runs the single coordination loop. All room reads and
// mutations, every broadcast, and the reap sweep are serialized through one
// goroutine, so none of the owned state needs locking.
package hub

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/quizcast/quizcast/internal/leaderboard"
	"github.com/quizcast/quizcast/internal/quiz"
	"github.com/quizcast/quizcast/internal/registry"
	"github.com/quizcast/quizcast/internal/store"
	"github.com/quizcast/quizcast/internal/types"
)

type HubMsg interface{ isHubMsg() }

// Connect registers a participant connection and its outbox.
type Connect struct {
	ConnID string
	Outbox chan []byte
}

// Disconnect unregisters a connection. A disconnecting director tears down
// every room it owns.
type Disconnect struct {
	ConnID string
}

// FromClient carries one decoded inbound message.
type FromClient struct {
	ConnID string
	Msg    types.ClientMessage
}

// Sweep forces a reap pass; the loop also runs one on every tick.
type Sweep struct{}

// GetRoom reflects a room's current state without data races. Test-only.
type GetRoom struct {
	RoomID string
	Reply  chan RoomView
}

type RoomView struct {
	Room quiz.Room
	OK   bool
}

type Shutdown struct{}

func (Connect) isHubMsg()    {}
func (Disconnect) isHubMsg() {}
func (FromClient) isHubMsg() {}
func (Sweep) isHubMsg()      {}
func (GetRoom) isHubMsg()    {}
func (Shutdown) isHubMsg()   {}

type Options struct {
	// ReapInterval is how often idle rooms are swept. RoomTTL is how long a
	// room may sit without activity before the sweep evicts it.
	ReapInterval time.Duration
	RoomTTL      time.Duration
}

func (o *Options) setDefaults() {
	if o.ReapInterval <= 0 {
		o.ReapInterval = 5 * time.Minute
	}
	if o.RoomTTL <= 0 {
		o.RoomTTL = 5 * time.Minute
	}
}

type Hub struct {
	inbox  chan HubMsg
	opts   Options
	logger *zap.Logger

	router   *router
	registry *registry.Registry
	rooms    *store.Store
	board    *leaderboard.Board

	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, logger *zap.Logger, opts Options) *Hub {
	opts.setDefaults()
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		opts:     opts,
		logger:   logger,
		router:   newRouter(logger),
		registry: registry.New(),
		rooms:    store.New(),
		board:    leaderboard.New(),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	ticker := time.NewTicker(h.opts.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case <-ticker.C:
			h.sweep()

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Connect:
				h.router.add(msg.ConnID, msg.Outbox)

			case Disconnect:
				h.disconnect(msg.ConnID)

			case FromClient:
				h.dispatch(msg.ConnID, msg.Msg)

			case Sweep:
				h.sweep()

			case GetRoom:
				room, ok := h.rooms.Get(msg.RoomID)
				msg.Reply <- RoomView{Room: room, OK: ok}

			case Shutdown:
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) dispatch(connID string, msg types.ClientMessage) {
	switch msg.Type {
	case types.MsgCreateRoom:
		h.createRoom(connID, msg)

	case types.MsgJoinRoom:
		h.joinRoom(connID, msg)

	case types.MsgUpdateSettings:
		h.directorCommand(connID, msg.RoomID, quiz.Command{
			Type:  quiz.CmdUpdateSettings,
			Actor: connID,
			Settings: quiz.SettingsPatch{
				DurationSeconds: msg.DurationSeconds,
				RangeStart:      msg.RangeStart,
				RangeEnd:        msg.RangeEnd,
				RandomOrder:     msg.RandomOrder,
			},
		})

	case types.MsgStartCountdown:
		h.directorCommand(connID, msg.RoomID, quiz.Command{
			Type:     quiz.CmdStartCountdown,
			Actor:    connID,
			TimeLeft: msg.TimeLeft,
		})

	case types.MsgStartGame:
		h.directorCommand(connID, msg.RoomID, quiz.Command{
			Type:  quiz.CmdStartGame,
			Actor: connID,
			Items: msg.Items,
		})

	case types.MsgNextItem:
		h.directorCommand(connID, msg.RoomID, quiz.Command{
			Type:  quiz.CmdAdvance,
			Actor: connID,
		})

	case types.MsgSaveResult:
		h.directorCommand(connID, msg.RoomID, quiz.Command{
			Type:  quiz.CmdRecordResult,
			Actor: connID,
		})

	case types.MsgSyncTimer:
		h.directorCommand(connID, msg.RoomID, quiz.Command{
			Type:            quiz.CmdSyncTimer,
			Actor:           connID,
			TimeLeft:        msg.TimeLeft,
			CurrentIndex:    msg.CurrentIndex,
			RecognizedCount: msg.RecognizedCount,
		})

	case types.MsgSubmitScore:
		h.submitScore(connID, msg)

	case types.MsgGetRooms:
		h.router.toConn(connID, types.ServerMessage{
			Type:  types.MsgRoomList,
			Rooms: h.rooms.ListSummaries(),
		})

	case types.MsgGetLeaderboard:
		h.router.toConn(connID, types.ServerMessage{
			Type:        types.MsgLeaderboardData,
			Leaderboard: h.board.TopN(leaderboard.TopSize),
		})

	default:
		h.logger.Warn("unknown message type",
			zap.String("conn", connID), zap.String("type", msg.Type))
		h.router.toConn(connID, types.ServerMessage{
			Type:  types.MsgError,
			Error: "unknown message type: " + msg.Type,
		})
	}
}

func (h *Hub) createRoom(connID string, msg types.ClientMessage) {
	room := quiz.NewRoom(msg.RoomID, connID, msg.Items)
	room.LastActivity = h.now()

	id, err := h.rooms.Create(msg.RoomID, room)
	if err != nil {
		h.logger.Error("create room", zap.String("conn", connID), zap.Error(err))
		h.router.toConn(connID, types.ServerMessage{
			Type:  types.MsgError,
			Error: "failed to create room",
		})
		return
	}
	room.ID = id

	h.registry.Bind(connID, id, registry.RoleDirector)
	h.logger.Info("room created", zap.String("room", id), zap.String("director", connID))

	h.router.toConn(connID, types.ServerMessage{
		Type:   types.MsgRoomCreated,
		RoomID: id,
		Room:   &room,
	})
	h.broadcastRoomList()
}

func (h *Hub) joinRoom(connID string, msg types.ClientMessage) {
	room, ok := h.rooms.Get(msg.RoomID)
	if !ok {
		h.router.toConn(connID, types.ServerMessage{
			Type:   types.MsgRoomNotFound,
			RoomID: msg.RoomID,
		})
		return
	}

	events, room, err := quiz.Apply(room, quiz.Command{
		Type:        quiz.CmdJoin,
		Actor:       connID,
		CandidateID: connID,
	})
	if err != nil {
		h.logger.Error("join room", zap.String("room", msg.RoomID), zap.Error(err))
		return
	}

	room.LastActivity = h.now()
	h.rooms.Put(room.ID, room)
	h.registry.Bind(connID, room.ID, registry.RoleCandidate)

	h.router.toConn(connID, types.ServerMessage{
		Type:   types.MsgRoomJoined,
		RoomID: room.ID,
		Room:   &room,
	})
	h.fanOut(connID, room, events)
}

// directorCommand runs one director-gated command against a room. Unknown
// rooms and unauthorized callers produce nothing on the wire, matching the
// source protocol; both are still logged.
func (h *Hub) directorCommand(connID, roomID string, cmd quiz.Command) {
	room, ok := h.rooms.Get(roomID)
	if !ok {
		h.logger.Debug("command for unknown room",
			zap.String("conn", connID), zap.String("room", roomID))
		return
	}

	events, room, err := quiz.Apply(room, cmd)
	switch {
	case errors.Is(err, quiz.ErrUnauthorized):
		h.logger.Warn("unauthorized command",
			zap.String("conn", connID),
			zap.String("room", roomID),
			zap.String("command", string(cmd.Type)))
		return
	case errors.Is(err, quiz.ErrNotActive):
		return
	case errors.Is(err, quiz.ErrNoItems):
		h.router.toConn(connID, types.ServerMessage{
			Type:   types.MsgError,
			RoomID: roomID,
			Error:  "cannot start a game without items",
		})
		return
	case err != nil:
		h.logger.Error("apply command",
			zap.String("room", roomID), zap.String("command", string(cmd.Type)), zap.Error(err))
		return
	}

	room.LastActivity = h.now()
	h.rooms.Put(room.ID, room)
	h.fanOut(connID, room, events)
}

// fanOut maps state-machine events onto outbound messages and their scopes.
func (h *Hub) fanOut(connID string, room quiz.Room, events []quiz.Event) {
	members := h.registry.Members(room.ID)

	for _, ev := range events {
		switch ev.Type {
		case quiz.EvtCandidateJoined:
			// Settings go to the joining candidate only; the join
			// notification goes to the whole room.
			h.router.toConn(connID, types.ServerMessage{
				Type:     types.MsgGameSettingsUpdate,
				RoomID:   room.ID,
				Settings: &ev.Settings,
			})
			h.router.toConns(members, types.ServerMessage{
				Type:           types.MsgCandidateJoined,
				RoomID:         room.ID,
				CandidateID:    ev.CandidateID,
				CandidateCount: ev.CandidateCount,
			})

		case quiz.EvtSettingsUpdated:
			h.router.toConns(members, types.ServerMessage{
				Type:     types.MsgGameSettingsUpdate,
				RoomID:   room.ID,
				Settings: &ev.Settings,
			})

		case quiz.EvtCountdownStarted:
			h.router.toConns(members, types.ServerMessage{
				Type:     types.MsgCountdownStart,
				RoomID:   room.ID,
				TimeLeft: ev.TimeLeft,
			})

		case quiz.EvtGameStarted:
			h.router.toConns(members, types.ServerMessage{
				Type:   types.MsgGameStarted,
				RoomID: room.ID,
				Room:   &room,
				Item:   ev.Item,
			})

		case quiz.EvtItemUpdated:
			index := ev.Index
			h.router.toConns(members, types.ServerMessage{
				Type:   types.MsgItemUpdated,
				RoomID: room.ID,
				Room:   &room,
				Item:   ev.Item,
				Index:  &index,
			})

		case quiz.EvtGameEnded:
			h.router.toConns(members, types.ServerMessage{
				Type:   types.MsgGameEnded,
				RoomID: room.ID,
				Room:   &room,
			})

		case quiz.EvtResultSaved:
			h.router.toConns(members, types.ServerMessage{
				Type:            types.MsgResultSaved,
				RoomID:          room.ID,
				Room:            &room,
				RecognizedCount: ev.RecognizedCount,
			})

		case quiz.EvtTimerSynced:
			index := ev.Index
			h.router.toConns(members, types.ServerMessage{
				Type:            types.MsgSyncTimer,
				RoomID:          room.ID,
				TimeLeft:        ev.TimeLeft,
				Index:           &index,
				RecognizedCount: ev.RecognizedCount,
			})
		}
	}
}

func (h *Hub) submitScore(connID string, msg types.ClientMessage) {
	entry := h.board.Submit(leaderboard.Entry{
		CorrectCount:  msg.CorrectCount,
		TotalCount:    msg.TotalCount,
		SubmitterInfo: msg.SubmitterInfo,
	})
	h.logger.Info("score submitted",
		zap.String("conn", connID),
		zap.String("result", entry.ResultID),
		zap.Int("correct", entry.CorrectCount),
		zap.Int("total", entry.TotalCount))

	h.router.toAll(types.ServerMessage{
		Type:        types.MsgLeaderboardUpdated,
		Leaderboard: h.board.TopN(leaderboard.TopSize),
	})
}

func (h *Hub) disconnect(connID string) {
	h.router.remove(connID)
	prior, had := h.registry.Unbind(connID)
	if had {
		h.logger.Info("connection left",
			zap.String("conn", connID),
			zap.String("room", prior.RoomID),
			zap.String("role", string(prior.Role)))
	}

	// A room without its director is invalid; close every room this
	// connection owned. Candidates are not pruned from rooms they were in,
	// their entries are inert ids.
	closed := false
	for _, room := range h.rooms.All() {
		if room.Director != connID {
			continue
		}
		members := h.registry.Members(room.ID)
		h.rooms.Delete(room.ID)
		h.router.toConns(members, types.ServerMessage{
			Type:   types.MsgRoomClosed,
			RoomID: room.ID,
		})
		h.logger.Info("room closed", zap.String("room", room.ID))
		closed = true
	}
	if closed {
		h.broadcastRoomList()
	}
}

func (h *Hub) sweep() {
	cutoff := h.now().Add(-h.opts.RoomTTL)
	for _, room := range h.rooms.All() {
		if room.LastActivity.After(cutoff) {
			continue
		}
		// Eviction is silent; members of a reaped room are not notified.
		// See DESIGN.md.
		h.rooms.Delete(room.ID)
		h.logger.Info("room reaped",
			zap.String("room", room.ID),
			zap.Time("lastActivity", room.LastActivity))
	}
}

func (h *Hub) broadcastRoomList() {
	h.router.toAll(types.ServerMessage{
		Type:  types.MsgRoomList,
		Rooms: h.rooms.ListSummaries(),
	})
}
