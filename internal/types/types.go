package types

import (
	"encoding/json"

	"github.com/quizcast/quizcast/internal/leaderboard"
	"github.com/quizcast/quizcast/internal/quiz"
	"github.com/quizcast/quizcast/internal/store"
)

// Inbound message types. The source protocol used save-result for both the
// room tally and the global leaderboard submission; here they are split into
// save-result and submit-score.
const (
	MsgCreateRoom     = "create-room"
	MsgJoinRoom       = "join-room"
	MsgUpdateSettings = "update-settings"
	MsgStartCountdown = "start-countdown"
	MsgStartGame      = "start-game"
	MsgNextItem       = "next-item"
	MsgSaveResult     = "save-result"
	MsgSubmitScore    = "submit-score"
	MsgSyncTimer      = "sync-timer"
	MsgGetRooms       = "get-rooms"
	MsgGetLeaderboard = "get-leaderboard"
)

// Outbound message types.
const (
	MsgRoomCreated        = "room-created"
	MsgRoomJoined         = "room-joined"
	MsgRoomNotFound       = "room-not-found"
	MsgCandidateJoined    = "candidate-joined"
	MsgGameSettingsUpdate = "game-settings-update"
	MsgCountdownStart     = "countdown-start"
	MsgGameStarted        = "game-started"
	MsgItemUpdated        = "item-updated"
	MsgGameEnded          = "game-ended"
	MsgResultSaved        = "result-saved"
	MsgRoomList           = "room-list"
	MsgRoomClosed         = "room-closed"
	MsgLeaderboardUpdated = "leaderboard-updated"
	MsgLeaderboardData    = "leaderboard-data"
	MsgError              = "error"
)

type ClientMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`

	// create-room / start-game
	Items []json.RawMessage `json:"items,omitempty"`

	// update-settings; pointers so absent fields can fall back to defaults
	DurationSeconds *int  `json:"durationSeconds,omitempty"`
	RangeStart      *int  `json:"rangeStart,omitempty"`
	RangeEnd        *int  `json:"rangeEnd,omitempty"`
	RandomOrder     *bool `json:"randomOrder,omitempty"`

	// start-countdown / sync-timer
	TimeLeft        int `json:"timeLeft,omitempty"`
	CurrentIndex    int `json:"currentIndex,omitempty"`
	RecognizedCount int `json:"recognizedCount,omitempty"`

	// submit-score
	CorrectCount  int    `json:"correctCount,omitempty"`
	TotalCount    int    `json:"totalCount,omitempty"`
	SubmitterInfo string `json:"submitterInfo,omitempty"`
}

type ServerMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`

	Room            *quiz.Room          `json:"room,omitempty"`
	Item            json.RawMessage     `json:"item,omitempty"`
	Index           *int                `json:"index,omitempty"`
	CandidateID     string              `json:"candidateId,omitempty"`
	CandidateCount  int                 `json:"candidateCount,omitempty"`
	Settings        *quiz.Settings      `json:"settings,omitempty"`
	TimeLeft        int                 `json:"timeLeft,omitempty"`
	RecognizedCount int                 `json:"recognizedCount,omitempty"`
	Rooms           []store.Summary     `json:"rooms,omitempty"`
	Leaderboard     []leaderboard.Entry `json:"leaderboard,omitempty"`
	Error           string              `json:"error,omitempty"`
}
