package quiz

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrUnauthorized = errors.New("caller is not the room director")
var ErrNotActive = errors.New("game is not active")
var ErrNoItems = errors.New("room has no items")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseActive Phase = "active"
	PhaseEnded  Phase = "ended"
)

// Settings is the director-controlled game configuration. The whole record is
// replaced on every update; absent fields fall back to the defaults.
type Settings struct {
	DurationSeconds int  `json:"durationSeconds"`
	RangeStart      int  `json:"rangeStart"`
	RangeEnd        int  `json:"rangeEnd"`
	RandomOrder     bool `json:"randomOrder"`
}

func DefaultSettings() Settings {
	return Settings{
		DurationSeconds: 90,
		RangeStart:      1,
		RangeEnd:        90,
		RandomOrder:     true,
	}
}

// SettingsPatch carries the fields a director supplied on update-settings.
// Nil means "not provided" and resolves to the default, not the prior value.
type SettingsPatch struct {
	DurationSeconds *int
	RangeStart      *int
	RangeEnd        *int
	RandomOrder     *bool
}

func (p SettingsPatch) Resolve() Settings {
	s := DefaultSettings()
	if p.DurationSeconds != nil {
		s.DurationSeconds = *p.DurationSeconds
	}
	if p.RangeStart != nil {
		s.RangeStart = *p.RangeStart
	}
	if p.RangeEnd != nil {
		s.RangeEnd = *p.RangeEnd
	}
	if p.RandomOrder != nil {
		s.RandomOrder = *p.RandomOrder
	}
	return s
}

// Room is the full per-session record. It is always read and written as a
// unit by the hub loop; nothing mutates it concurrently.
type Room struct {
	ID              string            `json:"id"`
	Director        string            `json:"director"`
	Candidates      []string          `json:"candidates"`
	Phase           Phase             `json:"phase"`
	CurrentIndex    int               `json:"currentIndex"`
	RecognizedCount int               `json:"recognizedCount"`
	TimeLeft        int               `json:"timeLeft"`
	Items           []json.RawMessage `json:"items"`
	Settings        Settings          `json:"settings"`
	LastActivity    time.Time         `json:"lastActivity"`
}

func NewRoom(id, director string, items []json.RawMessage) Room {
	return Room{
		ID:         id,
		Director:   director,
		Candidates: []string{},
		Phase:      PhaseIdle,
		Items:      items,
		Settings:   DefaultSettings(),
	}
}

type CommandType string

const (
	CmdJoin           CommandType = "Join"
	CmdUpdateSettings CommandType = "UpdateSettings"
	CmdStartCountdown CommandType = "StartCountdown"
	CmdStartGame      CommandType = "StartGame"
	CmdAdvance        CommandType = "Advance"
	CmdRecordResult   CommandType = "RecordResult"
	CmdSyncTimer      CommandType = "SyncTimer"
)

type Command struct {
	Type  CommandType
	Actor string // connection id issuing the command

	CandidateID     string            // Join
	Settings        SettingsPatch     // UpdateSettings
	Items           []json.RawMessage // StartGame, optional replacement set
	TimeLeft        int               // StartCountdown, SyncTimer
	CurrentIndex    int               // SyncTimer
	RecognizedCount int               // SyncTimer
}

type EventType string

const (
	EvtCandidateJoined  EventType = "CandidateJoined"
	EvtSettingsUpdated  EventType = "SettingsUpdated"
	EvtCountdownStarted EventType = "CountdownStarted"
	EvtGameStarted      EventType = "GameStarted"
	EvtItemUpdated      EventType = "ItemUpdated"
	EvtGameEnded        EventType = "GameEnded"
	EvtResultSaved      EventType = "ResultSaved"
	EvtTimerSynced      EventType = "TimerSynced"
)

type Event struct {
	Type EventType

	CandidateID     string
	CandidateCount  int
	Settings        Settings
	TimeLeft        int
	Item            json.RawMessage
	Index           int
	RecognizedCount int
}
