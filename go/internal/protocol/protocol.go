package protocol

import "encoding/json"

// UserID identifies a player or spectator within a room.
type UserID string

// Phase is the linear room state machine. The server is authoritative; the
// client never advances a phase on its own.
type Phase int

const (
	PhaseLobby       Phase = 0
	PhaseRoundSetup  Phase = 1
	PhaseHintWriting Phase = 2
	PhaseReveal      Phase = 3
	PhaseResolution  Phase = 4
)

// Topics pushed by the server.
const (
	TopicState            = "state"
	TopicPlayerState      = "player-state"
	TopicMessage          = "message"
	TopicDisconnect       = "disconnect"
	TopicReload           = "reload"
	TopicAuthRequired     = "auth-required"
	TopicPromptDeleteRoom = "prompt-delete-prev-room"
	TopicPing             = "ping"
)

// Topics emitted by the client.
const (
	TopicInit           = "init"
	TopicSetParam       = "set-param"
	TopicToggleHintBan  = "toggle-hint-ban"
	TopicSetLike        = "set-like"
	TopicTogglePause    = "toggle-pause"
	TopicToggleLock     = "toggle-lock"
	TopicToggleTimed    = "toggle-timed"
	TopicRestart        = "restart"
	TopicChangeName     = "change-name"
	TopicRemovePlayer   = "remove-player"
	TopicGiveHost       = "give-host"
	TopicPlayersJoin    = "players-join"
	TopicSpectatorsJoin = "spectators-join"
	TopicSetRoomMode    = "set-room-mode"
	TopicPong           = "pong"
)

// Message is the envelope carried on the duplex channel, one per topic event.
type Message struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Snapshot is the full authoritative room state. The server always sends a
// complete replacement, never a partial patch.
type Snapshot struct {
	Phase         Phase            `json:"phase"`
	Master        UserID           `json:"master"`
	HostID        UserID           `json:"hostId"`
	Players       []UserID         `json:"players"`
	Spectators    []UserID         `json:"spectators"`
	ReadyPlayers  []UserID         `json:"readyPlayers"`
	OnlinePlayers []UserID         `json:"onlinePlayers"`
	Paused        bool             `json:"paused"`
	TeamsLocked   bool             `json:"teamsLocked"`
	Timed         bool             `json:"timed"`
	PlayerTime    int              `json:"playerTime"`
	TeamTime      int              `json:"teamTime"`
	MasterTime    int              `json:"masterTime"`
	RevealTime    int              `json:"revealTime"`
	WordsLevel    int              `json:"wordsLevel"`
	Goal          int              `json:"goal"`
	// Time is the remaining milliseconds of the current phase at the moment
	// the snapshot was emitted. The client derives an absolute deadline from
	// it on application.
	Time          int64            `json:"time"`
	Rounds        int              `json:"rounds"`
	WordGuessed   bool             `json:"wordGuessed"`
	PlayerLiked   *UserID          `json:"playerLiked"`
	PlayerHints   []UserID         `json:"playerHints"`
	Hints         map[UserID]string `json:"hints"`
	ClosedHints   map[UserID]string `json:"closedHints"`
	BannedHints   map[UserID]bool   `json:"bannedHints"`
	ScoreChanges  map[UserID]int    `json:"scoreChanges"`
	PlayerNames   map[UserID]string `json:"playerNames"`
	PlayerScores  map[UserID]int    `json:"playerScores"`
	PlayerAvatars map[UserID]string `json:"playerAvatars"`
	PlayerColors  map[UserID]string `json:"playerColors"`
}

// PlayerState is the per-player private overlay merged shallowly into the
// local view. It never replaces the room snapshot.
type PlayerState struct {
	Hint string `json:"hint,omitempty"`
	Word string `json:"word,omitempty"`
}

// InitArgs bootstraps a connection.
type InitArgs struct {
	UserID       UserID `json:"userId"`
	Token        string `json:"token"`
	UserName     string `json:"userName"`
	RoomID       string `json:"roomId"`
	AvatarID     string `json:"avatarId,omitempty"`
	AcceptDelete string `json:"acceptDelete,omitempty"`
}

// SetParam carries one debounced numeric setting change.
type SetParam struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DisconnectInfo carries the optional human-readable reason on a server-side
// disconnect.
type DisconnectInfo struct {
	Reason string `json:"reason,omitempty"`
}

// PhaseDuration returns the configured duration setting, in seconds, that
// bounds the given phase. Zero for untimed phases.
func (s *Snapshot) PhaseDuration(p Phase) int {
	switch p {
	case PhaseRoundSetup:
		return s.PlayerTime
	case PhaseHintWriting:
		return s.TeamTime
	case PhaseReveal:
		return s.MasterTime
	case PhaseResolution:
		return s.RevealTime
	default:
		return 0
	}
}
