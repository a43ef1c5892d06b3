package app

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/core"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

// Outbound event types.
const (
	EvOnlineUsers    = "online_users"
	EvRooms          = "rooms"
	EvMemberJoined   = "member_joined"
	EvMemberLeft     = "member_left"
	EvNewMessage     = "new_message"
	EvMessageSent    = "message_sent"
	EvTokenGranted   = "token_granted"
	EvTokenDenied    = "token_denied"
	EvTokenReleased  = "token_released"
	EvCurrentSpeaker = "current_speaker"
)

type OnlineUsersEvent struct {
	Type  string        `json:"type"`
	Users []domain.User `json:"users"`
	Count int           `json:"count"`
}

type RoomsEvent struct {
	Type  string          `json:"type"`
	Rooms []core.RoomInfo `json:"rooms"`
}

type MemberJoinedEvent struct {
	Type      string        `json:"type"`
	RoomID    domain.RoomID `json:"room_id"`
	UserID    domain.UserID `json:"user_id"`
	Username  string        `json:"username"`
	UserCount int           `json:"user_count"`
}

type MemberLeftEvent struct {
	Type      string        `json:"type"`
	RoomID    domain.RoomID `json:"room_id"`
	UserID    domain.UserID `json:"user_id"`
	Username  string        `json:"username"`
	UserCount int           `json:"user_count"`
}

type NewMessageEvent struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

type MessageSentEvent struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

type TokenGrantedEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"room_id"`
	Since  time.Time     `json:"since"`
}

type TokenDeniedEvent struct {
	Type       string        `json:"type"`
	RoomID     domain.RoomID `json:"room_id"`
	HolderID   domain.UserID `json:"holder_id"`
	HolderName string        `json:"holder_name"`
}

type TokenReleasedEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"room_id"`
	UserID domain.UserID `json:"user_id"`
}

// CurrentSpeakerEvent carries a null user_id when the room went Idle.
type CurrentSpeakerEvent struct {
	Type     string         `json:"type"`
	RoomID   domain.RoomID  `json:"room_id"`
	UserID   *domain.UserID `json:"user_id"`
	Username string         `json:"username,omitempty"`
}

func encode(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.events").Msg("encode event")
		return nil, false
	}
	return b, true
}
