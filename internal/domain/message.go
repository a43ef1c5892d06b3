package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageID string

// Message is immutable once created; the persisted record is append-only.
// Exactly one of Text and AudioURL is set.
type Message struct {
	ID         MessageID `json:"id"`
	SenderID   UserID    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	RoomID     RoomID    `json:"room_id"`
	Text       string    `json:"text,omitempty"`
	AudioURL   string    `json:"audio_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewTextMessage(sender UserID, senderName string, room RoomID, text string) Message {
	return Message{
		ID:         MessageID(uuid.NewString()),
		SenderID:   sender,
		SenderName: senderName,
		RoomID:     room,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
}

func NewAudioMessage(sender UserID, senderName string, room RoomID, url string) Message {
	return Message{
		ID:         MessageID(uuid.NewString()),
		SenderID:   sender,
		SenderName: senderName,
		RoomID:     room,
		AudioURL:   url,
		CreatedAt:  time.Now().UTC(),
	}
}
