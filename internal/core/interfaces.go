package core

import (
	"context"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

// Frame is a marshaled outbound event.
type Frame []byte

// SessionID identifies one live connection (the client-token cookie).
type SessionID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// ProfileStore mirrors user profiles into the document store.
// Writes are best-effort; live presence stays authoritative.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, user domain.User) error
}

// MessageStore is the append-only persisted message collection.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg domain.Message) error
}

// BlobStore stores a raw payload under path and returns a publicly
// resolvable URL for it.
type BlobStore interface {
	Store(ctx context.Context, path string, data []byte) (string, error)
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
}

// RoomInfo is the serializable catalog entry with its live member count.
type RoomInfo struct {
	ID          domain.RoomID   `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Kind        domain.RoomKind `json:"kind"`
	Private     bool            `json:"private"`
	MemberCount int             `json:"member_count"`
	MaxMembers  int             `json:"max_members"`
}
