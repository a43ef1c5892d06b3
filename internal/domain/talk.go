package domain

import "time"

// TalkGrant is the Held half of the per-room talk-token state machine.
// A room with no grant is Idle (comma-ok lookups make the variant explicit).
type TalkGrant struct {
	UserID   UserID    `json:"user_id"`
	Username string    `json:"username"`
	Since    time.Time `json:"since"`
}
