package domain

type (
	RoomID   string
	RoomKind string
)

const (
	KindLobby    RoomKind = "lobby"
	KindGeneral  RoomKind = "general"
	KindPTTRadio RoomKind = "ptt-radio"
)

// MaxRoomMembers is a display hint only; membership is never rejected on it.
const MaxRoomMembers = 16

type Room struct {
	ID          RoomID   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Kind        RoomKind `json:"kind"`
	Private     bool     `json:"private"`
}

// DefaultRooms is the fixed catalog seeded at startup. Rooms are never
// created or destroyed at runtime.
func DefaultRooms() []Room {
	return []Room{
		{ID: "lobby", Name: "Lobby", Description: "Meeting point for everyone", Kind: KindLobby},
		{ID: "general", Name: "General", Description: "Open text and voice chat", Kind: KindGeneral},
		{ID: "handy", Name: "Handy", Description: "Push-to-talk radio channel", Kind: KindPTTRadio},
	}
}
