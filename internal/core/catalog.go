package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

type roomState struct {
	room    domain.Room
	members map[domain.UserID]string // user id -> display name
}

// Catalog is the threadsafe in-memory room registry. The room set is fixed
// at construction; it owns every member set plus the inverse user->room
// index, so a join that transfers a user between rooms is one step under
// the lock and no caller can observe a user in two rooms.
type Catalog struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]*roomState
	order  []domain.RoomID
	byUser map[domain.UserID]domain.RoomID
}

func NewCatalog(rooms []domain.Room) *Catalog {
	c := &Catalog{
		rooms:  make(map[domain.RoomID]*roomState, len(rooms)),
		order:  make([]domain.RoomID, 0, len(rooms)),
		byUser: make(map[domain.UserID]domain.RoomID),
	}
	for _, r := range rooms {
		c.rooms[r.ID] = &roomState{room: r, members: make(map[domain.UserID]string)}
		c.order = append(c.order, r.ID)
	}
	return c
}

func (c *Catalog) Lookup(id domain.RoomID) (domain.Room, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rs, ok := c.rooms[id]
	if !ok {
		return domain.Room{}, false
	}
	return rs.room, true
}

// List keeps the seeding order so snapshots are stable.
func (c *Catalog) List() []RoomInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]RoomInfo, 0, len(c.order))
	for _, id := range c.order {
		rs := c.rooms[id]
		out = append(out, RoomInfo{
			ID:          rs.room.ID,
			Name:        rs.room.Name,
			Description: rs.room.Description,
			Kind:        rs.room.Kind,
			Private:     rs.room.Private,
			MemberCount: len(rs.members),
			MaxMembers:  domain.MaxRoomMembers,
		})
	}
	return out
}

// JoinResult reports the applied transition. When Transferred is set the
// user was removed from PrevRoomID (now holding PrevCount members) in the
// same step that added it to RoomID.
type JoinResult struct {
	RoomID      domain.RoomID
	UserCount   int
	Transferred bool
	PrevRoomID  domain.RoomID
	PrevCount   int
}

// Join adds the user to roomID, evicting it from its current room first.
// The remove-then-add runs under one lock acquisition.
func (c *Catalog) Join(userID domain.UserID, username string, roomID domain.RoomID) (JoinResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target, ok := c.rooms[roomID]
	if !ok {
		return JoinResult{}, ErrRoomNotFound
	}

	res := JoinResult{RoomID: roomID}
	if prev, ok := c.byUser[userID]; ok && prev != roomID {
		prevRoom := c.rooms[prev]
		delete(prevRoom.members, userID)
		res.Transferred = true
		res.PrevRoomID = prev
		res.PrevCount = len(prevRoom.members)
	}

	target.members[userID] = username
	c.byUser[userID] = roomID
	res.UserCount = len(target.members)

	log.Debug().Str("module", "core.catalog").Str("user", string(userID)).Str("room", string(roomID)).Int("count", res.UserCount).Msg("member joined")
	return res, nil
}

// LeaveResult reports the vacated room; Left is false when the user had no
// current room and nothing changed.
type LeaveResult struct {
	RoomID    domain.RoomID
	UserCount int
	Left      bool
}

func (c *Catalog) Leave(userID domain.UserID) LeaveResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	roomID, ok := c.byUser[userID]
	if !ok {
		return LeaveResult{}
	}
	rs := c.rooms[roomID]
	delete(rs.members, userID)
	delete(c.byUser, userID)

	log.Debug().Str("module", "core.catalog").Str("user", string(userID)).Str("room", string(roomID)).Int("count", len(rs.members)).Msg("member left")
	return LeaveResult{RoomID: roomID, UserCount: len(rs.members), Left: true}
}

// RoomOf is the membership index lookup: the at-most-one current room.
func (c *Catalog) RoomOf(userID domain.UserID) (domain.RoomID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byUser[userID]
	return id, ok
}

func (c *Catalog) MemberIDs(roomID domain.RoomID) []domain.UserID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rs, ok := c.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.UserID, 0, len(rs.members))
	for id := range rs.members {
		out = append(out, id)
	}
	return out
}

func (c *Catalog) MembersSnapshot(roomID domain.RoomID) []MemberDTO {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rs, ok := c.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]MemberDTO, 0, len(rs.members))
	for id, name := range rs.members {
		out = append(out, MemberDTO{ID: id, Username: name})
	}
	return out
}

func (c *Catalog) MemberCount(roomID domain.RoomID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rs, ok := c.rooms[roomID]
	if !ok {
		return 0
	}
	return len(rs.members)
}
