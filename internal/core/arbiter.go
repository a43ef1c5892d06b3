package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

// TalkArbiter owns the per-room talk-token state machines. Each room is
// either Idle (no grants entry) or Held (entry names the single holder).
// Requests are never queued; a denied requester must retry later.
type TalkArbiter struct {
	mu     sync.Mutex
	grants map[domain.RoomID]domain.TalkGrant
}

func NewTalkArbiter() *TalkArbiter {
	return &TalkArbiter{grants: make(map[domain.RoomID]domain.TalkGrant)}
}

// Request is the only transition into Held. It returns (grant, true) when
// the room was Idle and the requester now holds the token, and
// (currentHolder, false) when the room is already Held; the recorded holder
// never changes on a denial.
func (a *TalkArbiter) Request(roomID domain.RoomID, userID domain.UserID, username string) (domain.TalkGrant, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cur, ok := a.grants[roomID]; ok {
		log.Debug().Str("module", "core.arbiter").Str("room", string(roomID)).Str("user", string(userID)).Str("holder", string(cur.UserID)).Msg("token denied")
		return cur, false
	}
	grant := domain.TalkGrant{UserID: userID, Username: username, Since: time.Now().UTC()}
	a.grants[roomID] = grant
	log.Info().Str("module", "core.arbiter").Str("room", string(roomID)).Str("user", string(userID)).Msg("token granted")
	return grant, true
}

// Release transitions Held -> Idle when userID is the recorded holder.
// Calls on an Idle room or by a non-holder are silent no-ops.
func (a *TalkArbiter) Release(roomID domain.RoomID, userID domain.UserID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	cur, ok := a.grants[roomID]
	if !ok || cur.UserID != userID {
		return false
	}
	delete(a.grants, roomID)
	log.Info().Str("module", "core.arbiter").Str("room", string(roomID)).Str("user", string(userID)).Msg("token released")
	return true
}

// ReleaseAll reclaims every token held by userID and returns the rooms
// transitioned to Idle. This is the forced-release path on disconnect, the
// only way a token is reclaimed without the holder's cooperation.
func (a *TalkArbiter) ReleaseAll(userID domain.UserID) []domain.RoomID {
	a.mu.Lock()
	defer a.mu.Unlock()

	var released []domain.RoomID
	for roomID, grant := range a.grants {
		if grant.UserID == userID {
			delete(a.grants, roomID)
			released = append(released, roomID)
		}
	}
	if len(released) > 0 {
		log.Info().Str("module", "core.arbiter").Str("user", string(userID)).Int("rooms", len(released)).Msg("tokens force-released")
	}
	return released
}

// Holder reports the current grant; ok is false for an Idle room.
func (a *TalkArbiter) Holder(roomID domain.RoomID) (domain.TalkGrant, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	grant, ok := a.grants[roomID]
	return grant, ok
}
