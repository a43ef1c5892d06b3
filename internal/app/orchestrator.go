package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/core"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

// Orchestrator wires the session registry, the room catalog and the talk
// arbiter, and owns every fan-out. Membership and token mutations are
// authoritative in memory; store writes never roll them back.
type Orchestrator struct {
	Registry *Registry
	Catalog  *core.Catalog
	Arbiter  *core.TalkArbiter
	Profiles core.ProfileStore
	Messages core.MessageStore
	Blobs    core.BlobStore
	Policy   Policy
}

// Connect binds a fresh, still-anonymous connection.
func (o *Orchestrator) Connect(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	o.Registry.Bind(sid, conn, cancel)
}

type RegisterResult struct {
	Users []domain.User
	Rooms []core.RoomInfo
}

// Register attaches a user identity to the connection, mirrors the profile
// into the document store and broadcasts the online-user snapshot. The
// mirror write is best-effort: a failure is logged, the live registration
// stands.
func (o *Orchestrator) Register(ctx context.Context, sid core.SessionID, userID domain.UserID, username string) (RegisterResult, error) {
	user, err := domain.NewUser(userID, username)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	if !o.Registry.SetUser(sid, user) {
		return RegisterResult{}, fmt.Errorf("%w: unknown session", core.ErrInvalidRequest)
	}

	if err := o.Profiles.UpsertProfile(ctx, *user); err != nil {
		log.Warn().Err(err).Str("module", "app.orchestrator").Str("user", string(userID)).Msg("profile mirror write failed")
	}

	o.broadcastPresence()
	return RegisterResult{Users: o.Registry.OnlineSnapshot(), Rooms: o.Catalog.List()}, nil
}

// Join places the user into roomID, transferring it out of its current room
// first. The vacated room sees a member_left with the decremented count, the
// target room (joiner included) a member_joined with the new count.
func (o *Orchestrator) Join(userID domain.UserID, username string, roomID domain.RoomID) (core.JoinResult, error) {
	if userID == "" || username == "" || roomID == "" {
		return core.JoinResult{}, fmt.Errorf("%w: user id, username and room id are required", core.ErrInvalidRequest)
	}

	res, err := o.Catalog.Join(userID, username, roomID)
	if err != nil {
		return core.JoinResult{}, err
	}

	if res.Transferred {
		o.notifyRoom(res.PrevRoomID, MemberLeftEvent{
			Type:      EvMemberLeft,
			RoomID:    res.PrevRoomID,
			UserID:    userID,
			Username:  username,
			UserCount: res.PrevCount,
		})
	}
	o.notifyRoom(roomID, MemberJoinedEvent{
		Type:      EvMemberJoined,
		RoomID:    roomID,
		UserID:    userID,
		Username:  username,
		UserCount: res.UserCount,
	})
	return res, nil
}

// Leave is the disconnect-path removal; a user with no current room is a
// no-op.
func (o *Orchestrator) Leave(userID domain.UserID, username string) {
	res := o.Catalog.Leave(userID)
	if !res.Left {
		return
	}
	o.notifyRoom(res.RoomID, MemberLeftEvent{
		Type:      EvMemberLeft,
		RoomID:    res.RoomID,
		UserID:    userID,
		Username:  username,
		UserCount: res.UserCount,
	})
}

// RequestTalk runs the grant/deny arbitration. Unknown rooms and empty user
// ids are ignored without a response.
func (o *Orchestrator) RequestTalk(roomID domain.RoomID, userID domain.UserID, username string) {
	if userID == "" {
		return
	}
	if _, ok := o.Catalog.Lookup(roomID); !ok {
		log.Warn().Str("module", "app.orchestrator").Str("room", string(roomID)).Msg("talk request for unknown room ignored")
		return
	}

	grant, granted := o.Arbiter.Request(roomID, userID, username)
	if !granted {
		o.unicastUser(userID, TokenDeniedEvent{
			Type:       EvTokenDenied,
			RoomID:     roomID,
			HolderID:   grant.UserID,
			HolderName: grant.Username,
		})
		return
	}

	o.unicastUser(userID, TokenGrantedEvent{Type: EvTokenGranted, RoomID: roomID, Since: grant.Since})
	holder := userID
	o.notifyRoom(roomID, CurrentSpeakerEvent{Type: EvCurrentSpeaker, RoomID: roomID, UserID: &holder, Username: username})
}

// ReleaseTalk releases the token if userID is the holder; otherwise nothing
// happens and nothing is sent.
func (o *Orchestrator) ReleaseTalk(roomID domain.RoomID, userID domain.UserID) {
	if o.Arbiter.Release(roomID, userID) {
		o.notifyTokenReleased(roomID, userID)
	}
}

// Disconnect synchronously unwinds the session: tokens are force-released,
// membership is removed, presence is re-broadcast. Runs before any further
// event for the connection is processed.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	user, ok := o.Registry.Unbind(sid)
	if !ok {
		return
	}
	for _, roomID := range o.Arbiter.ReleaseAll(user.ID) {
		o.notifyTokenReleased(roomID, user.ID)
	}
	o.Leave(user.ID, user.Username)
	o.broadcastPresence()
}

func (o *Orchestrator) Rooms() []core.RoomInfo { return o.Catalog.List() }

func (o *Orchestrator) OnlineUsers() []domain.User { return o.Registry.OnlineSnapshot() }

func (o *Orchestrator) MembersOf(roomID domain.RoomID) []core.MemberDTO {
	return o.Catalog.MembersSnapshot(roomID)
}

func (o *Orchestrator) notifyTokenReleased(roomID domain.RoomID, userID domain.UserID) {
	o.notifyRoom(roomID, TokenReleasedEvent{Type: EvTokenReleased, RoomID: roomID, UserID: userID})
	o.notifyRoom(roomID, CurrentSpeakerEvent{Type: EvCurrentSpeaker, RoomID: roomID, UserID: nil})
}

// notifyRoom delivers control events; slow connections only get a warning.
func (o *Orchestrator) notifyRoom(roomID domain.RoomID, v any) {
	frame, ok := encode(v)
	if !ok {
		return
	}
	for _, id := range o.Catalog.MemberIDs(roomID) {
		conn, ok := o.Registry.ConnOf(id)
		if !ok {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app.orchestrator").Str("room", string(roomID)).Str("user", string(id)).Msg("notify dropped")
		}
	}
}

// fanoutRoom delivers message events and consults the backpressure policy
// for members that could not keep up.
func (o *Orchestrator) fanoutRoom(roomID domain.RoomID, v any) {
	frame, ok := encode(v)
	if !ok {
		return
	}
	var slow []domain.UserID
	for _, id := range o.Catalog.MemberIDs(roomID) {
		conn, ok := o.Registry.ConnOf(id)
		if !ok {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			slow = append(slow, id)
		}
	}
	if o.Policy == nil {
		return
	}
	for _, id := range slow {
		if o.Policy.OnBackPressure(roomID, id) == KickMember {
			if sid, ok := o.Registry.SIDOf(id); ok {
				log.Warn().Str("module", "app.orchestrator").Str("room", string(roomID)).Str("user", string(id)).Msg("kicking slow member")
				o.Disconnect(sid)
			}
		}
	}
}

func (o *Orchestrator) broadcastAll(v any) {
	frame, ok := encode(v)
	if !ok {
		return
	}
	for _, conn := range o.Registry.Connections() {
		if err := conn.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app.orchestrator").Msg("broadcast dropped")
		}
	}
}

func (o *Orchestrator) unicastUser(userID domain.UserID, v any) {
	conn, ok := o.Registry.ConnOf(userID)
	if !ok {
		return
	}
	frame, okEnc := encode(v)
	if !okEnc {
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.orchestrator").Str("user", string(userID)).Msg("unicast dropped")
	}
}

func (o *Orchestrator) broadcastPresence() {
	users := o.Registry.OnlineSnapshot()
	o.broadcastAll(OnlineUsersEvent{Type: EvOnlineUsers, Users: users, Count: len(users)})
}
