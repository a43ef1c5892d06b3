package app

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/core"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

type sessionEntry struct {
	User   *domain.User
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Registry maps live connections to user identities. The live map is
// authoritative for session behavior; the persisted profile is only an
// eventually-consistent mirror.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	byUser   map[domain.UserID]core.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		byUser:   make(map[domain.UserID]core.SessionID),
	}
}

// Bind attaches a fresh connection. The session carries no identity until
// SetUser runs on the register event.
func (r *Registry) Bind(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound connection")
}

// SetUser registers the identity for sid. A reconnecting user id takes over
// from its previous session.
func (r *Registry) SetUser(sid core.SessionID, user *domain.User) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.User = user
	r.byUser[user.ID] = sid
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(user.ID)).Msg("registered user")
	return true
}

func (r *Registry) UserOf(sid core.SessionID) (*domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.User == nil {
		return nil, false
	}
	return e.User, true
}

func (r *Registry) ConnOf(userID domain.UserID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byUser[userID]
	if !ok {
		return nil, false
	}
	e, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	return e.Conn, true
}

func (r *Registry) SIDOf(userID domain.UserID) (core.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byUser[userID]
	return sid, ok
}

// Unbind removes the session and returns the user that was attached to it,
// only if the session is still that user's current one. A session superseded
// by a reconnect is unbound as anonymous: the user now lives on the newer
// session and must not be torn down with the stale connection. The
// connection's context is canceled here.
func (r *Registry) Unbind(sid core.SessionID) (*domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	delete(r.sessions, sid)
	if e.Cancel != nil {
		e.Cancel()
	}
	if e.User != nil {
		if cur, ok := r.byUser[e.User.ID]; ok && cur == sid {
			delete(r.byUser, e.User.ID)
			log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(e.User.ID)).Msg("unbound session")
			return e.User, true
		}
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(e.User.ID)).Msg("unbound superseded session")
		return nil, false
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound anonymous session")
	return nil, false
}

// OnlineSnapshot lists registered users, sorted by id for stable payloads.
func (r *Registry) OnlineSnapshot() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.byUser))
	for userID, sid := range r.byUser {
		if e, ok := r.sessions[sid]; ok && e.User != nil && e.User.ID == userID {
			out = append(out, *e.User)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Connections snapshots every live connection, registered or not.
func (r *Registry) Connections() []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(r.sessions))
	for _, e := range r.sessions {
		out = append(out, e.Conn)
	}
	return out
}
