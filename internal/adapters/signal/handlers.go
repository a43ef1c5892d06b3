package signal

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/app"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/core"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

// ack is the structured result for requests that carry a seq.
type ack struct {
	Type      string           `json:"type"`
	Op        string           `json:"op"`
	Seq       int64            `json:"seq,omitempty"`
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
	RoomID    domain.RoomID    `json:"room_id,omitempty"`
	UserCount int              `json:"user_count,omitempty"`
	MessageID domain.MessageID `json:"message_id,omitempty"`
}

func failAck(op string, seq int64, err error) ack {
	return ack{Type: "ack", Op: op, Seq: seq, Error: err.Error()}
}

func (ctl *Controller) handleRegister(ctx context.Context, sid core.SessionID, conn *WsSignalConn, data []byte) {
	var p struct {
		Seq      int64  `json:"seq"`
		UserID   string `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad register payload")
		return
	}

	res, err := ctl.Orch.Register(ctx, sid, domain.UserID(p.UserID), p.Username)
	if err != nil {
		ctl.sendJSON(conn, failAck("register", p.Seq, err))
		return
	}

	ctl.sendJSON(conn, app.RoomsEvent{Type: app.EvRooms, Rooms: res.Rooms})
	ctl.sendJSON(conn, ack{Type: "ack", Op: "register", Seq: p.Seq, Success: true})
}

func (ctl *Controller) handleJoin(conn *WsSignalConn, data []byte) {
	var p struct {
		Seq      int64  `json:"seq"`
		RoomID   string `json:"room_id"`
		Room     string `json:"room"` // legacy alias
		UserID   string `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	roomID := p.RoomID
	if roomID == "" {
		roomID = p.Room
	}

	res, err := ctl.Orch.Join(domain.UserID(p.UserID), p.Username, domain.RoomID(roomID))
	if err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			ctl.sendJSON(conn, struct {
				Type   string `json:"type"`
				RoomID string `json:"room_id"`
				Error  string `json:"error"`
			}{"join_error", roomID, "room not found"})
		}
		ctl.sendJSON(conn, failAck("join_room", p.Seq, err))
		return
	}

	ctl.sendJSON(conn, ack{
		Type:      "ack",
		Op:        "join_room",
		Seq:       p.Seq,
		Success:   true,
		RoomID:    res.RoomID,
		UserCount: res.UserCount,
	})
}

func (ctl *Controller) handleSendText(ctx context.Context, conn *WsSignalConn, data []byte) {
	var p struct {
		Seq      int64  `json:"seq"`
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		RoomID   string `json:"room_id"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send_text payload")
		return
	}

	if ctl.Limiter != nil && !ctl.Limiter.Allow(domain.UserID(p.UserID)) {
		ctl.sendJSON(conn, failAck("send_text", p.Seq, errRateLimited))
		return
	}

	msg, err := ctl.Orch.SendText(ctx, domain.UserID(p.UserID), p.Username, domain.RoomID(p.RoomID), p.Text)
	if err != nil {
		ctl.sendJSON(conn, failAck("send_text", p.Seq, err))
		return
	}
	ctl.sendJSON(conn, ack{Type: "ack", Op: "send_text", Seq: p.Seq, Success: true, MessageID: msg.ID})
}

func (ctl *Controller) handleSendAudio(ctx context.Context, conn *WsSignalConn, data []byte) {
	var p struct {
		Seq      int64  `json:"seq"`
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		RoomID   string `json:"room_id"`
		Payload  string `json:"payload"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send_audio payload")
		return
	}

	if ctl.Limiter != nil && !ctl.Limiter.Allow(domain.UserID(p.UserID)) {
		ctl.sendJSON(conn, failAck("send_audio", p.Seq, errRateLimited))
		return
	}

	msg, err := ctl.Orch.SendAudio(ctx, domain.UserID(p.UserID), p.Username, domain.RoomID(p.RoomID), p.Payload)
	if err != nil {
		ctl.sendJSON(conn, failAck("send_audio", p.Seq, err))
		return
	}
	ctl.sendJSON(conn, ack{Type: "ack", Op: "send_audio", Seq: p.Seq, Success: true, MessageID: msg.ID})
}

func (ctl *Controller) handleRequestToken(conn *WsSignalConn, data []byte) {
	var p struct {
		RoomID   string `json:"room_id"`
		UserID   string `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad request_token payload")
		return
	}
	ctl.Orch.RequestTalk(domain.RoomID(p.RoomID), domain.UserID(p.UserID), p.Username)
}

func (ctl *Controller) handleReleaseToken(conn *WsSignalConn, data []byte) {
	var p struct {
		RoomID string `json:"room_id"`
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad release_token payload")
		return
	}
	ctl.Orch.ReleaseTalk(domain.RoomID(p.RoomID), domain.UserID(p.UserID))
}

func (ctl *Controller) handlePing(conn *WsSignalConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *Controller) handleGetRooms(conn *WsSignalConn) {
	ctl.sendJSON(conn, app.RoomsEvent{Type: app.EvRooms, Rooms: ctl.Orch.Rooms()})
}

func (ctl *Controller) handleGetUsers(conn *WsSignalConn, data []byte) {
	var p struct {
		RoomID string `json:"room_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad get_users payload")
		return
	}
	roomID := domain.RoomID(p.RoomID)
	if roomID == "" {
		roomID = "general"
	}

	members := ctl.Orch.MembersOf(roomID)
	ctl.sendJSON(conn, struct {
		Type    string           `json:"type"`
		RoomID  domain.RoomID    `json:"room_id"`
		Members []core.MemberDTO `json:"members"`
		Count   int              `json:"count"`
	}{"room_users", roomID, members, len(members)})
}
