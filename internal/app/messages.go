package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/core"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

// SendText validates, persists and fans out a text message. The broadcast
// only happens once the store write succeeded; on failure the caller gets
// the error and no subscriber sees anything.
func (o *Orchestrator) SendText(ctx context.Context, userID domain.UserID, username string, roomID domain.RoomID, text string) (domain.Message, error) {
	if userID == "" || username == "" || roomID == "" || text == "" {
		return domain.Message{}, fmt.Errorf("%w: user id, username, room id and text are required", core.ErrInvalidRequest)
	}
	if _, ok := o.Catalog.Lookup(roomID); !ok {
		return domain.Message{}, core.ErrRoomNotFound
	}

	msg := domain.NewTextMessage(userID, username, roomID, text)
	if err := o.Messages.AppendMessage(ctx, msg); err != nil {
		log.Error().Err(err).Str("module", "app.messages").Str("room", string(roomID)).Msg("persist text message")
		return domain.Message{}, fmt.Errorf("persist message: %w", err)
	}

	o.deliver(roomID, userID, msg)
	return msg, nil
}

// SendAudio decodes the base64 payload, uploads it to the blob store and
// persists a message referencing the returned URL. Any failure along the
// way means no broadcast.
func (o *Orchestrator) SendAudio(ctx context.Context, userID domain.UserID, username string, roomID domain.RoomID, payload string) (domain.Message, error) {
	if userID == "" || roomID == "" || payload == "" {
		return domain.Message{}, fmt.Errorf("%w: user id, room id and payload are required", core.ErrInvalidRequest)
	}
	if _, ok := o.Catalog.Lookup(roomID); !ok {
		return domain.Message{}, core.ErrRoomNotFound
	}

	// Clients may send a full data URL; only the base64 part matters.
	if _, rest, found := strings.Cut(payload, ","); found && strings.HasPrefix(payload, "data:") {
		payload = rest
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: payload is not valid base64", core.ErrInvalidRequest)
	}

	path := fmt.Sprintf("%s/%s/%d-%s.webm", roomID, userID, time.Now().UnixMilli(), uuid.NewString())
	url, err := o.Blobs.Store(ctx, path, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.messages").Str("room", string(roomID)).Msg("store audio blob")
		return domain.Message{}, fmt.Errorf("store audio: %w", err)
	}

	msg := domain.NewAudioMessage(userID, username, roomID, url)
	if err := o.Messages.AppendMessage(ctx, msg); err != nil {
		log.Error().Err(err).Str("module", "app.messages").Str("room", string(roomID)).Msg("persist audio message")
		return domain.Message{}, fmt.Errorf("persist message: %w", err)
	}

	o.deliver(roomID, userID, msg)
	return msg, nil
}

func (o *Orchestrator) deliver(roomID domain.RoomID, sender domain.UserID, msg domain.Message) {
	o.fanoutRoom(roomID, NewMessageEvent{Type: EvNewMessage, Message: msg})
	o.unicastUser(sender, MessageSentEvent{Type: EvMessageSent, Message: msg})
}
