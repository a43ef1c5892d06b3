// Package storage holds the external-store collaborators: the redis
// document store mirroring profiles and messages, and the disk blob store.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func profileKey(id domain.UserID) string {
	return fmt.Sprintf("users:%s", id)
}

func messageKey(id domain.MessageID) string {
	return fmt.Sprintf("messages:%s", id)
}

func roomMessagesKey(id domain.RoomID) string {
	return fmt.Sprintf("rooms:%s:messages", id)
}

type profileRecord struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
	Online   bool          `json:"online"`
	LastSeen time.Time     `json:"last_seen"`
}

// UpsertProfile creates the profile if absent, else refreshes the online
// flag and last-seen timestamp.
func (s *RedisStore) UpsertProfile(ctx context.Context, user domain.User) error {
	rec := profileRecord{
		ID:       user.ID,
		Username: user.Username,
		Online:   user.Online,
		LastSeen: time.Now().UTC(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, profileKey(user.ID), b, 0).Err()
}

// AppendMessage writes the message record and links it into the room's
// append-only collection in one transaction.
func (s *RedisStore) AppendMessage(ctx context.Context, msg domain.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, messageKey(msg.ID), b, 0)
	pipe.RPush(ctx, roomMessagesKey(msg.RoomID), string(msg.ID))
	_, err = pipe.Exec(ctx)
	return err
}
