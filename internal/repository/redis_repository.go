package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cosmic-chat/backend/internal/model"
)

type redisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) Repository {
	return &redisRepository{rdb: rdb}
}

// Key Generation Helpers
const chatsIndexKey = "chats"

func (r *redisRepository) chatKey(chatID string) string      { return fmt.Sprintf("chat:%s", chatID) }
func (r *redisRepository) messagesKey(chatID string) string  { return fmt.Sprintf("chat:%s:messages", chatID) }
func (r *redisRepository) messageKey(messageID string) string { return fmt.Sprintf("message:%s", messageID) }

// --- Chat Operations ---
func (r *redisRepository) CreateChat(ctx context.Context, chat *model.Chat) error {
	chatMap, err := structToMap(chat)
	if err != nil {
		return fmt.Errorf("could not convert chat to map: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.chatKey(chat.ID), chatMap)
	pipe.ZAdd(ctx, chatsIndexKey, redis.Z{Score: float64(chat.CreatedAt.UnixNano()), Member: chat.ID})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetChat(ctx context.Context, chatID string) (*model.Chat, error) {
	chatMap, err := r.rdb.HGetAll(ctx, r.chatKey(chatID)).Result()
	if err != nil {
		return nil, err
	}
	if len(chatMap) == 0 {
		return nil, ErrNotFound
	}
	var chat model.Chat
	return &chat, mapToStruct(chatMap, &chat)
}

// GetChats walks the creation-time index and filters titles in memory.
func (r *redisRepository) GetChats(ctx context.Context, q model.ChatQuery) ([]*model.Chat, error) {
	var (
		chatIDs []string
		err     error
	)
	if q.Oldest {
		chatIDs, err = r.rdb.ZRange(ctx, chatsIndexKey, 0, -1).Result()
	} else {
		chatIDs, err = r.rdb.ZRevRange(ctx, chatsIndexKey, 0, -1).Result()
	}
	if err != nil {
		return nil, err
	}

	chats := make([]*model.Chat, 0, len(chatIDs))
	for _, id := range chatIDs {
		chat, err := r.GetChat(ctx, id)
		if err != nil {
			continue
		}
		if !titleMatches(chat.Title, q.Search) {
			continue
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

func (r *redisRepository) DeleteChat(ctx context.Context, chatID string) error {
	if _, err := r.GetChat(ctx, chatID); err != nil {
		return err
	}

	msgIDs, err := r.rdb.LRange(ctx, r.messagesKey(chatID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("could not get message IDs for deletion: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	if len(msgIDs) > 0 {
		messageKeys := make([]string, len(msgIDs))
		for i, id := range msgIDs {
			messageKeys[i] = r.messageKey(id)
		}
		pipe.Del(ctx, messageKeys...)
	}
	pipe.Del(ctx, r.chatKey(chatID), r.messagesKey(chatID))
	pipe.ZRem(ctx, chatsIndexKey, chatID)

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute chat deletion pipeline: %w", err)
	}
	return nil
}

// --- Message Operations ---

// AddMessage keeps message ids in a list so append order survives equal
// timestamps.
func (r *redisRepository) AddMessage(ctx context.Context, chatID string, message *model.Message) error {
	exists, err := r.rdb.Exists(ctx, r.chatKey(chatID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	msgMap, err := structToMap(message)
	if err != nil {
		return fmt.Errorf("could not convert message to map: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.messageKey(message.ID), msgMap)
	pipe.RPush(ctx, r.messagesKey(chatID), message.ID)
	pipe.HSet(ctx, r.chatKey(chatID), "updated_at", time.Now().UTC().Format(time.RFC3339Nano))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	msgIDs, err := r.rdb.LRange(ctx, r.messagesKey(chatID), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.Message{}, nil
		}
		return nil, err
	}
	messages := make([]model.Message, 0, len(msgIDs))
	for _, id := range msgIDs {
		msgMap, err := r.rdb.HGetAll(ctx, r.messageKey(id)).Result()
		if err != nil {
			return nil, err
		}
		var msg model.Message
		if err := mapToStruct(msgMap, &msg); err != nil {
			return nil, fmt.Errorf("could not decode message %s: %w", id, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// --- Helper Functions ---
func structToMap(obj interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var mapData map[string]interface{}
	return mapData, json.Unmarshal(data, &mapData)
}

func mapToStruct(data map[string]string, obj interface{}) error {
	jsonStr, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonStr, obj)
}
