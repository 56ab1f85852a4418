package repository

import (
	"context"
	"strings"

	"cosmic-chat/backend/internal/model"
)

// Repository defines the interface for transcript storage operations.
// This interface makes it easy to switch database implementations.
type Repository interface {
	CreateChat(ctx context.Context, chat *model.Chat) error
	// GetChat returns ErrNotFound when the chat does not exist.
	GetChat(ctx context.Context, chatID string) (*model.Chat, error)
	GetChats(ctx context.Context, query model.ChatQuery) ([]*model.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error

	// AddMessage appends message to the end of the chat's transcript.
	AddMessage(ctx context.Context, chatID string, message *model.Message) error
	// GetMessages returns the transcript in append order.
	GetMessages(ctx context.Context, chatID string) ([]model.Message, error)
}

// titleMatches reports whether title contains search, ignoring case across
// the whole of Unicode. An empty search matches every title.
func titleMatches(title, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(title), strings.ToLower(search))
}
