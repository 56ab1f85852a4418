package interfaces

import (
	"context"

	"cosmic-chat/backend/internal/model"
	"cosmic-chat/backend/internal/service"
)

// The API layer depends on these contracts rather than on the concrete
// services, so handlers can be tested against generated mocks.

// ChatService covers saved chats and message submission.
type ChatService interface {
	DeleteChat(ctx context.Context, chatID string) error
	ListChats(ctx context.Context, query model.ChatQuery) ([]*model.Chat, error)
	GetFullChat(ctx context.Context, chatID string) (*model.FullChat, error)
	// HandleNewMessage returns an error for anything that fails before the
	// first delta. Otherwise the returned channel must be drained.
	HandleNewMessage(ctx context.Context, req *service.CreateMessageRequest) (<-chan model.StreamResponse, error)
}

// CredentialService manages the single stored API key.
type CredentialService interface {
	Status(ctx context.Context) (*service.CredentialStatus, error)
	Validate(ctx context.Context, token string) model.ValidationResult
	Save(ctx context.Context, token string) (model.ValidationResult, error)
	Clear(ctx context.Context) error
}

// ModelService lists the models reachable with the stored key.
type ModelService interface {
	List(ctx context.Context) (*service.ModelList, error)
}

// SettingsService defines the contract for managing application settings.
type SettingsService interface {
	InitAndGet(ctx context.Context, defaultModel string) (*service.Settings, error)
	Get(ctx context.Context) (*service.Settings, error)
	Save(ctx context.Context, settings *service.Settings) error
}
