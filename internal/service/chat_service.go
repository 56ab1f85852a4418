package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/model"
	"cosmic-chat/backend/internal/repository"
)

const titleLength = 30

// CreateMessageRequest is a chat submission from the client. With Messages
// set the conversation is relayed as-is and nothing is saved; otherwise
// Content is appended to the chat named by ChatID, or to a new chat.
type CreateMessageRequest struct {
	ChatID   string          `json:"chat_id"`
	Content  string          `json:"content" validate:"required_without=Messages"`
	Messages []model.Message `json:"messages" validate:"omitempty,dive"`
	Model    string          `json:"model"`
}

type ChatService struct {
	repo        repository.Repository
	relay       *Relay
	credentials *CredentialService
	settings    *SettingsService

	// inFlight holds the ids of chats with a submission in progress.
	inFlight sync.Map
}

func NewChatService(repo repository.Repository, relay *Relay, credentials *CredentialService, settings *SettingsService) *ChatService {
	return &ChatService{repo: repo, relay: relay, credentials: credentials, settings: settings}
}

// DeleteChat removes a chat and its transcript.
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	if err := s.repo.DeleteChat(ctx, chatID); err != nil {
		return translateRepoError(err, "could not delete chat")
	}
	slog.Info("Deleted chat", "chat_id", chatID)
	return nil
}

// ListChats returns saved chats filtered by title and ordered by creation.
func (s *ChatService) ListChats(ctx context.Context, query model.ChatQuery) ([]*model.Chat, error) {
	return s.repo.GetChats(ctx, query)
}

// GetFullChat retrieves a chat's metadata and all its messages.
func (s *ChatService) GetFullChat(ctx context.Context, chatID string) (*model.FullChat, error) {
	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, translateRepoError(err, "could not get chat")
	}
	messages, err := s.repo.GetMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("could not get messages: %w", err)
	}
	return &model.FullChat{Chat: *chat, Messages: messages}, nil
}

// HandleNewMessage starts a submission. Errors returned here happened
// before anything was streamed. The returned channel ends with exactly
// one Done or Error event and must be drained.
func (s *ChatService) HandleNewMessage(ctx context.Context, req *CreateMessageRequest) (<-chan model.StreamResponse, error) {
	token, err := s.credentials.Token(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	modelName := req.Model
	if modelName == "" {
		modelName = settings.DefaultModel
	}
	send := SendRequest{
		Model:      modelName,
		Credential: token,
		System:     settings.CustomInstructions,
	}

	if len(req.Messages) > 0 {
		send.Messages = req.Messages
		stream, err := s.relay.Send(ctx, send)
		if err != nil {
			s.credentials.ReportFailure(ctx, token, err)
			return nil, err
		}
		return stream, nil
	}
	return s.handleSavedChat(ctx, req, send)
}

func (s *ChatService) handleSavedChat(ctx context.Context, req *CreateMessageRequest, send SendRequest) (<-chan model.StreamResponse, error) {
	chatID := req.ChatID
	if chatID == "" {
		chatID = uuid.NewString()
	}
	if _, busy := s.inFlight.LoadOrStore(chatID, struct{}{}); busy {
		return nil, fmt.Errorf("%w: chat %s already has a submission in progress", app_errors.ErrConflict, chatID)
	}
	release := func() { s.inFlight.Delete(chatID) }

	if req.ChatID == "" {
		now := time.Now().UTC()
		chat := &model.Chat{
			ID:        chatID,
			Title:     ChatTitle(req.Content),
			Model:     send.Model,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.CreateChat(ctx, chat); err != nil {
			release()
			return nil, fmt.Errorf("could not create chat: %w", err)
		}
		slog.Info("Created chat", "chat_id", chatID)
	}

	userMessage := &model.Message{ID: uuid.NewString(), Role: model.RoleUser, Content: req.Content, Timestamp: time.Now().UTC()}
	if err := s.repo.AddMessage(ctx, chatID, userMessage); err != nil {
		release()
		return nil, translateRepoError(err, "could not save user message")
	}

	history, err := s.repo.GetMessages(ctx, chatID)
	if err != nil {
		release()
		return nil, fmt.Errorf("could not get message history: %w", err)
	}
	send.Messages = history

	stream, err := s.relay.Send(ctx, send)
	if err != nil {
		release()
		s.credentials.ReportFailure(ctx, send.Credential, err)
		return nil, err
	}

	out := make(chan model.StreamResponse)
	go func() {
		defer close(out)
		defer release()

		var fullResponse strings.Builder
		for chunk := range stream {
			fullResponse.WriteString(chunk.Content)
			if chunk.Done || chunk.Error != "" {
				chunk.ChatID = chatID
			}
			if chunk.Done {
				// Persist before the terminal event so a client that reloads
				// the chat right after Done sees the reply.
				s.saveAssistantMessage(ctx, chatID, fullResponse.String())
			} else if chunk.Code == model.CodeCancelled {
				slog.Info("Submission cancelled", "chat_id", chatID)
			}
			out <- chunk
		}
	}()
	return out, nil
}

func (s *ChatService) saveAssistantMessage(ctx context.Context, chatID, content string) {
	msg := &model.Message{ID: uuid.NewString(), Role: model.RoleAssistant, Content: content, Timestamp: time.Now().UTC()}
	if err := s.repo.AddMessage(context.WithoutCancel(ctx), chatID, msg); err != nil {
		slog.Error("Failed to save assistant message", "chat_id", chatID, "error", err)
	}
}

// ChatTitle derives a saved chat's title from its first user message.
func ChatTitle(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) > titleLength {
		runes = runes[:titleLength]
	}
	return string(runes) + "..."
}

func translateRepoError(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", msg, app_errors.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
