package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/interfaces"
	"cosmic-chat/backend/internal/model"
	"cosmic-chat/backend/internal/service"
)

// Values accepted by the `sort` query parameter of GET /chats.
const (
	sortNewest = "newest"
	sortOldest = "oldest"
)

// ChatHandler serves saved chats, settings and message submission.
type ChatHandler struct {
	chatService     interfaces.ChatService
	settingsService interfaces.SettingsService
}

func NewChatHandler(chatSvc interfaces.ChatService, settingsSvc interfaces.SettingsService) *ChatHandler {
	return &ChatHandler{chatService: chatSvc, settingsService: settingsSvc}
}

// GetSettings godoc
// @Summary      Get settings
// @Description  Returns the custom instructions and the default model.
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  service.Settings
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/settings [get]
func (h *ChatHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary      Update settings
// @Description  Saves the custom instructions and the default model. The model must be one the provider supports.
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        settings  body      service.Settings  true  "New settings"
// @Success      200       {object}  StatusResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /v1/settings [put]
func (h *ChatHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings service.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&settings); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.settingsService.Save(r.Context(), &settings); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// GetChats godoc
// @Summary      List saved chats
// @Description  Lists saved chats, optionally filtered by a case-insensitive title search.
// @Tags         Chats
// @Produce      json
// @Param        search  query     string  false  "Title substring"
// @Param        sort    query     string  false  "newest (default) or oldest"
// @Success      200     {array}   model.Chat
// @Failure      400     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /v1/chats [get]
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	query := model.ChatQuery{Search: r.URL.Query().Get("search")}
	switch sort := r.URL.Query().Get("sort"); sort {
	case "", sortNewest:
	case sortOldest:
		query.Oldest = true
	default:
		respondWithError(w, fmt.Errorf("%w: sort must be %q or %q, got %q", app_errors.ErrValidation, sortNewest, sortOldest, sort))
		return
	}

	chats, err := h.chatService.ListChats(r.Context(), query)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if chats == nil {
		chats = []*model.Chat{}
	}
	respondWithJSON(w, http.StatusOK, chats)
}

// GetChat godoc
// @Summary      Get a chat
// @Description  Returns a saved chat with its full transcript.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path      string  true  "Chat ID"
// @Success      200     {object}  model.FullChat
// @Failure      404     {object}  ErrorResponse
// @Router       /v1/chats/{chatID} [get]
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	fullChat, err := h.chatService.GetFullChat(r.Context(), chi.URLParam(r, "chatID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, fullChat)
}

// HandleDeleteChat godoc
// @Summary      Delete a chat
// @Tags         Chats
// @Produce      json
// @Param        chatID  path      string  true  "Chat ID"
// @Success      200     {object}  StatusResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /v1/chats/{chatID} [delete]
func (h *ChatHandler) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.DeleteChat(r.Context(), chi.URLParam(r, "chatID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// HandleStreamMessage godoc
// @Summary      Send a message
// @Description  Relays the conversation to the upstream provider and streams the reply as Server-Sent Events.
// @Description  Failures before the first token are plain JSON errors. Later failures arrive as an `error` event.
// @Tags         Chats
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      service.CreateMessageRequest  true  "Message or conversation"
// @Success      200      {object}  model.StreamResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Router       /v1/chat [post]
func (h *ChatHandler) HandleStreamMessage(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	stream, err := h.chatService.HandleNewMessage(r.Context(), &req)
	if err != nil {
		respondWithError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// The stream is drained to the end even after the client goes away so
	// the producer can finish.
	disconnected := false
	for chunk := range stream {
		if disconnected {
			continue
		}
		if chunk.Error != "" || chunk.Code != "" {
			if chunk.Code == model.CodeCancelled {
				continue
			}
			sendStreamError(w, ErrorResponse{Error: chunk.Error, Code: chunk.Code, Status: chunk.Status, ChatID: chunk.ChatID})
			continue
		}
		if err := writeStreamEvent(w, chunk); err != nil {
			slog.Info("Client disconnected from stream", "error", err)
			disconnected = true
		}
	}
}
