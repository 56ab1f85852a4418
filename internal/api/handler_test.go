// Black-box tests: only the exported handlers are exercised.
package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cosmic-chat/backend/internal/api"
	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/interfaces/mocks"
	"cosmic-chat/backend/internal/model"
	"cosmic-chat/backend/internal/service"
)

func setupChatHandler(t *testing.T) (*api.ChatHandler, *mocks.MockChatService, *mocks.MockSettingsService) {
	mockChatSvc := mocks.NewMockChatService(t)
	mockSettingsSvc := mocks.NewMockSettingsService(t)
	handler := api.NewChatHandler(mockChatSvc, mockSettingsSvc)
	return handler, mockChatSvc, mockSettingsSvc
}

// addChiURLParams injects URL parameters the way the chi router does, so
// chi.URLParam works when handlers are called directly.
func addChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for key, value := range params {
		chiCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

// streamOf returns a closed channel holding chunks, as a finished relay would.
func streamOf(chunks ...model.StreamResponse) <-chan model.StreamResponse {
	ch := make(chan model.StreamResponse, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestChatHandler_GetSettings(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// ARRANGE
		handler, _, mockSettingsSvc := setupChatHandler(t)
		expectedSettings := &service.Settings{DefaultModel: "gpt-4o", CustomInstructions: "Be brief."}
		mockSettingsSvc.On("Get", mock.Anything).Return(expectedSettings, nil).Once()

		// ACT
		req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
		rr := httptest.NewRecorder()
		handler.GetSettings(rr, req)

		// ASSERT
		assert.Equal(t, http.StatusOK, rr.Code)
		var got service.Settings
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, *expectedSettings, got)
	})

	t.Run("Failure", func(t *testing.T) {
		handler, _, mockSettingsSvc := setupChatHandler(t)
		mockSettingsSvc.On("Get", mock.Anything).Return(nil, app_errors.ErrInternal).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
		rr := httptest.NewRecorder()
		handler.GetSettings(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestChatHandler_UpdateSettings(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, _, mockSettingsSvc := setupChatHandler(t)
		settingsJSON := `{"custom_instructions":"Answer in French.","default_model":"gpt-4-turbo"}`
		mockSettingsSvc.On("Save", mock.Anything, mock.MatchedBy(func(s *service.Settings) bool {
			return s.DefaultModel == "gpt-4-turbo" && s.CustomInstructions == "Answer in French."
		})).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(settingsJSON))
		rr := httptest.NewRecorder()
		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Invalid JSON", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{invalid`))
		rr := httptest.NewRecorder()
		handler.UpdateSettings(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Validation Error", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"default_model":""}`))
		rr := httptest.NewRecorder()

		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Field 'DefaultModel' failed on the 'required' tag")
	})

	t.Run("Failure - Unsupported model", func(t *testing.T) {
		handler, _, mockSettingsSvc := setupChatHandler(t)
		mockSettingsSvc.On("Save", mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: model dall-e-3 is not supported", app_errors.ErrValidation)).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"default_model":"dall-e-3"}`))
		rr := httptest.NewRecorder()
		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Error, "dall-e-3")
	})
}

func TestChatHandler_GetChats(t *testing.T) {
	t.Run("Success - defaults to newest first", func(t *testing.T) {
		// ARRANGE
		handler, mockChatSvc, _ := setupChatHandler(t)
		expectedChats := []*model.Chat{{ID: "chat1", Title: "Test Chat..."}}
		mockChatSvc.On("ListChats", mock.Anything, model.ChatQuery{}).Return(expectedChats, nil).Once()

		// ACT
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
		rr := httptest.NewRecorder()
		handler.GetChats(rr, req)

		// ASSERT
		assert.Equal(t, http.StatusOK, rr.Code)
		var returnedChats []*model.Chat
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &returnedChats))
		assert.Equal(t, expectedChats, returnedChats)
	})

	t.Run("Success - search and oldest first", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("ListChats", mock.Anything, model.ChatQuery{Search: "go", Oldest: true}).Return(nil, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats?search=go&sort=oldest", nil)
		rr := httptest.NewRecorder()
		handler.GetChats(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("Failure - unknown sort", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats?sort=alphabetical", nil)
		rr := httptest.NewRecorder()
		handler.GetChats(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Service returns error", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("ListChats", mock.Anything, mock.Anything).Return(nil, errors.New("internal error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
		rr := httptest.NewRecorder()
		handler.GetChats(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "internal server error")
	})
}

func TestChatHandler_GetChat(t *testing.T) {
	chatID := "test-chat-id"

	t.Run("Success", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		expectedChat := &model.FullChat{Chat: model.Chat{ID: chatID}}
		mockChatSvc.On("GetFullChat", mock.Anything, chatID).Return(expectedChat, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/"+chatID, nil)
		req = addChiURLParams(req, map[string]string{"chatID": chatID})
		rr := httptest.NewRecorder()
		handler.GetChat(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("GetFullChat", mock.Anything, chatID).Return(nil, app_errors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/"+chatID, nil)
		req = addChiURLParams(req, map[string]string{"chatID": chatID})
		rr := httptest.NewRecorder()
		handler.GetChat(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestChatHandler_HandleDeleteChat(t *testing.T) {
	chatID := "test-chat-id"

	t.Run("Success", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("DeleteChat", mock.Anything, chatID).Return(nil).Once()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/chats/"+chatID, nil)
		req = addChiURLParams(req, map[string]string{"chatID": chatID})
		rr := httptest.NewRecorder()
		handler.HandleDeleteChat(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("DeleteChat", mock.Anything, chatID).Return(app_errors.ErrNotFound).Once()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/chats/"+chatID, nil)
		req = addChiURLParams(req, map[string]string{"chatID": chatID})
		rr := httptest.NewRecorder()
		handler.HandleDeleteChat(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestChatHandler_HandleStreamMessage(t *testing.T) {
	post := func(handler *api.ChatHandler, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.HandleStreamMessage(rr, req)
		return rr
	}

	t.Run("Success - deltas then done", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("HandleNewMessage", mock.Anything, mock.MatchedBy(func(r *service.CreateMessageRequest) bool {
			return r.Content == "hello"
		})).Return(streamOf(
			model.StreamResponse{Content: "Hi"},
			model.StreamResponse{Content: " there"},
			model.StreamResponse{Done: true, ChatID: "c1"},
		), nil).Once()

		rr := post(handler, `{"content": "hello"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
		body := rr.Body.String()
		assert.Contains(t, body, `data: {"content":"Hi","done":false}`)
		assert.Contains(t, body, `data: {"content":" there","done":false}`)
		assert.Contains(t, body, `"done":true,"chat_id":"c1"`)
		assert.NotContains(t, body, "event: error")
	})

	t.Run("Success - stateless conversation", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("HandleNewMessage", mock.Anything, mock.MatchedBy(func(r *service.CreateMessageRequest) bool {
			return len(r.Messages) == 2 && r.Messages[1].Role == model.RoleAssistant
		})).Return(streamOf(model.StreamResponse{Done: true}), nil).Once()

		rr := post(handler, `{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Missing credential is a 401 before streaming", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("HandleNewMessage", mock.Anything, mock.Anything).Return(nil, app_errors.ErrMissingCredential).Once()

		rr := post(handler, `{"content": "hello"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"API key is required","code":"missing-credential"}`, rr.Body.String())
	})

	t.Run("Upstream rejection keeps the provider status and message", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("HandleNewMessage", mock.Anything, mock.Anything).
			Return(nil, &app_errors.UpstreamError{Status: http.StatusTooManyRequests, Message: "Rate limit reached"}).Once()

		rr := post(handler, `{"content": "hello"}`)

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		body := decodeError(t, rr)
		assert.Equal(t, "Rate limit reached", body.Error)
		assert.Equal(t, model.CodeUpstreamRejected, body.Code)
	})

	t.Run("Transport failure is a 502", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("HandleNewMessage", mock.Anything, mock.Anything).
			Return(nil, app_errors.Transport(errors.New("connection refused"))).Once()

		rr := post(handler, `{"content": "hello"}`)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Equal(t, model.CodeTransportError, decodeError(t, rr).Code)
	})

	t.Run("Busy chat is a 409", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("HandleNewMessage", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: chat c1 already has a submission in progress", app_errors.ErrConflict)).Once()

		rr := post(handler, `{"chat_id":"c1","content": "hello"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Mid-stream failure is an error event after the deltas", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("HandleNewMessage", mock.Anything, mock.Anything).Return(streamOf(
			model.StreamResponse{Content: "partial"},
			model.StreamResponse{Error: "upstream transport error: unexpected EOF", Code: model.CodeTransportError, ChatID: "c1"},
		), nil).Once()

		rr := post(handler, `{"content": "hello"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		require.Contains(t, body, "event: error")
		assert.Less(t, strings.Index(body, `"content":"partial"`), strings.Index(body, "event: error"))
		assert.Contains(t, body, `"code":"transport-error"`)
	})

	t.Run("Cancellation writes nothing further", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("HandleNewMessage", mock.Anything, mock.Anything).Return(streamOf(
			model.StreamResponse{Content: "partial"},
			model.StreamResponse{Error: "request cancelled", Code: model.CodeCancelled},
		), nil).Once()

		rr := post(handler, `{"content": "hello"}`)

		assert.NotContains(t, rr.Body.String(), "event: error")
	})

	t.Run("Failure - Invalid JSON", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		rr := post(handler, `{"content":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid request body")
	})

	t.Run("Failure - Validation Error", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		rr := post(handler, `{"content": ""}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Field 'Content' failed on the 'required_without' tag")
	})

	t.Run("Failure - Invalid message role", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		rr := post(handler, `{"messages":[{"role":"wizard","content":"hi"}]}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "'oneof'")
	})
}
