package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"cosmic-chat/backend/internal/config"
	"cosmic-chat/backend/internal/credential"
	"cosmic-chat/backend/internal/model"
)

const testKey = "sk-abcdefghijklmnopqrstuvwxyz"

// fakeOpenAI accepts only testKey and answers every completion with "4".
func fakeOpenAI(t *testing.T, completions *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided"}}`)
			return
		}
		switch r.URL.Path {
		case "/models":
			_, _ = io.WriteString(w, `{"data":[{"id":"gpt-4o"},{"id":"whisper-1"}]}`)
		case "/chat/completions":
			completions.Add(1)
			body, _ := io.ReadAll(r.Body)
			assert.True(t, gjson.GetBytes(body, "stream").Bool())
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"4\"}}]}\n\n")
			_, _ = io.WriteString(w, "data: [DONE]\n\n")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, upstreamURL string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		AppPort:           8000,
		DatabasePath:      filepath.Join(dir, "cosmic.db"),
		LogLevel:          "DEBUG",
		UpstreamProvider:  config.ProviderOpenAI,
		OpenAIBaseURL:     upstreamURL,
		AnthropicBaseURL:  "https://api.anthropic.com",
		Temperature:       0.7,
		MaxTokens:         100,
		HistoryLimit:      20,
		RelayTimeout:      5 * time.Second,
		CredentialBackend: config.BackendFile,
		CredentialFile:    filepath.Join(dir, "credential.json"),
		RepositoryBackend: config.BackendSQLite,
	}
}

func TestNewApp(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")

	app, err := NewApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)
	defer func() { require.NoError(t, app.Close()) }()

	assert.NotNil(t, app.DB)
	assert.NotNil(t, app.Server)
	assert.Nil(t, app.Redis)
	assert.Equal(t, ":8000", app.Server.Addr)
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.RepositoryBackend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := NewApp(cfg)
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestNewCredentialStore(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")

	store := newCredentialStore(cfg, nil)
	fileStore, ok := store.(*credential.FileStore)
	require.True(t, ok, "got %T", store)
	assert.Equal(t, cfg.CredentialFile, fileStore.Path())

	cfg.CredentialBackend = config.BackendSQLite
	assert.IsType(t, &credential.SQLiteStore{}, newCredentialStore(cfg, nil))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

// readStream returns the data frames of an SSE body, decoded.
func readStream(t *testing.T, body io.Reader) []model.StreamResponse {
	t.Helper()
	var chunks []model.StreamResponse
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var chunk model.StreamResponse
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk))
		chunks = append(chunks, chunk)
	}
	require.NoError(t, scanner.Err())
	return chunks
}

func TestFullChatWorkflow(t *testing.T) {
	var completions atomic.Int32
	upstream := fakeOpenAI(t, &completions)

	app, err := NewApp(testConfig(t, upstream.URL))
	require.NoError(t, err)
	defer func() { require.NoError(t, app.Close()) }()

	srv := httptest.NewServer(app.Server.Handler)
	defer srv.Close()
	baseAPIURL := srv.URL + "/api/v1"

	do := func(t *testing.T, method, path, body string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(method, baseAPIURL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	var chatID string
	initialContent := "What is two plus two, in a single digit?"

	t.Run("ChatWithoutKeyIsRejectedLocally", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/chat", fmt.Sprintf(`{"content":%q}`, initialContent))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"error":"API key is required","code":"missing-credential"}`, string(body))
		assert.Zero(t, completions.Load())
	})

	t.Run("WrongKeyIsNotStored", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/credential", `{"token":"sk-zyxwvutsrqponmlkjihgfedcba"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "Incorrect API key provided", gjson.GetBytes(body, "error").String())

		resp = do(t, http.MethodGet, "/credential", "")
		body, _ = io.ReadAll(resp.Body)
		assert.Equal(t, "missing", gjson.GetBytes(body, "status").String())
	})

	t.Run("SaveKey", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/credential", fmt.Sprintf(`{"token":%q}`, testKey))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "gpt-4o", gjson.GetBytes(body, "model").String())

		resp = do(t, http.MethodGet, "/credential", "")
		body, _ = io.ReadAll(resp.Body)
		assert.Equal(t, "stored", gjson.GetBytes(body, "status").String())
		assert.Equal(t, "sk-a...wxyz", gjson.GetBytes(body, "masked_key").String())
		assert.NotContains(t, string(body), testKey)
	})

	t.Run("ListModels", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/models", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"provider":"openai","models":["gpt-4o"]}`, string(body))
	})

	t.Run("CreateNewChat", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/chat", fmt.Sprintf(`{"content":%q}`, initialContent))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

		chunks := readStream(t, resp.Body)
		require.Len(t, chunks, 2)
		assert.Equal(t, "4", chunks[0].Content)
		assert.True(t, chunks[1].Done)
		require.NotEmpty(t, chunks[1].ChatID)
		chatID = chunks[1].ChatID
	})

	t.Run("ListChats", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/chats?search=TWO+PLUS", "")
		var chats []model.Chat
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&chats))
		require.Len(t, chats, 1)
		assert.Equal(t, chatID, chats[0].ID)
		assert.Equal(t, "What is two plus two, in a sin...", chats[0].Title)
	})

	t.Run("GetChatByID", func(t *testing.T) {
		require.NotEmpty(t, chatID, "Chat ID not set from previous step")
		resp := do(t, http.MethodGet, "/chats/"+chatID, "")
		var fullChat model.FullChat
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&fullChat))
		require.Len(t, fullChat.Messages, 2)
		assert.Equal(t, model.RoleUser, fullChat.Messages[0].Role)
		assert.Equal(t, "4", fullChat.Messages[1].Content)
	})

	t.Run("DeleteChat", func(t *testing.T) {
		require.NotEmpty(t, chatID, "Chat ID not set from previous step")
		resp := do(t, http.MethodDelete, "/chats/"+chatID, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = do(t, http.MethodGet, "/chats", "")
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `[]`, string(body))
	})

	t.Run("ClearKey", func(t *testing.T) {
		resp := do(t, http.MethodDelete, "/credential", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = do(t, http.MethodPost, "/chat", `{"messages":[{"role":"user","content":"hi"}]}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
