package service_test

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cosmic-chat/backend/internal/credential"
	mock_llm "cosmic-chat/backend/internal/llm/mocks"
	"cosmic-chat/backend/internal/model"
	"cosmic-chat/backend/internal/service"
)

const validKey = "sk-abcdefghijklmnopqrstuvwxyz"

// newOpenAIMock returns a provider mock whose descriptive methods behave
// like the OpenAI provider. Network methods still need explicit expectations.
func newOpenAIMock(t *testing.T) *mock_llm.MockProvider {
	p := mock_llm.NewMockProvider(t)
	p.On("Name").Return("openai").Maybe()
	p.On("KeyPrefix").Return("sk-").Maybe()
	p.On("SupportsModel", mock.Anything).Return(func(id string) bool {
		return strings.Contains(id, "gpt-4") || strings.Contains(id, "gpt-3.5")
	}).Maybe()
	return p
}

// streamDeltas makes a ChatStream expectation write deltas and finish.
func streamDeltas(deltas ...string) func(args mock.Arguments) {
	return func(args mock.Arguments) {
		ch := args.Get(3).(chan<- string)
		defer close(ch)
		for _, d := range deltas {
			ch <- d
		}
	}
}

func newFileStore(t *testing.T) credential.Store {
	return credential.NewFileStore(filepath.Join(t.TempDir(), "credential.json"))
}

func storeKey(t *testing.T, store credential.Store, key string) {
	require.NoError(t, store.Set(context.Background(), key))
}

// drain reads a stream to completion, failing the test if it stalls.
func drain(t *testing.T, stream <-chan model.StreamResponse) []model.StreamResponse {
	t.Helper()
	var got []model.StreamResponse
	timeout := time.After(5 * time.Second)
	for {
		select {
		case chunk, ok := <-stream:
			if !ok {
				return got
			}
			got = append(got, chunk)
		case <-timeout:
			t.Fatal("stream did not close")
			return got
		}
	}
}

// numbered builds a conversation of n alternating turns named m1..mn.
func numbered(n int) []model.Message {
	msgs := make([]model.Message, n)
	for i := range msgs {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		msgs[i] = model.Message{Role: role, Content: "m" + strconv.Itoa(i+1)}
	}
	return msgs
}

func defaultRelay(p *mock_llm.MockProvider) *service.Relay {
	return service.NewRelay(p, service.RelayConfig{
		Model:        "gpt-4o",
		Temperature:  0.7,
		MaxTokens:    2000,
		HistoryLimit: 20,
		Timeout:      30 * time.Second,
	})
}
