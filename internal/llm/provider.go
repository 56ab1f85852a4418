package llm

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	app_errors "cosmic-chat/backend/internal/errors"
)

// Message is a single turn sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the provider-neutral completion request. The caller has
// already applied the history policy to Messages.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Provider defines the interface for talking to an upstream completion API.
// The API key is always passed explicitly; providers never hold one.
type Provider interface {
	// Name identifies the provider in logs and config ("openai", "anthropic").
	Name() string
	// KeyPrefix is the prefix every well-formed key for this provider has.
	KeyPrefix() string
	// SupportsModel reports whether a listed model id is offered to users.
	SupportsModel(id string) bool
	// ListModels issues exactly one model-listing request with apiKey.
	ListModels(ctx context.Context, apiKey string) ([]string, error)
	// ChatStream sends req and writes text deltas to ch in order. It always
	// closes ch. A nil return means the upstream finished the completion.
	ChatStream(ctx context.Context, apiKey string, req *ChatRequest, ch chan<- string) error
}

// upstreamError builds the error for a non-success response. The
// provider's error.message is kept verbatim; it is empty when absent.
func upstreamError(status int, body []byte) *app_errors.UpstreamError {
	return &app_errors.UpstreamError{
		Status:  status,
		Message: gjson.GetBytes(body, "error.message").String(),
	}
}

// isSuccess reports whether status is a 2xx code.
func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
