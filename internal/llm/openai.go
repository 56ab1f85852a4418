package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	app_errors "cosmic-chat/backend/internal/errors"
)

const (
	sseDataPrefix = "data:"
	sseDone       = "[DONE]"
	maxSSELine    = 1024 * 1024
)

type openAIProvider struct {
	client *http.Client
	url    string
}

// NewOpenAIProvider returns a Provider for an OpenAI-compatible API rooted
// at url (for example https://api.openai.com/v1). Requests are issued once;
// failures are never retried.
func NewOpenAIProvider(url string) Provider {
	return &openAIProvider{
		client: &http.Client{},
		url:    strings.TrimRight(url, "/"),
	}
}

func (p *openAIProvider) Name() string      { return "openai" }
func (p *openAIProvider) KeyPrefix() string { return "sk-" }

func (p *openAIProvider) SupportsModel(id string) bool {
	return strings.Contains(id, "gpt-4") || strings.Contains(id, "gpt-3.5")
}

func (p *openAIProvider) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, app_errors.Transport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, app_errors.Transport(fmt.Errorf("could not read response body: %w", err))
	}
	if !isSuccess(resp.StatusCode) {
		return nil, upstreamError(resp.StatusCode, body)
	}

	data := gjson.GetBytes(body, "data")
	if !gjson.ValidBytes(body) || !data.IsArray() {
		return nil, app_errors.Transport(fmt.Errorf("could not decode model list: %.200s", body))
	}
	ids := make([]string, 0, len(data.Array()))
	for _, id := range data.Get("#.id").Array() {
		ids = append(ids, id.String())
	}
	return ids, nil
}

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

func (p *openAIProvider) ChatStream(ctx context.Context, apiKey string, req *ChatRequest, ch chan<- string) error {
	defer close(ch)

	body, err := json.Marshal(openAIChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return app_errors.Transport(err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return upstreamError(resp.StatusCode, bodyBytes)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)
	for scanner.Scan() {
		payload, ok := strings.CutPrefix(scanner.Text(), sseDataPrefix)
		if !ok {
			// Blank separators, comments and event names carry no payload.
			continue
		}
		payload = strings.TrimPrefix(payload, " ")
		if payload == sseDone {
			return nil
		}
		if !gjson.Valid(payload) {
			return app_errors.Transport(fmt.Errorf("could not decode stream chunk: %.200s", payload))
		}
		if streamErr := gjson.Get(payload, "error"); streamErr.IsObject() {
			return streamError(streamErr)
		}

		delta := gjson.Get(payload, "choices.0.delta.content").String()
		if delta == "" {
			continue
		}
		select {
		case ch <- delta:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return app_errors.Transport(err)
	}
	// The body ended without the [DONE] marker: the connection dropped.
	return app_errors.Transport(io.ErrUnexpectedEOF)
}

// streamError turns an error frame sent after the 200 response into an
// upstream rejection. The HTTP status is already spent, so one is derived
// from the error code.
func streamError(frame gjson.Result) *app_errors.UpstreamError {
	status := http.StatusBadGateway
	for _, field := range []string{"code", "type"} {
		switch frame.Get(field).String() {
		case "insufficient_quota", "rate_limit_exceeded":
			status = http.StatusTooManyRequests
		case "invalid_api_key":
			status = http.StatusUnauthorized
		}
	}
	return &app_errors.UpstreamError{Status: status, Message: frame.Get("message").String()}
}
