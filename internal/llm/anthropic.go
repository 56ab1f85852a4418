package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/model"
)

type anthropicProvider struct {
	url string
}

// NewAnthropicProvider returns a Provider backed by the Anthropic SDK. A
// client is built per call because the key changes whenever the user
// stores a new one.
func NewAnthropicProvider(url string) Provider {
	return &anthropicProvider{url: strings.TrimRight(url, "/")}
}

func (p *anthropicProvider) Name() string      { return "anthropic" }
func (p *anthropicProvider) KeyPrefix() string { return "sk-ant-" }

func (p *anthropicProvider) SupportsModel(id string) bool {
	return strings.HasPrefix(id, "claude-")
}

func (p *anthropicProvider) client(apiKey string) anthropic.Client {
	return anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(p.url),
		option.WithMaxRetries(0),
	)
}

func (p *anthropicProvider) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	client := p.client(apiKey)
	page, err := client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, p.translateError(err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (p *anthropicProvider) ChatStream(ctx context.Context, apiKey string, req *ChatRequest, ch chan<- string) error {
	defer close(ch)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case model.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case model.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	client := p.client(apiKey)
	stream := client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			text, ok := ev.Delta.AsAny().(anthropic.TextDelta)
			if !ok || text.Text == "" {
				continue
			}
			select {
			case ch <- text.Text:
			case <-ctx.Done():
				return ctx.Err()
			}
		case anthropic.MessageStopEvent:
			return nil
		}
	}
	if err := stream.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return p.translateError(err)
	}
	// The event stream ended before message_stop: the connection dropped.
	return app_errors.Transport(io.ErrUnexpectedEOF)
}

// translateError turns SDK errors into the application's error taxonomy.
func (p *anthropicProvider) translateError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &app_errors.UpstreamError{
			Status:  apiErr.StatusCode,
			Message: gjson.Get(apiErr.RawJSON(), "error.message").String(),
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return app_errors.Transport(fmt.Errorf("anthropic: %w", err))
}
