package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/llm"
	"cosmic-chat/backend/internal/model"
)

// DefaultHistoryLimit is the longest history sent upstream unchanged.
const DefaultHistoryLimit = 20

// RelayConfig holds the completion defaults applied when a request leaves
// a field unset.
type RelayConfig struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	HistoryLimit int
	Timeout      time.Duration
}

// SendRequest is one completion submission. Credential is passed
// explicitly; the relay never reads the credential store.
type SendRequest struct {
	Messages    []model.Message
	Model       string
	Credential  string
	Temperature *float64
	MaxTokens   int
	// System, when set, is sent as a leading system turn after truncation.
	System string
}

// Relay forwards conversations to the upstream provider and turns its text
// deltas into a stream with exactly one terminal event.
type Relay struct {
	provider llm.Provider
	cfg      RelayConfig
}

func NewRelay(provider llm.Provider, cfg RelayConfig) *Relay {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	return &Relay{provider: provider, cfg: cfg}
}

// TruncateHistory returns msgs unchanged when it has at most limit entries,
// otherwise the first message followed by the last limit-1. The result never
// aliases msgs, so callers may append to it freely.
func TruncateHistory(msgs []model.Message, limit int) []model.Message {
	if limit <= 0 || len(msgs) <= limit {
		return append([]model.Message(nil), msgs...)
	}
	out := make([]model.Message, 0, limit)
	out = append(out, msgs[0])
	return append(out, msgs[len(msgs)-(limit-1):]...)
}

// Send starts a completion. Failures that happen before the first delta
// (missing credential, upstream rejection, transport) are returned as an
// error and no channel is produced. Otherwise the channel yields deltas in
// order followed by one Done or Error event, then closes. Callers must
// drain it until it closes.
func (r *Relay) Send(ctx context.Context, req SendRequest) (<-chan model.StreamResponse, error) {
	if req.Credential == "" {
		return nil, app_errors.ErrMissingCredential
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("%w: at least one message is required", app_errors.ErrValidation)
	}

	llmReq := r.buildRequest(req)

	var (
		streamCtx context.Context
		cancel    context.CancelFunc
	)
	if r.cfg.Timeout > 0 {
		streamCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
	} else {
		streamCtx, cancel = context.WithCancel(ctx)
	}

	deltas := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.provider.ChatStream(streamCtx, req.Credential, llmReq, deltas)
	}()

	slog.Debug("Relaying conversation",
		"provider", r.provider.Name(),
		"model", llmReq.Model,
		"messages", len(llmReq.Messages),
		"truncated", len(req.Messages) > r.cfg.HistoryLimit)

	// Wait for the first delta so early failures surface as a plain error.
	var streamErr error
	first, ok := <-deltas
	if !ok {
		if streamErr = <-errCh; streamErr != nil {
			cancel()
			return nil, r.classify(ctx, streamCtx, streamErr)
		}
	}

	out := make(chan model.StreamResponse)
	go func() {
		defer close(out)
		defer cancel()

		if ok {
			r.forward(streamCtx, out, first)
			for delta := range deltas {
				r.forward(streamCtx, out, delta)
			}
			streamErr = <-errCh
		}
		out <- r.terminal(ctx, streamCtx, streamErr)
	}()
	return out, nil
}

func (r *Relay) buildRequest(req SendRequest) *llm.ChatRequest {
	llmReq := &llm.ChatRequest{
		Model:       req.Model,
		Temperature: r.cfg.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if llmReq.Model == "" {
		llmReq.Model = r.cfg.Model
	}
	if req.Temperature != nil {
		llmReq.Temperature = *req.Temperature
	}
	if llmReq.MaxTokens <= 0 {
		llmReq.MaxTokens = r.cfg.MaxTokens
	}

	history := TruncateHistory(req.Messages, r.cfg.HistoryLimit)
	llmReq.Messages = make([]llm.Message, 0, len(history)+1)
	if req.System != "" {
		llmReq.Messages = append(llmReq.Messages, llm.Message{Role: model.RoleSystem, Content: req.System})
	}
	for _, m := range history {
		llmReq.Messages = append(llmReq.Messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	return llmReq
}

// forward drops deltas once the stream is cancelled; the terminal event
// still follows.
func (r *Relay) forward(streamCtx context.Context, out chan<- model.StreamResponse, delta string) {
	if streamCtx.Err() != nil {
		return
	}
	out <- model.StreamResponse{Content: delta}
}

func (r *Relay) terminal(parent, streamCtx context.Context, err error) model.StreamResponse {
	if err == nil {
		if parent.Err() == nil {
			return model.StreamResponse{Done: true}
		}
		// Completed, but the caller already gave up and deltas were dropped.
		err = parent.Err()
	}
	err = r.classify(parent, streamCtx, err)

	var upErr *app_errors.UpstreamError
	switch {
	case errors.Is(err, app_errors.ErrCancelled):
		return model.StreamResponse{Error: app_errors.ErrCancelled.Error(), Code: model.CodeCancelled}
	case errors.As(err, &upErr):
		return model.StreamResponse{Error: upErr.Message, Status: upErr.Status, Code: model.CodeUpstreamRejected}
	default:
		slog.Warn("Relay stream failed", "provider", r.provider.Name(), "error", err)
		return model.StreamResponse{Error: err.Error(), Code: model.CodeTransportError}
	}
}

// classify maps a provider error onto the application taxonomy. A caller
// abort is a cancellation; the relay's own deadline is a transport error.
func (r *Relay) classify(parent, streamCtx context.Context, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return app_errors.ErrCancelled
	}
	if errors.Is(streamCtx.Err(), context.DeadlineExceeded) {
		return app_errors.Transport(fmt.Errorf("no complete response within %s", r.cfg.Timeout))
	}
	var upErr *app_errors.UpstreamError
	if errors.As(err, &upErr) {
		if upErr.Message == "" {
			return &app_errors.UpstreamError{Status: upErr.Status, Message: http.StatusText(upErr.Status)}
		}
		return upErr
	}
	if errors.Is(err, app_errors.ErrTransport) {
		return err
	}
	return app_errors.Transport(err)
}
