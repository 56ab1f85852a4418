package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cosmic-chat/backend/internal/credential"
	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/llm"
	"cosmic-chat/backend/internal/model"
)

const (
	// MinKeyLength is the shortest key the format check accepts.
	MinKeyLength = 20

	unknownModel     = "Unknown model"
	defaultRejection = "Invalid API key"
)

// KeyValidator checks a candidate key locally and then with exactly one
// model-listing call to the upstream. It never touches the credential store.
type KeyValidator struct {
	provider llm.Provider
}

func NewKeyValidator(provider llm.Provider) *KeyValidator {
	return &KeyValidator{provider: provider}
}

// CheckFormat is the local, network-free part of validation.
func (v *KeyValidator) CheckFormat(token string) error {
	if token == "" || !strings.HasPrefix(token, v.provider.KeyPrefix()) || len(token) < MinKeyLength {
		return app_errors.ErrInvalidCredentialFormat
	}
	return nil
}

// Validate never returns an error: every failure is a ValidationResult.
func (v *KeyValidator) Validate(ctx context.Context, token string) model.ValidationResult {
	if err := v.CheckFormat(token); err != nil {
		return model.ValidationResult{
			Outcome: model.OutcomeInvalid,
			Code:    model.CodeInvalidCredentialFormat,
			Reason:  fmt.Sprintf("%s: expected prefix %q and at least %d characters", err, v.provider.KeyPrefix(), MinKeyLength),
		}
	}

	ids, err := v.provider.ListModels(ctx, token)
	if err != nil {
		var upErr *app_errors.UpstreamError
		if errors.As(err, &upErr) {
			reason := upErr.Message
			if reason == "" {
				reason = defaultRejection
			}
			slog.Info("Key rejected by upstream", "provider", v.provider.Name(), "key", credential.MaskKey(token), "status", upErr.Status)
			return model.ValidationResult{
				Outcome: model.OutcomeInvalid,
				Code:    model.CodeUpstreamRejected,
				Reason:  reason,
				Status:  upErr.Status,
			}
		}
		slog.Warn("Key validation failed in transport", "provider", v.provider.Name(), "error", err)
		return model.ValidationResult{
			Outcome: model.OutcomeTransportError,
			Code:    model.CodeTransportError,
			Reason:  err.Error(),
		}
	}

	supported := v.supported(ids)
	result := model.ValidationResult{
		Outcome: model.OutcomeValid,
		Valid:   true,
		Model:   unknownModel,
		Models:  supported,
	}
	if len(supported) > 0 {
		result.Model = supported[0]
	}
	return result
}

// supported keeps the ids the provider offers to users, in listing order.
func (v *KeyValidator) supported(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if v.provider.SupportsModel(id) {
			out = append(out, id)
		}
	}
	return out
}
