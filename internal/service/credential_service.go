package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cosmic-chat/backend/internal/credential"
	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/model"
)

// CredentialStatus is what the UI shows about the stored key.
type CredentialStatus struct {
	Status        credential.Status `json:"status"`
	MaskedKey     string            `json:"masked_key,omitempty"`
	LastValidated *time.Time        `json:"last_validated,omitempty"`
}

// CredentialService composes the key validator and the credential store
// into the validate-and-save flow.
type CredentialService struct {
	store     credential.Store
	validator *KeyValidator
}

func NewCredentialService(store credential.Store, validator *KeyValidator) *CredentialService {
	return &CredentialService{store: store, validator: validator}
}

// Status reports the stored key's state without any network access.
func (s *CredentialService) Status(ctx context.Context) (*CredentialStatus, error) {
	rec, err := s.store.Record(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read credential: %w", err)
	}
	status := &CredentialStatus{Status: credential.StatusOf(rec)}
	if rec != nil && rec.Token != "" {
		status.MaskedKey = credential.MaskKey(rec.Token)
		if !rec.LastValidated.IsZero() {
			ts := rec.LastValidated
			status.LastValidated = &ts
		}
	}
	return status, nil
}

// Validate checks token without touching the store.
func (s *CredentialService) Validate(ctx context.Context, token string) model.ValidationResult {
	return s.validator.Validate(ctx, token)
}

// Save validates token and stores it when the upstream accepts it. A
// rejection of the currently stored key marks that key invalid; transport
// failures leave the store untouched.
func (s *CredentialService) Save(ctx context.Context, token string) (model.ValidationResult, error) {
	result := s.validator.Validate(ctx, token)
	switch result.Outcome {
	case model.OutcomeValid:
		if err := s.store.Set(ctx, token); err != nil {
			return result, err
		}
		slog.Info("Stored validated API key", "key", credential.MaskKey(token), "model", result.Model)
	case model.OutcomeInvalid:
		if err := s.invalidateIfStored(ctx, token); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Clear removes the key and its metadata.
func (s *CredentialService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	slog.Info("Cleared stored API key")
	return nil
}

// Token returns the stored key as of now, or ErrMissingCredential.
func (s *CredentialService) Token(ctx context.Context) (string, error) {
	token, ok, err := s.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("could not read credential: %w", err)
	}
	if !ok {
		return "", app_errors.ErrMissingCredential
	}
	return token, nil
}

// ReportFailure marks the stored key invalid when err says the upstream
// refused token itself.
func (s *CredentialService) ReportFailure(ctx context.Context, token string, err error) {
	var upErr *app_errors.UpstreamError
	if !errors.As(err, &upErr) || !upErr.IsAuthFailure() {
		return
	}
	if err := s.invalidateIfStored(ctx, token); err != nil {
		slog.Error("Failed to mark API key invalid", "error", err)
	}
}

func (s *CredentialService) invalidateIfStored(ctx context.Context, token string) error {
	stored, ok, err := s.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("could not read credential: %w", err)
	}
	if !ok || stored != token {
		return nil
	}
	slog.Info("Marking stored API key invalid", "key", credential.MaskKey(token))
	return s.store.MarkInvalid(ctx)
}
