package service

import (
	"context"
	"errors"

	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/llm"
)

// ModelList is the set of models the stored key can use.
type ModelList struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

// ModelService lists models available with the stored credential.
type ModelService struct {
	llm         llm.Provider
	credentials *CredentialService
}

func NewModelService(provider llm.Provider, credentials *CredentialService) *ModelService {
	return &ModelService{llm: provider, credentials: credentials}
}

// List makes one model-listing call with the currently stored key and
// keeps only supported models.
func (s *ModelService) List(ctx context.Context) (*ModelList, error) {
	token, err := s.credentials.Token(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := s.llm.ListModels(ctx, token)
	if err != nil {
		s.credentials.ReportFailure(ctx, token, err)
		var upErr *app_errors.UpstreamError
		if errors.As(err, &upErr) && upErr.Message == "" {
			return nil, &app_errors.UpstreamError{Status: upErr.Status, Message: defaultRejection}
		}
		return nil, err
	}

	models := make([]string, 0, len(ids))
	for _, id := range ids {
		if s.llm.SupportsModel(id) {
			models = append(models, id)
		}
	}
	return &ModelList{Provider: s.llm.Name(), Models: models}, nil
}
