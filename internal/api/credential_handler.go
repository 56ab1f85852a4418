package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/interfaces"
	"cosmic-chat/backend/internal/model"
)

// apiKeyHeader may carry the key to validate instead of the request body.
const apiKeyHeader = "X-API-Key"

// CredentialHandler serves the stored API key's lifecycle.
type CredentialHandler struct {
	service interfaces.CredentialService
}

func NewCredentialHandler(svc interfaces.CredentialService) *CredentialHandler {
	return &CredentialHandler{service: svc}
}

// HandleStatus godoc
// @Summary      Credential status
// @Description  Reports whether a key is stored and whether it last validated. Never contacts the provider.
// @Tags         Credential
// @Produce      json
// @Success      200  {object}  service.CredentialStatus
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/credential [get]
func (h *CredentialHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

// HandleSave godoc
// @Summary      Validate and save a key
// @Description  Validates the key with one model-listing call and stores it when the provider accepts it.
// @Tags         Credential
// @Accept       json
// @Produce      json
// @Param        request  body      TokenRequest            true  "API key"
// @Success      200      {object}  model.ValidationResult
// @Failure      400      {object}  model.ValidationResult
// @Failure      502      {object}  model.ValidationResult
// @Router       /v1/credential [post]
func (h *CredentialHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	result, err := h.service.Save(r.Context(), req.Token)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, validationStatus(result), result)
}

// HandleValidate godoc
// @Summary      Validate a key
// @Description  Validates a key without storing it. The key comes from the body or the X-API-Key header.
// @Tags         Credential
// @Accept       json
// @Produce      json
// @Param        request    body      TokenRequest  false  "API key"
// @Param        X-API-Key  header    string        false  "API key"
// @Success      200        {object}  model.ValidationResult
// @Failure      400        {object}  model.ValidationResult
// @Failure      502        {object}  model.ValidationResult
// @Router       /v1/credential/validate [post]
func (h *CredentialHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	token := req.Token
	if token == "" {
		token = r.Header.Get(apiKeyHeader)
	}

	result := h.service.Validate(r.Context(), token)
	respondWithJSON(w, validationStatus(result), result)
}

// HandleClear godoc
// @Summary      Clear the stored key
// @Tags         Credential
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/credential [delete]
func (h *CredentialHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "cleared"})
}

func validationStatus(result model.ValidationResult) int {
	switch result.Outcome {
	case model.OutcomeValid:
		return http.StatusOK
	case model.OutcomeTransportError:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
