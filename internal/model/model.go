package model

import (
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Chat stores metadata about a saved conversation.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single turn in a conversation.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role" validate:"required,oneof=user assistant"`
	Content   string    `json:"content" validate:"required"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// FullChat includes the chat metadata and all its messages.
type FullChat struct {
	Chat
	Messages []Message `json:"messages"`
}

// ChatQuery filters and orders the saved chat list.
type ChatQuery struct {
	Search string // case-insensitive title substring
	Oldest bool   // sort by creation time ascending instead of newest first
}

// StreamResponse is a single chunk of a streamed completion. Exactly one
// chunk per stream has Done or Error set, and it is always the last one.
type StreamResponse struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
	ChatID  string `json:"chat_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Status  int    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Credential is the single stored API key with its validity metadata.
// Valid is nil when the key has never been validated.
type Credential struct {
	Token         string    `json:"token"`
	Valid         *bool     `json:"valid,omitempty"`
	LastValidated time.Time `json:"last_validated"`
}

// Validation outcomes.
const (
	OutcomeValid          = "valid"
	OutcomeInvalid        = "invalid"
	OutcomeTransportError = "transport-error"
)

// Error codes shared by validation results and stream errors.
const (
	CodeMissingCredential       = "missing-credential"
	CodeInvalidCredentialFormat = "invalid-credential-format"
	CodeUpstreamRejected        = "upstream-rejected"
	CodeTransportError          = "transport-error"
	CodeCancelled               = "cancelled"
)

// ValidationResult is the tagged outcome of a key validation. It is
// ephemeral and never persisted.
type ValidationResult struct {
	Outcome string   `json:"outcome"`
	Valid   bool     `json:"valid"`
	Model   string   `json:"model,omitempty"`
	Models  []string `json:"models,omitempty"`
	Code    string   `json:"code,omitempty"`
	Reason  string   `json:"error,omitempty"`
	Status  int      `json:"status,omitempty"`
}
