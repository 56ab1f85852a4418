package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/llm"
)

const (
	keyCustomInstructions = "custom_instructions"
	keyDefaultModel       = "default_model"
)

// Settings holds the user-editable application settings.
type Settings struct {
	CustomInstructions string `json:"custom_instructions" validate:"max=4000"`
	DefaultModel       string `json:"default_model" validate:"required"`
}

type SettingsService struct {
	db  *sql.DB
	llm llm.Provider
}

func NewSettingsService(db *sql.DB, provider llm.Provider) *SettingsService {
	return &SettingsService{db: db, llm: provider}
}

// InitAndGet seeds the default model on first start and returns the
// current settings.
func (s *SettingsService) InitAndGet(ctx context.Context, defaultModel string) (*Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings.DefaultModel != "" {
		slog.Debug("Found existing settings", "default_model", settings.DefaultModel)
		return settings, nil
	}

	slog.Info("No default model stored, seeding from config", "default_model", defaultModel)
	settings.DefaultModel = defaultModel
	if err := s.save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save initial settings: %w", err)
	}
	return settings, nil
}

// Get retrieves the current settings. Missing keys come back empty.
func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("could not query settings: %w", err)
	}
	defer rows.Close()

	settings := &Settings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("could not scan setting: %w", err)
		}
		switch key {
		case keyCustomInstructions:
			settings.CustomInstructions = value
		case keyDefaultModel:
			settings.DefaultModel = value
		}
	}
	return settings, rows.Err()
}

// Save validates and persists settings. The default model must be one the
// provider offers; the check is local and makes no network call.
func (s *SettingsService) Save(ctx context.Context, settings *Settings) error {
	if !s.llm.SupportsModel(settings.DefaultModel) {
		return fmt.Errorf("%w: model '%s' is not offered by %s", app_errors.ErrValidation, settings.DefaultModel, s.llm.Name())
	}
	return s.save(ctx, settings)
}

func (s *SettingsService) save(ctx context.Context, settings *Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value")
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, kv := range [][2]string{
		{keyCustomInstructions, settings.CustomInstructions},
		{keyDefaultModel, settings.DefaultModel},
	} {
		if _, err := stmt.ExecContext(ctx, kv[0], kv[1]); err != nil {
			return fmt.Errorf("could not save setting %s: %w", kv[0], err)
		}
	}
	return tx.Commit()
}
