package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cosmic-chat/backend/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateChat(ctx context.Context, chat *model.Chat) error {
	query := "INSERT INTO chats (id, title, model, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query, chat.ID, chat.Title, chat.Model, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not insert chat: %w", err)
	}
	return nil
}

func (r *sqliteRepository) GetChat(ctx context.Context, chatID string) (*model.Chat, error) {
	query := "SELECT id, title, model, created_at, updated_at FROM chats WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, chatID)
	var chat model.Chat
	err := row.Scan(&chat.ID, &chat.Title, &chat.Model, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// GetChats filters titles in Go: SQLite's LIKE folds case for ASCII only.
func (r *sqliteRepository) GetChats(ctx context.Context, q model.ChatQuery) ([]*model.Chat, error) {
	order := "DESC"
	if q.Oldest {
		order = "ASC"
	}
	query := `
		SELECT id, title, model, created_at, updated_at
		FROM chats
		ORDER BY created_at ` + order
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := []*model.Chat{}
	for rows.Next() {
		var chat model.Chat
		if err := rows.Scan(&chat.ID, &chat.Title, &chat.Model, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		if titleMatches(chat.Title, q.Search) {
			chats = append(chats, &chat)
		}
	}
	return chats, rows.Err()
}

func (r *sqliteRepository) DeleteChat(ctx context.Context, chatID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM chats WHERE id = ?", chatID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMessage uses a transaction so the sequence number and the chat's
// updated_at move together.
func (r *sqliteRepository) AddMessage(ctx context.Context, chatID string, message *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	// Ensure transaction is rolled back on error
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE chats SET updated_at = ? WHERE id = ?", time.Now().UTC(), chatID)
	if err != nil {
		return fmt.Errorf("could not update chat timestamp: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	insertMsgQuery := `
		INSERT INTO messages (id, chat_id, role, content, timestamp, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE chat_id = ?))
	`
	_, err = tx.ExecContext(ctx, insertMsgQuery,
		message.ID,
		chatID,
		message.Role,
		message.Content,
		message.Timestamp,
		chatID,
	)
	if err != nil {
		return fmt.Errorf("could not insert message: %w", err)
	}

	return tx.Commit()
}

func (r *sqliteRepository) GetMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	query := `
		SELECT id, role, content, timestamp
		FROM messages
		WHERE chat_id = ?
		ORDER BY seq ASC
	`
	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
