package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"marketgate/internal/logger"
)

// PostgresStore keeps credentials and the deny-list in two tables. All
// mutations are single upsert statements, so the read-modify-write hazard of
// a shared file store does not exist here.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Lookup returns the bearer token bound to the chat.
func (s *PostgresStore) Lookup(ctx context.Context, chatID int64) (string, error) {
	var token string
	err := s.db.GetContext(ctx, &token,
		`SELECT token FROM gateway_users WHERE chat_id = $1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: lookup chat %d: %w", chatID, err)
	}
	return token, nil
}

// TokenExists reports whether the token is bound to any chat.
func (s *PostgresStore) TokenExists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM gateway_users WHERE token = $1)`, token)
	if err != nil {
		return false, fmt.Errorf("store: token exists: %w", err)
	}
	return exists, nil
}

// Approve binds the token to the chat.
func (s *PostgresStore) Approve(ctx context.Context, chatID int64, token string) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gateway_users (chat_id, token, approved_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (chat_id) DO UPDATE SET token = EXCLUDED.token`,
		chatID, token)
	if err != nil {
		return fmt.Errorf("store: approve chat %d: %w", chatID, err)
	}
	logger.Info(ctx, "store", "user.approved",
		slog.Int64("chat_id", chatID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// IsDenied reports deny-list membership.
func (s *PostgresStore) IsDenied(ctx context.Context, chatID int64) (bool, error) {
	var denied bool
	err := s.db.GetContext(ctx, &denied,
		`SELECT EXISTS (SELECT 1 FROM deny_list WHERE chat_id = $1)`, chatID)
	if err != nil {
		return false, fmt.Errorf("store: deny check: %w", err)
	}
	return denied, nil
}

// Block adds the chat to the deny-list.
func (s *PostgresStore) Block(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deny_list (chat_id, blocked_at)
		 VALUES ($1, NOW())
		 ON CONFLICT (chat_id) DO NOTHING`,
		chatID)
	if err != nil {
		return fmt.Errorf("store: block chat %d: %w", chatID, err)
	}
	logger.Info(ctx, "store", "user.blocked", slog.Int64("chat_id", chatID))
	return nil
}
