// Package store persists the gateway's credential records and deny-list.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a chat has no credential record. Absence is an
// error, not a silent no-op: handlers must branch on it explicitly.
var ErrNotFound = errors.New("store: no credential record")

// Store gives atomic access to credential records and the deny-list. Every
// mutation is a single self-contained write so concurrent approvals from two
// administrators cannot lose updates.
type Store interface {
	// Lookup returns the bearer token bound to the chat, or ErrNotFound.
	Lookup(ctx context.Context, chatID int64) (string, error)

	// TokenExists reports whether the token is already bound to any chat.
	// The access workflow uses it as the instant-approval fast path.
	TokenExists(ctx context.Context, token string) (bool, error)

	// Approve binds the token to the chat, replacing a previous binding.
	Approve(ctx context.Context, chatID int64, token string) error

	// IsDenied reports deny-list membership. A denied chat is rejected
	// before any handler runs.
	IsDenied(ctx context.Context, chatID int64) (bool, error)

	// Block adds the chat to the deny-list. Blocking twice is a no-op.
	Block(ctx context.Context, chatID int64) error
}
