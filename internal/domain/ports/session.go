package ports

import "context"

// SessionStore maps opaque session tokens to user ids.
type SessionStore interface {
	// Create opens a session and returns its token.
	Create(ctx context.Context, userID int64) (string, error)

	// Lookup resolves a token. ok is false for unknown or expired tokens.
	Lookup(ctx context.Context, token string) (userID int64, ok bool, err error)

	// Delete ends a single session. Unknown tokens are ignored.
	Delete(ctx context.Context, token string) error

	// DeleteUser ends every session of a user.
	DeleteUser(ctx context.Context, userID int64) error
}
