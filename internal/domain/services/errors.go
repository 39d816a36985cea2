package services

import (
	"errors"

	"github.com/ersonp/campaign-core/internal/domain/ports"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = ports.ErrNotFound
	// ErrForbidden is returned when the caller does not own the record.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated is returned when no valid session is present.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountDeletion is returned when any step of deleting an account fails.
	ErrAccountDeletion = errors.New("account deletion failed")
)

// authorize checks record ownership.
func authorize(ownerID, callerID int64) error {
	if ownerID != callerID {
		return ErrForbidden
	}
	return nil
}
