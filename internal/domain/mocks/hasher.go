package mocks

import "errors"

// ErrMismatch is returned by Hasher.Compare on a wrong password.
var ErrMismatch = errors.New("password mismatch")

// Hasher is a mock implementation of ports.PasswordHasher. It prefixes
// instead of hashing.
type Hasher struct {
	Err error
}

// Hash returns "hashed:" + password.
func (h *Hasher) Hash(password string) (string, error) {
	if h.Err != nil {
		return "", h.Err
	}
	return "hashed:" + password, nil
}

// Compare checks the prefix scheme.
func (h *Hasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return ErrMismatch
	}
	return nil
}
