package schema

import (
	"strings"
	"unicode"
)

const (
	// MinPasswordLength is the shortest password accepted at registration.
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest password bcrypt can hash.
	MaxPasswordBytes = 72
	// MaxUsernameLength bounds usernames.
	MaxUsernameLength = 64
)

// Credentials is a username and plaintext password.
type Credentials struct {
	Username string
	Password string
}

// DecodeCredentials validates a register (Create) or login (Login) payload.
// Only registration applies the password policy.
func DecodeCredentials(body []byte, mode Mode) (Credentials, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return Credentials{}, err
	}

	verr := &ValidationError{}
	var creds Credentials
	if s := obj.str("username", verr); s != nil {
		creds.Username = strings.TrimSpace(*s)
	}
	if s := obj.str("password", verr); s != nil {
		creds.Password = *s
	}
	obj.require(verr, "username", "password")

	if err := verr.OrNil(); err != nil {
		return Credentials{}, err
	}

	if mode == Create {
		if err := creds.Validate(); err != nil {
			return Credentials{}, err
		}
	} else if creds.Username == "" {
		return Credentials{}, Invalid("username", "must not be blank")
	}
	return creds, nil
}

// Validate applies the username rules and the password policy.
func (c Credentials) Validate() error {
	verr := &ValidationError{}

	switch {
	case strings.TrimSpace(c.Username) == "":
		verr.Add("username", "must not be blank")
	case len([]rune(c.Username)) > MaxUsernameLength:
		verr.Add("username", lengthMessage(MaxUsernameLength))
	}

	if msg := PasswordPolicy(c.Password); msg != "" {
		verr.Add("password", msg)
	}

	return verr.OrNil()
}

// PasswordPolicy returns why password is too weak, or "" when it passes.
func PasswordPolicy(password string) string {
	if len(password) > MaxPasswordBytes {
		return "must be at most 72 bytes"
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	var missing []string
	if len([]rune(password)) < MinPasswordLength {
		missing = append(missing, "at least 8 characters")
	}
	if !upper {
		missing = append(missing, "an uppercase letter")
	}
	if !lower {
		missing = append(missing, "a lowercase letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if len(missing) == 0 {
		return ""
	}
	return "must contain " + strings.Join(missing, ", ")
}
