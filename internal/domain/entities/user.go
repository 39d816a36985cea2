package entities

import "time"

// User is an account. Password holds the credential hash and is never
// serialised.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	c := *u
	return &c
}
