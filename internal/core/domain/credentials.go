package domain

import (
	"fmt"

	"github.com/rs/zerolog"
)

const redacted = "[REDACTED]"

// Credentials is a transient username/password pair submitted to the login
// form. It is never persisted and every formatting path hides Password.
type Credentials struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Next     string `json:"next,omitempty" form:"next"`
}

func (c Credentials) String() string {
	return fmt.Sprintf("{Username:%s Password:%s Next:%s}", c.Username, redacted, c.Next)
}

func (c Credentials) GoString() string {
	return fmt.Sprintf("domain.Credentials{Username:%q, Password:%q, Next:%q}", c.Username, redacted, c.Next)
}

// MarshalZerologObject lets Credentials be attached to log events with
// Object() without leaking the password.
func (c Credentials) MarshalZerologObject(e *zerolog.Event) {
	e.Str("username", c.Username).Str("password", redacted)
	if c.Next != "" {
		e.Str("next", c.Next)
	}
}
