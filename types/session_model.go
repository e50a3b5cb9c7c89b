package types

import (
	"errors"
	"strings"
	"time"
)

type Session struct {
	Id        string    `json:"id"`
	AccountId string    `json:"accountId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`

	// Secret is the Firebase session cookie. It is handed to the client once
	// and never stored.
	Secret string `json:"-"`
}

// Token is the opaque value clients send back as bearer token or cookie.
func (s *Session) Token() string {
	return s.Id + "." + s.Secret
}

// ParseSessionToken splits a client token into the session id and secret.
func ParseSessionToken(token string) (*Session, error) {
	id, secret, ok := strings.Cut(token, ".")
	if !ok || id == "" || secret == "" {
		return nil, errors.New("malformed session token")
	}

	return &Session{Id: id, Secret: secret}, nil
}
