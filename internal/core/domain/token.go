package domain

import "time"

// TokenSubject is the identity payload a token is issued for.
type TokenSubject struct {
	Email string
	Name  string
}

// TokenClaims are the verified contents of an access token.
type TokenClaims struct {
	ID        string
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
