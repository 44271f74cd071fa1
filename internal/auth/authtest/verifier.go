// Package authtest provides an in-memory Firebase token verifier for tests.
package authtest

import (
	"context"
	"errors"
	"sync"

	fbauth "firebase.google.com/go/v4/auth"
)

// ErrInvalidToken is returned for tokens the verifier does not know.
var ErrInvalidToken = errors.New("ID token has invalid signature")

// Verifier maps raw ID tokens to decoded tokens.
type Verifier struct {
	mu      sync.Mutex
	tokens  map[string]*fbauth.Token
	revoked []string

	// RevokeErr, when set, fails RevokeRefreshTokens.
	RevokeErr error
}

// NewVerifier creates an empty verifier.
func NewVerifier() *Verifier {
	return &Verifier{tokens: make(map[string]*fbauth.Token)}
}

// AddUser registers raw as a valid token for uid with the given profile claims.
// Empty claim values are omitted.
func (v *Verifier) AddUser(raw, uid, name, email, picture string) {
	claims := map[string]interface{}{}
	if name != "" {
		claims["name"] = name
	}
	if email != "" {
		claims["email"] = email
	}
	if picture != "" {
		claims["picture"] = picture
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[raw] = &fbauth.Token{UID: uid, Subject: uid, Claims: claims}
}

// VerifyIDToken returns the token registered for idToken.
func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.tokens[idToken]
	if !ok {
		return nil, ErrInvalidToken
	}
	c := *t
	return &c, nil
}

// RevokeRefreshTokens records the revocation.
func (v *Verifier) RevokeRefreshTokens(_ context.Context, uid string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.RevokeErr != nil {
		return v.RevokeErr
	}
	v.revoked = append(v.revoked, uid)
	return nil
}

// Revoked returns the uids whose tokens were revoked.
func (v *Verifier) Revoked() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.revoked))
	copy(out, v.revoked)
	return out
}
