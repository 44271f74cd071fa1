package auth

import (
	"context"
	"fmt"
	"sync"

	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// TokenVerifier is the part of the Firebase Auth client the provider needs.
// *fbauth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseProvider signs a single browser session in with Google ID tokens
// issued through Firebase Authentication.
type FirebaseProvider struct {
	verifier        TokenVerifier
	revokeOnSignOut bool
	logger          *zap.Logger

	mu        sync.Mutex
	current   *Identity
	listeners map[int]func(Event)
	nextID    int
}

// NewFirebaseProvider creates a provider with no signed-in identity.
func NewFirebaseProvider(verifier TokenVerifier, revokeOnSignOut bool, logger *zap.Logger) *FirebaseProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirebaseProvider{
		verifier:        verifier,
		revokeOnSignOut: revokeOnSignOut,
		logger:          logger,
		listeners:       make(map[int]func(Event)),
	}
}

// SignIn verifies idToken and maps its standard claims to an Identity.
func (p *FirebaseProvider) SignIn(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, fmt.Errorf("%w: empty ID token", ErrProviderAuth)
	}
	token, err := p.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderAuth, err)
	}

	identity := &Identity{UID: token.UID}
	// Firebase populates these from the Google account when they exist.
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		identity.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		identity.PhotoURL = picture
	}

	p.mu.Lock()
	p.current = identity
	p.mu.Unlock()

	p.emit(Event{Kind: EventSignedIn, Identity: copyIdentity(identity)})
	return copyIdentity(identity), nil
}

// SignOut clears the identity. With revocation enabled the user's refresh tokens
// are revoked first, which signs the account out of every device.
func (p *FirebaseProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()

	if current != nil && p.revokeOnSignOut {
		if err := p.verifier.RevokeRefreshTokens(ctx, current.UID); err != nil {
			return fmt.Errorf("failed to revoke refresh tokens for '%s': %w", current.UID, err)
		}
	}

	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	p.emit(Event{Kind: EventSignedOut})
	return nil
}

// Subscribe registers listener and calls it once with the current session event.
func (p *FirebaseProvider) Subscribe(listener func(Event)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = listener
	initial := Event{Kind: EventSignedOut}
	if p.current != nil {
		initial = Event{Kind: EventSignedIn, Identity: copyIdentity(p.current)}
	}
	p.mu.Unlock()

	listener(initial)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

func (p *FirebaseProvider) emit(ev Event) {
	p.mu.Lock()
	listeners := make([]func(Event), 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	p.logger.Debug("Auth session event", zap.Stringer("kind", ev.Kind), zap.Int("listeners", len(listeners)))
	for _, l := range listeners {
		l(ev)
	}
}

func copyIdentity(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
