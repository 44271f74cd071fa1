// Package auth keeps track of who is signed in for each browser session.
package auth

import (
	"context"
	"errors"
)

// ErrProviderAuth is returned when the identity provider rejects a sign-in.
var ErrProviderAuth = errors.New("identity provider rejected the sign-in")

// Identity is the user as reported by the identity provider.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// EventKind tells whether a provider session event signs a user in or out.
type EventKind int

const (
	EventSignedOut EventKind = iota
	EventSignedIn
)

func (k EventKind) String() string {
	if k == EventSignedIn {
		return "signed_in"
	}
	return "signed_out"
}

// Event is a provider session change. Identity is nil for EventSignedOut.
type Event struct {
	Kind     EventKind
	Identity *Identity
}

// Provider is a per-session connection to the identity provider.
type Provider interface {
	// SignIn exchanges a credential for an identity and emits EventSignedIn.
	SignIn(ctx context.Context, credential string) (*Identity, error)
	// SignOut ends the provider session and emits EventSignedOut.
	SignOut(ctx context.Context) error
	// Subscribe delivers the current session event immediately and every change after it.
	Subscribe(listener func(Event)) (unsubscribe func())
}
