// Package identity is the boundary to the external session/identity provider.
//
// The provider mints, refreshes, and destroys the opaque credential. The SDK
// never persists or mutates credentials outside the auth coordinator; every
// provider method that needs an authenticated call takes the credential as an
// explicit argument instead of reading ambient state.
package identity

import (
	"context"

	hotspot "github.com/chimerakang/hotspot-go"
)

// EventKind labels a provider-side state transition.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event is a provider state transition consumed by the auth coordinator.
type Event struct {
	Kind    EventKind
	Session *hotspot.Session // nil for EventSignedOut
}

// Credentials is the sign-in payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Registration is the sign-up payload.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
}

// Provider is the identity-provider contract.
// Implementations: Client (REST), sim.IdentityProvider (in-memory).
type Provider interface {
	// SignIn authenticates and returns a fresh session.
	SignIn(ctx context.Context, creds Credentials) (*hotspot.Session, error)

	// SignUp registers a new operator and returns a fresh session.
	SignUp(ctx context.Context, reg Registration) (*hotspot.Session, error)

	// SignOut destroys the session behind cred on the provider side.
	SignOut(ctx context.Context, cred hotspot.Credential) error

	// CurrentSession returns the session behind cred, or (nil, nil) when the
	// provider no longer recognizes it.
	CurrentSession(ctx context.Context, cred hotspot.Credential) (*hotspot.Session, error)

	// RefreshSession exchanges cred for a session with a fresh credential.
	RefreshSession(ctx context.Context, cred hotspot.Credential) (*hotspot.Session, error)

	// ResetPassword starts the password-reset flow for email.
	ResetPassword(ctx context.Context, email string) error

	// UpdatePassword sets a new password for the identity behind cred.
	UpdatePassword(ctx context.Context, cred hotspot.Credential, newPassword string) error

	// Events streams provider-side transitions to the auth coordinator.
	Events() <-chan Event
}
