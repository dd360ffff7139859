package sim

import (
	"context"
	"net/http"
	"sync"
	"time"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/apierror"
	"github.com/chimerakang/hotspot-go/identity"
	"github.com/chimerakang/hotspot-go/validate"
	"github.com/google/uuid"
)

// sessionTTL is the lifetime of a simulated credential.
const sessionTTL = time.Hour

// IdentityProvider is the in-memory identity provider. It accepts any
// registered operator, mints opaque uuid tokens, and honors refresh and
// revocation like the live provider.
type IdentityProvider struct {
	s    *store
	gate *validate.Gate

	mu        sync.Mutex
	passwords map[string]string           // email -> password
	sessions  map[string]*hotspot.Session // token -> session
	events    chan identity.Event
}

var _ identity.Provider = (*IdentityProvider)(nil)

func newIdentityProvider(s *store) *IdentityProvider {
	p := &IdentityProvider{
		s:         s,
		gate:      validate.New(),
		passwords: make(map[string]string),
		sessions:  make(map[string]*hotspot.Session),
		events:    make(chan identity.Event, 8),
	}
	// The demo operator can always sign in.
	p.passwords["operator@hotspot.local"] = "operator"
	return p
}

func (p *IdentityProvider) SignIn(ctx context.Context, creds identity.Credentials) (*hotspot.Session, error) {
	if err := p.gate.Struct(creds); err != nil {
		return nil, err
	}
	if err := p.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pw, ok := p.passwords[creds.Email]; !ok || pw != creds.Password {
		return nil, apierror.FromResponse(http.StatusUnauthorized, "invalid email or password", "")
	}
	sess := p.mint(creds.Email)
	p.emit(identity.Event{Kind: identity.EventSignedIn, Session: sess})
	return sess, nil
}

func (p *IdentityProvider) SignUp(ctx context.Context, reg identity.Registration) (*hotspot.Session, error) {
	if err := p.gate.Struct(reg); err != nil {
		return nil, err
	}
	if err := p.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.passwords[reg.Email]; exists {
		return nil, apierror.FromResponse(http.StatusConflict, "email already registered", "")
	}
	p.passwords[reg.Email] = reg.Password
	sess := p.mint(reg.Email)
	p.emit(identity.Event{Kind: identity.EventSignedIn, Session: sess})
	return sess, nil
}

func (p *IdentityProvider) SignOut(ctx context.Context, cred hotspot.Credential) error {
	if err := p.s.delay(ctx); err != nil {
		return apierror.FromNetwork(err)
	}
	p.mu.Lock()
	delete(p.sessions, cred.Token)
	p.mu.Unlock()
	p.emit(identity.Event{Kind: identity.EventSignedOut})
	return nil
}

func (p *IdentityProvider) CurrentSession(ctx context.Context, cred hotspot.Credential) (*hotspot.Session, error) {
	if err := p.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.sessions[cred.Token]
	if !ok || !sess.Credential.Valid() {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (p *IdentityProvider) RefreshSession(ctx context.Context, cred hotspot.Credential) (*hotspot.Session, error) {
	if err := p.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	old, ok := p.sessions[cred.Token]
	if !ok {
		return nil, apierror.FromResponse(http.StatusUnauthorized, "unknown session", "")
	}
	delete(p.sessions, cred.Token)
	sess := p.mint(old.Subject)
	p.emit(identity.Event{Kind: identity.EventTokenRefreshed, Session: sess})
	return sess, nil
}

func (p *IdentityProvider) ResetPassword(ctx context.Context, email string) error {
	if err := p.gate.Var(email, "required,email"); err != nil {
		return err
	}
	if err := p.s.delay(ctx); err != nil {
		return apierror.FromNetwork(err)
	}
	// Whether the email exists is never disclosed.
	return nil
}

func (p *IdentityProvider) UpdatePassword(ctx context.Context, cred hotspot.Credential, newPassword string) error {
	if err := p.gate.Var(newPassword, "required,min=6,max=128"); err != nil {
		return err
	}
	if err := p.s.delay(ctx); err != nil {
		return apierror.FromNetwork(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.sessions[cred.Token]
	if !ok {
		return apierror.FromResponse(http.StatusUnauthorized, "unknown session", "")
	}
	p.passwords[sess.Subject] = newPassword
	return nil
}

func (p *IdentityProvider) Events() <-chan identity.Event {
	return p.events
}

// Revoke invalidates every session of subject, as a server-side revocation
// would. Tests use it to drive the provider-event path.
func (p *IdentityProvider) Revoke(subject string) {
	p.mu.Lock()
	for token, sess := range p.sessions {
		if sess.Subject == subject {
			delete(p.sessions, token)
		}
	}
	p.mu.Unlock()
	p.emit(identity.Event{Kind: identity.EventSignedOut})
}

// mint creates and registers a fresh session. Caller holds p.mu.
func (p *IdentityProvider) mint(subject string) *hotspot.Session {
	now := p.s.now()
	sess := &hotspot.Session{
		Subject: subject,
		Credential: hotspot.Credential{
			Token:     uuid.NewString(),
			ExpiresAt: now.Add(sessionTTL),
		},
		IssuedAt: now,
	}
	p.sessions[sess.Credential.Token] = sess
	cp := *sess
	return &cp
}

func (p *IdentityProvider) emit(ev identity.Event) {
	select {
	case p.events <- ev:
	default:
	}
}
