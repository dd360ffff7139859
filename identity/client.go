package identity

import (
	"context"
	"time"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/apierror"
	"github.com/chimerakang/hotspot-go/transport"
	"github.com/chimerakang/hotspot-go/validate"
)

type credCtxKey struct{}

// Client implements Provider against the REST identity endpoints. The
// identity provider issues credentials through a different flow than the data
// backend, so its requests use the Token header scheme.
type Client struct {
	tr     *transport.Transport
	gate   *validate.Gate
	events chan Event
}

// compile-time check
var _ Provider = (*Client)(nil)

// NewClient creates a provider client for the given identity base URL.
func NewClient(baseURL string, opts ...transport.Option) *Client {
	c := &Client{
		gate:   validate.New(),
		events: make(chan Event, 8),
	}
	base := []transport.Option{
		transport.WithScheme(transport.SchemeToken),
		transport.WithCredentialFunc(func(ctx context.Context) (string, error) {
			tok, _ := ctx.Value(credCtxKey{}).(string)
			return tok, nil
		}),
	}
	c.tr = transport.New(baseURL, append(base, opts...)...)
	return c
}

// withCred stashes the per-call credential where the transport's outbound
// stage picks it up.
func withCred(ctx context.Context, cred hotspot.Credential) context.Context {
	return context.WithValue(ctx, credCtxKey{}, cred.Token)
}

// sessionResponse is the wire shape every session-bearing endpoint returns.
type sessionResponse struct {
	Token     string    `json:"token" validate:"required"`
	ExpiresAt time.Time `json:"expires_at"`
	User      struct {
		ID    int64  `json:"id"`
		Email string `json:"email" validate:"required,email"`
	} `json:"user"`
}

func (r *sessionResponse) session() *hotspot.Session {
	return &hotspot.Session{
		Subject: r.User.Email,
		Credential: hotspot.Credential{
			Token:     r.Token,
			ExpiresAt: r.ExpiresAt,
		},
		IssuedAt: time.Now(),
	}
}

func (c *Client) emit(e Event) {
	select {
	case c.events <- e:
	default:
		// A full buffer means no coordinator is draining; drop rather
		// than block the sign-in path.
	}
}

// SignIn authenticates with email and password.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (*hotspot.Session, error) {
	if err := c.gate.Struct(creds); err != nil {
		return nil, err
	}
	var resp sessionResponse
	if err := c.tr.Post(ctx, "/auth/login", creds, &resp); err != nil {
		return nil, apierror.FromIdentity(err)
	}
	if err := c.gate.Struct(resp); err != nil {
		return nil, err
	}
	s := resp.session()
	c.emit(Event{Kind: EventSignedIn, Session: s})
	return s, nil
}

// SignUp registers a new operator.
func (c *Client) SignUp(ctx context.Context, reg Registration) (*hotspot.Session, error) {
	if err := c.gate.Struct(reg); err != nil {
		return nil, err
	}
	var resp sessionResponse
	if err := c.tr.Post(ctx, "/auth/register", reg, &resp); err != nil {
		return nil, apierror.FromIdentity(err)
	}
	if err := c.gate.Struct(resp); err != nil {
		return nil, err
	}
	s := resp.session()
	c.emit(Event{Kind: EventSignedIn, Session: s})
	return s, nil
}

// SignOut destroys the session on the provider side. The local session is the
// coordinator's to clear; a provider-side failure still emits the sign-out
// event so local state cannot outlive a dead credential.
func (c *Client) SignOut(ctx context.Context, cred hotspot.Credential) error {
	err := c.tr.Post(withCred(ctx, cred), "/auth/logout", nil, nil)
	c.emit(Event{Kind: EventSignedOut})
	if err != nil {
		return apierror.FromIdentity(err)
	}
	return nil
}

// CurrentSession resolves the session behind cred. A 401 means the provider
// no longer recognizes the credential; that is an answer, not an error.
func (c *Client) CurrentSession(ctx context.Context, cred hotspot.Credential) (*hotspot.Session, error) {
	if cred.Token == "" {
		return nil, nil
	}
	var resp sessionResponse
	err := c.tr.Get(withCred(ctx, cred), "/auth/session", &resp)
	if err != nil {
		if apierror.IsUnauthorized(err) {
			return nil, nil
		}
		return nil, apierror.FromIdentity(err)
	}
	if err := c.gate.Struct(resp); err != nil {
		return nil, err
	}
	return resp.session(), nil
}

// RefreshSession exchanges cred for a fresh credential.
func (c *Client) RefreshSession(ctx context.Context, cred hotspot.Credential) (*hotspot.Session, error) {
	var resp sessionResponse
	if err := c.tr.Post(withCred(ctx, cred), "/auth/refresh", nil, &resp); err != nil {
		return nil, apierror.FromIdentity(err)
	}
	if err := c.gate.Struct(resp); err != nil {
		return nil, err
	}
	s := resp.session()
	c.emit(Event{Kind: EventTokenRefreshed, Session: s})
	return s, nil
}

// ResetPassword starts the reset flow; the provider emails a reset link.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	if err := c.gate.Var(email, "required,email"); err != nil {
		return err
	}
	body := map[string]string{"email": email}
	if err := c.tr.Post(ctx, "/auth/password/reset", body, nil); err != nil {
		return apierror.FromIdentity(err)
	}
	return nil
}

// UpdatePassword sets a new password for the signed-in identity.
func (c *Client) UpdatePassword(ctx context.Context, cred hotspot.Credential, newPassword string) error {
	if err := c.gate.Var(newPassword, "required,min=8"); err != nil {
		return err
	}
	body := map[string]string{"password": newPassword}
	if err := c.tr.Patch(withCred(ctx, cred), "/auth/password", body, nil); err != nil {
		return apierror.FromIdentity(err)
	}
	return nil
}

// Events streams this provider's transitions.
func (c *Client) Events() <-chan Event {
	return c.events
}
