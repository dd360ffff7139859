// Package auth owns the session lifecycle.
//
// The Coordinator is the single writer of auth state. It restores a persisted
// session on startup, brokers sign-in/sign-out against the identity provider,
// refreshes credentials before they expire, and guarantees that sign-out
// purges the request cache synchronously with the state flip.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/apierror"
	"github.com/chimerakang/hotspot-go/events"
	"github.com/chimerakang/hotspot-go/identity"
	"github.com/chimerakang/hotspot-go/live"
	"github.com/chimerakang/hotspot-go/metrics"
	"github.com/chimerakang/hotspot-go/storage"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// State is the coordinator's lifecycle state.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Storage keys for the persisted session. Removed together on sign-out.
const (
	keyCredential = "session.credential"
	keyProfile    = "session.profile"
)

// refreshLeeway is how long before expiry a credential is considered due for
// refresh.
const refreshLeeway = 2 * time.Minute

// errNotSignedIn tells the transport to proceed without an Authorization
// header.
var errNotSignedIn = errors.New("auth: not signed in")

// sessionFamilies are the cache families keyed to the signed-in identity.
// Adopting a session drops these and only these; resource data that is not
// identity-scoped stays cached across a sign-in or credential rotation.
var sessionFamilies = []string{live.FamilyAccount, live.FamilyStats}

// Invalidator is the slice of the request cache the coordinator needs:
// a full purge on sign-out, targeted family invalidation on sign-in and
// refresh. Satisfied by *querycache.Cache.
type Invalidator interface {
	PurgeAll()
	InvalidateFamily(families ...string)
}

type storedProfile struct {
	Subject  string    `json:"subject"`
	IssuedAt time.Time `json:"issued_at"`
}

// Coordinator drives the auth state machine. All exported methods are safe
// for concurrent use.
type Coordinator struct {
	provider identity.Provider
	store    *storage.Store
	cache    Invalidator
	bus      *events.Bus
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	state   State
	session *hotspot.Session

	sf   singleflight.Group
	done chan struct{}
	wg   sync.WaitGroup
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithStore enables session persistence across restarts.
func WithStore(s *storage.Store) Option {
	return func(c *Coordinator) { c.store = s }
}

// WithCache wires the request cache for the synchronous sign-out purge.
func WithCache(inv Invalidator) Option {
	return func(c *Coordinator) { c.cache = inv }
}

// WithEventBus wires the observer bus.
func WithEventBus(b *events.Bus) Option {
	return func(c *Coordinator) { c.bus = b }
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// New creates a Coordinator in the uninitialized state. Call Start to restore
// any persisted session and begin consuming provider events.
func New(provider identity.Provider, opts ...Option) *Coordinator {
	c := &Coordinator{
		provider: provider,
		logger:   slog.Default(),
		metrics:  metrics.New(false),
		state:    StateUninitialized,
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	c.metrics.SetAuthState(string(c.state))
	return c
}

var _ hotspot.AuthCoordinator = (*Coordinator)(nil)

// Start restores a persisted session, if any, and begins consuming provider
// events. Consumers observing IsLoading can defer data fetches until the
// restore settles; Start never returns a network failure as an error.
func (c *Coordinator) Start(ctx context.Context) error {
	c.setState(StateLoading, nil)

	c.wg.Add(1)
	go c.consumeEvents()

	cred, ok := c.storedCredential()
	if !ok {
		c.setState(StateUnauthenticated, nil)
		return nil
	}

	sess, err := c.provider.CurrentSession(ctx, cred)
	switch {
	case err != nil:
		// Transient failure: stay signed out for now but keep the stored
		// credential so the next Start can retry the restore.
		c.logger.Warn("session restore failed", "err", err)
		c.setState(StateUnauthenticated, nil)
	case sess == nil:
		// Provider no longer recognizes the credential.
		c.clearStored()
		c.setState(StateUnauthenticated, nil)
	default:
		c.adopt(sess, events.Restored)
	}
	return nil
}

// Close stops the provider-event consumer. It does not sign the user out.
func (c *Coordinator) Close() error {
	close(c.done)
	c.wg.Wait()
	return nil
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Session returns a copy of the current session, if one exists.
func (c *Coordinator) Session() (hotspot.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return hotspot.Session{}, false
	}
	return *c.session, true
}

// IsAuthenticated reports whether a valid session is established.
func (c *Coordinator) IsAuthenticated() bool {
	return c.State() == StateAuthenticated
}

// IsLoading reports whether the initial restore is still in flight.
func (c *Coordinator) IsLoading() bool {
	return c.State() == StateLoading
}

// SignIn authenticates against the identity provider and establishes a
// session.
func (c *Coordinator) SignIn(ctx context.Context, email, password string) error {
	sess, err := c.provider.SignIn(ctx, identity.Credentials{Email: email, Password: password})
	if err != nil {
		c.metrics.RecordSignIn("failure")
		return apierror.FromAny(err)
	}
	c.metrics.RecordSignIn("success")
	c.adopt(sess, events.SignedIn)
	return nil
}

// SignUp registers a new operator and establishes a session.
func (c *Coordinator) SignUp(ctx context.Context, reg identity.Registration) error {
	sess, err := c.provider.SignUp(ctx, reg)
	if err != nil {
		return apierror.FromAny(err)
	}
	c.adopt(sess, events.SignedIn)
	return nil
}

// SignOut destroys the local session. The state flip, the cache purge, and
// the storage wipe happen synchronously, before the provider round-trip, so
// no caller observing the unauthenticated state can read another user's
// cached data. A provider-side failure is logged and does not resurrect the
// session.
func (c *Coordinator) SignOut(ctx context.Context) error {
	c.mu.Lock()
	var cred hotspot.Credential
	var subject string
	if c.session != nil {
		cred = c.session.Credential
		subject = c.session.Subject
	}
	c.session = nil
	c.state = StateUnauthenticated
	if c.cache != nil {
		c.cache.PurgeAll()
	}
	c.mu.Unlock()

	c.metrics.SetAuthState(string(StateUnauthenticated))
	c.clearStored()
	c.emit(events.SignedOut, subject)

	if cred.Token != "" {
		if err := c.provider.SignOut(ctx, cred); err != nil {
			c.logger.Warn("provider sign-out failed", "err", err)
		}
	}
	return nil
}

// Refresh exchanges the current credential for a fresh one. Failure is
// logged and the existing session is kept; it is never escalated to the
// caller. Concurrent refreshes collapse into one provider call.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.RLock()
	if c.session == nil {
		c.mu.RUnlock()
		return nil
	}
	cred := c.session.Credential
	c.mu.RUnlock()

	_, _, _ = c.sf.Do("refresh", func() (any, error) {
		sess, err := c.provider.RefreshSession(ctx, cred)
		if err != nil || sess == nil {
			c.metrics.RecordRefresh("failure")
			c.logger.Warn("session refresh failed", "err", err)
			return nil, nil
		}
		c.metrics.RecordRefresh("success")
		c.adopt(sess, events.TokenRefreshed)
		return nil, nil
	})
	return nil
}

// Credential returns the credential the data transport should attach.
// A credential within refreshLeeway of expiry is refreshed first; if the
// refresh fails the old credential is returned and the backend's 401 becomes
// the signal. An unauthenticated coordinator returns an error so the
// transport proceeds without an Authorization header.
func (c *Coordinator) Credential(ctx context.Context) (hotspot.Credential, error) {
	c.mu.RLock()
	sess := c.session
	c.mu.RUnlock()
	if sess == nil {
		return hotspot.Credential{}, errNotSignedIn
	}

	cred := sess.Credential
	if !cred.ExpiresAt.IsZero() && time.Until(cred.ExpiresAt) < refreshLeeway {
		_ = c.Refresh(ctx)
		if s, ok := c.Session(); ok {
			cred = s.Credential
		}
	}
	return cred, nil
}

// Token adapts Credential to the transport's credential hook.
func (c *Coordinator) Token(ctx context.Context) (string, error) {
	cred, err := c.Credential(ctx)
	if err != nil {
		return "", err
	}
	return cred.Token, nil
}

// adopt installs sess as the current session, persists it, and announces the
// transition. Session-scoped cache families are invalidated so the next read
// reflects the adopted identity; everything else stays cached.
func (c *Coordinator) adopt(sess *hotspot.Session, kind events.Kind) {
	withExpiry(sess)

	c.mu.Lock()
	c.session = sess
	c.state = StateAuthenticated
	if c.cache != nil {
		c.cache.InvalidateFamily(sessionFamilies...)
	}
	c.mu.Unlock()

	c.metrics.SetAuthState(string(StateAuthenticated))
	c.persist(sess)
	c.emit(kind, sess.Subject)
}

// consumeEvents reacts to provider-side transitions, such as a server-side
// revocation or a session minted outside the coordinator's own calls. Events
// echoing a session the coordinator already holds are dropped, so a
// coordinator-driven sign-in is not adopted twice.
func (c *Coordinator) consumeEvents() {
	defer c.wg.Done()
	ch := c.provider.Events()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.handleProviderEvent(ev)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleProviderEvent(ev identity.Event) {
	switch ev.Kind {
	case identity.EventSignedOut:
		if c.IsAuthenticated() {
			c.logger.Info("provider reported sign-out, clearing local session")
			_ = c.SignOut(context.Background())
		}
	case identity.EventSignedIn, identity.EventTokenRefreshed:
		if ev.Session == nil {
			return
		}
		c.mu.RLock()
		held := c.session != nil && c.session.Credential.Token == ev.Session.Credential.Token
		c.mu.RUnlock()
		if held {
			return
		}
		kind := events.SignedIn
		if ev.Kind == identity.EventTokenRefreshed {
			kind = events.TokenRefreshed
		}
		c.adopt(ev.Session, kind)
	}
}

func (c *Coordinator) setState(s State, sess *hotspot.Session) {
	c.mu.Lock()
	c.state = s
	c.session = sess
	c.mu.Unlock()
	c.metrics.SetAuthState(string(s))
}

func (c *Coordinator) emit(kind events.Kind, subject string) {
	if c.bus == nil {
		return
	}
	c.bus.Emit(events.Event{Kind: kind, Subject: subject})
}

func (c *Coordinator) persist(sess *hotspot.Session) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(keyCredential, sess.Credential); err != nil {
		c.logger.Warn("persisting credential failed", "err", err)
		return
	}
	if err := c.store.Set(keyProfile, storedProfile{Subject: sess.Subject, IssuedAt: sess.IssuedAt}); err != nil {
		c.logger.Warn("persisting profile failed", "err", err)
	}
}

func (c *Coordinator) storedCredential() (hotspot.Credential, bool) {
	if c.store == nil {
		return hotspot.Credential{}, false
	}
	var cred hotspot.Credential
	if err := c.store.Get(keyCredential, &cred); err != nil {
		return hotspot.Credential{}, false
	}
	return cred, cred.Token != ""
}

func (c *Coordinator) clearStored() {
	if c.store == nil {
		return
	}
	if err := c.store.RemoveAll(keyCredential, keyProfile); err != nil {
		c.logger.Warn("clearing stored session failed", "err", err)
	}
}

// withExpiry fills in a missing credential expiry from the token's exp claim
// when the token happens to be a JWT. Signature verification is the
// backend's job; this is only scheduling metadata for the refresh leeway.
func withExpiry(sess *hotspot.Session) {
	if sess == nil || !sess.Credential.ExpiresAt.IsZero() {
		return
	}
	token, _, err := jwt.NewParser().ParseUnverified(sess.Credential.Token, jwt.MapClaims{})
	if err != nil {
		return
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	sess.Credential.ExpiresAt = exp.Time
}
