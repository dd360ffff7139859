package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/events"
	"github.com/chimerakang/hotspot-go/identity"
	"github.com/chimerakang/hotspot-go/live"
	"github.com/chimerakang/hotspot-go/querycache"
	"github.com/chimerakang/hotspot-go/storage"
	"github.com/golang-jwt/jwt/v5"
)

type stubProvider struct {
	mu           sync.Mutex
	signInErr    error
	currentSess  *hotspot.Session
	currentErr   error
	refreshSess  *hotspot.Session
	refreshErr   error
	signOutErr   error
	signOutCalls int
	refreshCalls int
	events       chan identity.Event
}

func newStubProvider() *stubProvider {
	return &stubProvider{events: make(chan identity.Event, 4)}
}

func (p *stubProvider) SignIn(ctx context.Context, creds identity.Credentials) (*hotspot.Session, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return &hotspot.Session{
		Subject:    creds.Email,
		Credential: hotspot.Credential{Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour)},
		IssuedAt:   time.Now(),
	}, nil
}

func (p *stubProvider) SignUp(ctx context.Context, reg identity.Registration) (*hotspot.Session, error) {
	return &hotspot.Session{Subject: reg.Email, Credential: hotspot.Credential{Token: "tok-new"}}, nil
}

func (p *stubProvider) SignOut(ctx context.Context, cred hotspot.Credential) error {
	p.mu.Lock()
	p.signOutCalls++
	p.mu.Unlock()
	return p.signOutErr
}

func (p *stubProvider) CurrentSession(ctx context.Context, cred hotspot.Credential) (*hotspot.Session, error) {
	return p.currentSess, p.currentErr
}

func (p *stubProvider) RefreshSession(ctx context.Context, cred hotspot.Credential) (*hotspot.Session, error) {
	p.mu.Lock()
	p.refreshCalls++
	p.mu.Unlock()
	return p.refreshSess, p.refreshErr
}

func (p *stubProvider) ResetPassword(ctx context.Context, email string) error { return nil }

func (p *stubProvider) UpdatePassword(ctx context.Context, cred hotspot.Credential, pw string) error {
	return nil
}

func (p *stubProvider) Events() <-chan identity.Event { return p.events }

type recordingCache struct {
	purges atomic.Int64

	mu       sync.Mutex
	families [][]string
}

func (r *recordingCache) PurgeAll() { r.purges.Add(1) }

func (r *recordingCache) InvalidateFamily(families ...string) {
	r.mu.Lock()
	r.families = append(r.families, families)
	r.mu.Unlock()
}

func (r *recordingCache) invalidations() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.families...)
}

func TestSignInEstablishesSession(t *testing.T) {
	p := newStubProvider()
	c := New(p)

	if got := c.State(); got != StateUninitialized {
		t.Fatalf("State() = %q, want %q", got, StateUninitialized)
	}

	if err := c.SignIn(context.Background(), "op@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}
	if !c.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = false after successful sign-in")
	}
	sess, ok := c.Session()
	if !ok {
		t.Fatal("Session() reported no session")
	}
	if sess.Subject != "op@example.com" {
		t.Errorf("Session().Subject = %q, want %q", sess.Subject, "op@example.com")
	}
}

func TestSignInInvalidatesSessionScopedFamiliesOnly(t *testing.T) {
	cache := querycache.New()
	cache.Set(querycache.Key{Family: live.FamilyAccount}, &hotspot.Account{ID: 1, Email: "old-user@example.com"}, querycache.TTLReference)
	cache.Set(querycache.Key{Family: live.FamilyStats}, &hotspot.DashboardStats{}, querycache.TTLOperational)
	cache.Set(querycache.Key{Family: live.FamilyPlans}, "plan-list", querycache.TTLReference)

	c := New(newStubProvider(), WithCache(cache))
	if err := c.SignIn(context.Background(), "new-user@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}

	if _, ok := cache.Peek(querycache.Key{Family: live.FamilyAccount}); ok {
		t.Error("account entry survived sign-in as a different user")
	}
	if _, ok := cache.Peek(querycache.Key{Family: live.FamilyStats}); ok {
		t.Error("stats entry survived sign-in")
	}
	if _, ok := cache.Peek(querycache.Key{Family: live.FamilyPlans}); !ok {
		t.Error("sign-in dropped a family that is not session-scoped")
	}
}

func TestRefreshInvalidatesSessionScopedFamilies(t *testing.T) {
	p := newStubProvider()
	p.refreshSess = &hotspot.Session{
		Subject:    "op@example.com",
		Credential: hotspot.Credential{Token: "tok-2", ExpiresAt: time.Now().Add(time.Hour)},
	}
	cache := &recordingCache{}
	c := New(p, WithCache(cache))

	if err := c.SignIn(context.Background(), "op@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	inv := cache.invalidations()
	if len(inv) != 2 { // sign-in, then refresh
		t.Fatalf("InvalidateFamily calls = %d, want 2 (%v)", len(inv), inv)
	}
	if cache.purges.Load() != 0 {
		t.Error("credential rotation triggered a full purge")
	}
}

func TestProviderSignInEventAdoptsSession(t *testing.T) {
	p := newStubProvider()
	c := New(p)
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	p.events <- identity.Event{Kind: identity.EventSignedIn, Session: &hotspot.Session{
		Subject:    "elsewhere@example.com",
		Credential: hotspot.Credential{Token: "tok-external", ExpiresAt: time.Now().Add(time.Hour)},
	}}

	deadline := time.After(2 * time.Second)
	for !c.IsAuthenticated() {
		select {
		case <-deadline:
			t.Fatal("provider sign-in event never established a session")
		case <-time.After(5 * time.Millisecond):
		}
	}
	sess, _ := c.Session()
	if sess.Subject != "elsewhere@example.com" {
		t.Errorf("Session().Subject = %q, want %q", sess.Subject, "elsewhere@example.com")
	}
}

func TestSignInFailureStaysSignedOut(t *testing.T) {
	p := newStubProvider()
	p.signInErr = errors.New("invalid credentials")
	c := New(p)

	if err := c.SignIn(context.Background(), "op@example.com", "wrong"); err == nil {
		t.Fatal("SignIn() returned nil error, want failure")
	}
	if c.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = true after failed sign-in")
	}
}

func TestSignOutPurgesCacheAndStorage(t *testing.T) {
	p := newStubProvider()
	p.signOutErr = errors.New("backend unreachable")

	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New() error: %v", err)
	}
	cache := &recordingCache{}
	c := New(p, WithStore(store), WithCache(cache))

	if err := c.SignIn(context.Background(), "op@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}
	var cred hotspot.Credential
	if err := store.Get(keyCredential, &cred); err != nil {
		t.Fatalf("credential not persisted: %v", err)
	}

	// Provider-side failure must not resurrect the local session.
	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error: %v", err)
	}
	if c.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = true after sign-out")
	}
	if got := cache.purges.Load(); got != 1 {
		t.Errorf("cache purges = %d, want 1", got)
	}
	if err := store.Get(keyCredential, &cred); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("stored credential after sign-out: err = %v, want ErrNotFound", err)
	}
	p.mu.Lock()
	calls := p.signOutCalls
	p.mu.Unlock()
	if calls != 1 {
		t.Errorf("provider SignOut calls = %d, want 1", calls)
	}
}

func TestStartRestoresPersistedSession(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New() error: %v", err)
	}
	if err := store.Set(keyCredential, hotspot.Credential{Token: "tok-old"}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	p := newStubProvider()
	p.currentSess = &hotspot.Session{
		Subject:    "op@example.com",
		Credential: hotspot.Credential{Token: "tok-old", ExpiresAt: time.Now().Add(time.Hour)},
	}
	c := New(p, WithStore(store))
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !c.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = false after restore")
	}
}

func TestStartWithUnrecognizedCredential(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New() error: %v", err)
	}
	if err := store.Set(keyCredential, hotspot.Credential{Token: "tok-revoked"}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	p := newStubProvider() // CurrentSession returns (nil, nil)
	c := New(p, WithStore(store))
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if got := c.State(); got != StateUnauthenticated {
		t.Fatalf("State() = %q, want %q", got, StateUnauthenticated)
	}
	var cred hotspot.Credential
	if err := store.Get(keyCredential, &cred); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("revoked credential kept in storage: err = %v, want ErrNotFound", err)
	}
}

func TestStartKeepsCredentialOnTransientFailure(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New() error: %v", err)
	}
	if err := store.Set(keyCredential, hotspot.Credential{Token: "tok-kept"}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	p := newStubProvider()
	p.currentErr = errors.New("dial tcp: connection refused")
	c := New(p, WithStore(store))
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if got := c.State(); got != StateUnauthenticated {
		t.Fatalf("State() = %q, want %q", got, StateUnauthenticated)
	}
	var cred hotspot.Credential
	if err := store.Get(keyCredential, &cred); err != nil {
		t.Fatalf("credential dropped after transient failure: %v", err)
	}
}

func TestRefreshSoftFails(t *testing.T) {
	p := newStubProvider()
	p.refreshErr = errors.New("refresh endpoint down")
	c := New(p)

	if err := c.SignIn(context.Background(), "op@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}
	before, _ := c.Session()

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() escalated a failure: %v", err)
	}
	after, ok := c.Session()
	if !ok || after.Credential.Token != before.Credential.Token {
		t.Error("failed refresh must keep the existing session")
	}
	if !c.IsAuthenticated() {
		t.Error("failed refresh flipped the auth state")
	}
}

func TestRefreshReplacesCredential(t *testing.T) {
	p := newStubProvider()
	p.refreshSess = &hotspot.Session{
		Subject:    "op@example.com",
		Credential: hotspot.Credential{Token: "tok-2", ExpiresAt: time.Now().Add(time.Hour)},
	}
	c := New(p)

	if err := c.SignIn(context.Background(), "op@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	sess, _ := c.Session()
	if sess.Credential.Token != "tok-2" {
		t.Errorf("Credential.Token = %q, want %q", sess.Credential.Token, "tok-2")
	}
}

func TestCredentialWhenSignedOut(t *testing.T) {
	c := New(newStubProvider())
	if _, err := c.Credential(context.Background()); err == nil {
		t.Fatal("Credential() returned nil error while signed out")
	}
}

func TestCredentialRefreshesNearExpiry(t *testing.T) {
	p := newStubProvider()
	p.refreshSess = &hotspot.Session{
		Subject:    "op@example.com",
		Credential: hotspot.Credential{Token: "tok-fresh", ExpiresAt: time.Now().Add(time.Hour)},
	}
	c := New(p)

	c.adopt(&hotspot.Session{
		Subject:    "op@example.com",
		Credential: hotspot.Credential{Token: "tok-stale", ExpiresAt: time.Now().Add(30 * time.Second)},
	}, events.SignedIn)

	cred, err := c.Credential(context.Background())
	if err != nil {
		t.Fatalf("Credential() error: %v", err)
	}
	if cred.Token != "tok-fresh" {
		t.Errorf("Credential().Token = %q, want %q", cred.Token, "tok-fresh")
	}
	p.mu.Lock()
	calls := p.refreshCalls
	p.mu.Unlock()
	if calls != 1 {
		t.Errorf("refresh calls = %d, want 1", calls)
	}
}

func TestProviderSignOutEventClearsSession(t *testing.T) {
	p := newStubProvider()
	cache := &recordingCache{}
	c := New(p, WithCache(cache))
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := c.SignIn(context.Background(), "op@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}

	p.events <- identity.Event{Kind: identity.EventSignedOut}

	deadline := time.After(2 * time.Second)
	for c.IsAuthenticated() {
		select {
		case <-deadline:
			t.Fatal("provider sign-out event never cleared the session")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if cache.purges.Load() == 0 {
		t.Error("provider-driven sign-out skipped the cache purge")
	}
}

func TestWithExpiryReadsJWTExpClaim(t *testing.T) {
	exp := time.Now().Add(45 * time.Minute).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "op@example.com",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	sess := &hotspot.Session{Credential: hotspot.Credential{Token: tok}}
	withExpiry(sess)
	if !sess.Credential.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", sess.Credential.ExpiresAt, exp)
	}

	// Opaque tokens are left alone.
	sess = &hotspot.Session{Credential: hotspot.Credential{Token: "opaque-token"}}
	withExpiry(sess)
	if !sess.Credential.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v for opaque token, want zero", sess.Credential.ExpiresAt)
	}
}
