// Package hotspot provides a Go SDK for the hotspot-management service.
//
// The SDK defines one service interface per resource family (hotspots, RADIUS
// users/groups/sessions, plans, subscriptions, payments, tenants) plus an auth
// coordinator. Concrete implementations are injected via Option functions: the
// live/ package talks to the REST backend through the resilient transport, and
// the sim/ package serves the same contracts from an in-memory seeded store.
// The bootstrap package selects one of the two once, from configuration, so
// call sites never branch on the active backend.
//
// Example:
//
//	app, err := bootstrap.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	spots, err := app.Client.Hotspots().List(ctx, hotspot.ListOptions{})
package hotspot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// AuthCoordinator is the single source of truth for "who is logged in".
// Implemented by auth.Coordinator; injected so the root package stays free of
// wiring concerns.
type AuthCoordinator interface {
	// Session returns a copy of the current session, if one exists.
	Session() (Session, bool)

	// IsAuthenticated reports whether a valid session is established.
	IsAuthenticated() bool

	// IsLoading reports whether the initial session fetch is still in flight.
	IsLoading() bool

	// SignIn authenticates with the identity provider.
	SignIn(ctx context.Context, email, password string) error

	// SignOut destroys the session and purges all cached data.
	SignOut(ctx context.Context) error

	// Refresh re-fetches the session. Failure is logged, never escalated.
	Refresh(ctx context.Context) error
}

// Client is the main entry point for data access.
// Service implementations are injected via Option functions.
type Client struct {
	logger *slog.Logger
	auth   AuthCoordinator

	hotspots       HotspotService
	radiusUsers    RadiusUserService
	radiusGroups   RadiusGroupService
	radiusSessions RadiusSessionService
	plans          PlanService
	subscriptions  SubscriptionService
	payments       PaymentService
	tenants        TenantService
	account        AccountService
	stats          StatsService
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithAuth sets the auth coordinator.
func WithAuth(a AuthCoordinator) Option {
	return func(c *Client) { c.auth = a }
}

// WithHotspotService sets the hotspot service implementation.
func WithHotspotService(s HotspotService) Option {
	return func(c *Client) { c.hotspots = s }
}

// WithRadiusUserService sets the RADIUS user service implementation.
func WithRadiusUserService(s RadiusUserService) Option {
	return func(c *Client) { c.radiusUsers = s }
}

// WithRadiusGroupService sets the RADIUS group service implementation.
func WithRadiusGroupService(s RadiusGroupService) Option {
	return func(c *Client) { c.radiusGroups = s }
}

// WithRadiusSessionService sets the RADIUS session service implementation.
func WithRadiusSessionService(s RadiusSessionService) Option {
	return func(c *Client) { c.radiusSessions = s }
}

// WithPlanService sets the plan service implementation.
func WithPlanService(s PlanService) Option {
	return func(c *Client) { c.plans = s }
}

// WithSubscriptionService sets the subscription service implementation.
func WithSubscriptionService(s SubscriptionService) Option {
	return func(c *Client) { c.subscriptions = s }
}

// WithPaymentService sets the payment service implementation.
func WithPaymentService(s PaymentService) Option {
	return func(c *Client) { c.payments = s }
}

// WithTenantService sets the tenant service implementation.
func WithTenantService(s TenantService) Option {
	return func(c *Client) { c.tenants = s }
}

// WithAccountService sets the account service implementation.
func WithAccountService(s AccountService) Option {
	return func(c *Client) { c.account = s }
}

// WithStatsService sets the dashboard stats service implementation.
func WithStatsService(s StatsService) Option {
	return func(c *Client) { c.stats = s }
}

// NewClient creates a new client with the given options. At least one service
// must be injected; a client with nothing wired is a configuration mistake.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{logger: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	if c.hotspots == nil && c.radiusUsers == nil && c.radiusGroups == nil &&
		c.radiusSessions == nil && c.plans == nil && c.subscriptions == nil &&
		c.payments == nil && c.tenants == nil && c.account == nil &&
		c.stats == nil && c.auth == nil {
		return nil, fmt.Errorf("hotspot: no services configured")
	}
	return c, nil
}

// Logger returns the client's structured logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Auth returns the auth coordinator, or nil if not configured.
func (c *Client) Auth() AuthCoordinator { return c.auth }

// Hotspots returns the hotspot service, or nil if not configured.
func (c *Client) Hotspots() HotspotService { return c.hotspots }

// RadiusUsers returns the RADIUS user service, or nil if not configured.
func (c *Client) RadiusUsers() RadiusUserService { return c.radiusUsers }

// RadiusGroups returns the RADIUS group service, or nil if not configured.
func (c *Client) RadiusGroups() RadiusGroupService { return c.radiusGroups }

// RadiusSessions returns the RADIUS session service, or nil if not configured.
func (c *Client) RadiusSessions() RadiusSessionService { return c.radiusSessions }

// Plans returns the plan service, or nil if not configured.
func (c *Client) Plans() PlanService { return c.plans }

// Subscriptions returns the subscription service, or nil if not configured.
func (c *Client) Subscriptions() SubscriptionService { return c.subscriptions }

// Payments returns the payment service, or nil if not configured.
func (c *Client) Payments() PaymentService { return c.payments }

// Tenants returns the tenant service, or nil if not configured.
func (c *Client) Tenants() TenantService { return c.tenants }

// Account returns the account service, or nil if not configured.
func (c *Client) Account() AccountService { return c.account }

// Stats returns the dashboard stats service, or nil if not configured.
func (c *Client) Stats() StatsService { return c.stats }

// Close releases all resources held by the client.
// Any injected service that implements io.Closer will be closed.
func (c *Client) Close() error {
	closers := []interface{}{
		c.auth, c.hotspots, c.radiusUsers, c.radiusGroups, c.radiusSessions,
		c.plans, c.subscriptions, c.payments, c.tenants, c.account, c.stats,
	}
	var firstErr error
	for _, svc := range closers {
		if cl, ok := svc.(io.Closer); ok && cl != nil {
			if err := cl.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
