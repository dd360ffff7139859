// Package bootstrap assembles a ready-to-use SDK from configuration: it
// selects the live or simulated backend, wires the transport, cache, auth
// coordinator, event bus, and metrics together, and hands back one client.
//
// The selection happens exactly once, at startup. Both backends implement the
// same service interfaces, so nothing above this package knows which one is
// running.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/auth"
	"github.com/chimerakang/hotspot-go/config"
	"github.com/chimerakang/hotspot-go/events"
	"github.com/chimerakang/hotspot-go/identity"
	"github.com/chimerakang/hotspot-go/live"
	"github.com/chimerakang/hotspot-go/metrics"
	"github.com/chimerakang/hotspot-go/querycache"
	"github.com/chimerakang/hotspot-go/sim"
	"github.com/chimerakang/hotspot-go/storage"
	"github.com/chimerakang/hotspot-go/transport"
)

// App is the assembled SDK.
type App struct {
	Client  *hotspot.Client
	Auth    *auth.Coordinator
	Cache   *querycache.Cache
	Bus     *events.Bus
	Metrics *metrics.Metrics

	logger *slog.Logger
}

// Option configures the assembly.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	handlers []events.Handler
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEventHandler registers an observer for auth-state transitions.
func WithEventHandler(h events.Handler) Option {
	return func(o *options) { o.handlers = append(o.handlers, h) }
}

// New assembles the SDK per cfg. Call Start before using the client and
// Close on shutdown.
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	m := metrics.New(cfg.MetricsEnabled)
	cache := querycache.New(querycache.WithLogger(o.logger), querycache.WithMetrics(m))

	busOpts := make([]events.Option, 0, len(o.handlers))
	for _, h := range o.handlers {
		busOpts = append(busOpts, events.WithHandler(h))
	}
	bus := events.New(0, busOpts...)

	authOpts := []auth.Option{
		auth.WithCache(cache),
		auth.WithEventBus(bus),
		auth.WithLogger(o.logger),
		auth.WithMetrics(m),
	}
	if cfg.StorageDir != "" {
		store, err := storage.New(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: open session store: %w", err)
		}
		authOpts = append(authOpts, auth.WithStore(store))
	}

	var coordinator *auth.Coordinator
	clientOpts := []hotspot.Option{hotspot.WithLogger(o.logger)}

	switch cfg.Backend {
	case config.BackendSim:
		backend := sim.New(sim.WithSeed(), sim.WithLatencyMax(cfg.SimLatencyMax))
		coordinator = auth.New(backend.Identity, authOpts...)
		clientOpts = append(clientOpts, serviceOptions(simServices(backend))...)

	case config.BackendLive:
		provider := identity.NewClient(cfg.IdentityURL,
			transport.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
			transport.WithMaxAttempts(uint(cfg.MaxAttempts)),
			transport.WithLogger(o.logger),
			transport.WithMetrics(m),
		)
		coordinator = auth.New(provider, authOpts...)

		tr := transport.New(cfg.BaseURL,
			transport.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
			transport.WithMaxAttempts(uint(cfg.MaxAttempts)),
			transport.WithCredentialFunc(coordinator.Token),
			transport.WithLogger(o.logger),
			transport.WithMetrics(m),
		)
		backend := live.New(tr, cache)
		clientOpts = append(clientOpts, serviceOptions(liveServices(backend))...)

	default:
		return nil, fmt.Errorf("bootstrap: unknown backend %q", cfg.Backend)
	}

	clientOpts = append(clientOpts, hotspot.WithAuth(coordinator))
	client, err := hotspot.NewClient(clientOpts...)
	if err != nil {
		return nil, err
	}

	return &App{
		Client:  client,
		Auth:    coordinator,
		Cache:   cache,
		Bus:     bus,
		Metrics: m,
		logger:  o.logger,
	}, nil
}

// Start restores any persisted session and begins consuming provider events.
func (a *App) Start(ctx context.Context) error {
	return a.Auth.Start(ctx)
}

// Close shuts the coordinator and the event bus down.
func (a *App) Close() error {
	err := a.Auth.Close()
	if busErr := a.Bus.Close(); err == nil {
		err = busErr
	}
	return err
}

// serviceSet is the full set of service implementations one backend provides.
type serviceSet struct {
	hotspots       hotspot.HotspotService
	radiusUsers    hotspot.RadiusUserService
	radiusGroups   hotspot.RadiusGroupService
	radiusSessions hotspot.RadiusSessionService
	plans          hotspot.PlanService
	subscriptions  hotspot.SubscriptionService
	payments       hotspot.PaymentService
	tenants        hotspot.TenantService
	account        hotspot.AccountService
	stats          hotspot.StatsService
}

func liveServices(b *live.Backend) serviceSet {
	return serviceSet{
		hotspots:       b.Hotspots,
		radiusUsers:    b.RadiusUsers,
		radiusGroups:   b.RadiusGroups,
		radiusSessions: b.RadiusSessions,
		plans:          b.Plans,
		subscriptions:  b.Subscriptions,
		payments:       b.Payments,
		tenants:        b.Tenants,
		account:        b.Account,
		stats:          b.Stats,
	}
}

func simServices(b *sim.Backend) serviceSet {
	return serviceSet{
		hotspots:       b.Hotspots,
		radiusUsers:    b.RadiusUsers,
		radiusGroups:   b.RadiusGroups,
		radiusSessions: b.RadiusSessions,
		plans:          b.Plans,
		subscriptions:  b.Subscriptions,
		payments:       b.Payments,
		tenants:        b.Tenants,
		account:        b.Account,
		stats:          b.Stats,
	}
}

func serviceOptions(s serviceSet) []hotspot.Option {
	return []hotspot.Option{
		hotspot.WithHotspotService(s.hotspots),
		hotspot.WithRadiusUserService(s.radiusUsers),
		hotspot.WithRadiusGroupService(s.radiusGroups),
		hotspot.WithRadiusSessionService(s.radiusSessions),
		hotspot.WithPlanService(s.plans),
		hotspot.WithSubscriptionService(s.subscriptions),
		hotspot.WithPaymentService(s.payments),
		hotspot.WithTenantService(s.tenants),
		hotspot.WithAccountService(s.account),
		hotspot.WithStatsService(s.stats),
	}
}
