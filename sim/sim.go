// Package sim is the simulated backend: a complete in-memory implementation
// of every data service and of the identity provider.
//
// It exists for demos and offline development, so it deliberately behaves
// like the live backend: the same validation runs before any write, missing
// records produce the same normalized not-found error, and every call sleeps
// a small random latency so consumers exercise their loading states.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/validate"
)

// DefaultLatencyMax bounds the artificial per-call latency.
const DefaultLatencyMax = 120 * time.Millisecond

// Backend bundles the simulated services over one shared store.
type Backend struct {
	Hotspots       *HotspotService
	RadiusUsers    *RadiusUserService
	RadiusGroups   *RadiusGroupService
	RadiusSessions *RadiusSessionService
	Plans          *PlanService
	Subscriptions  *SubscriptionService
	Payments       *PaymentService
	Tenants        *TenantService
	Account        *AccountService
	Stats          *StatsService
	Identity       *IdentityProvider

	store *store
}

// store is the shared in-memory state.
type store struct {
	hotspots      *collection[hotspot.Hotspot]
	radiusUsers   *collection[hotspot.RadiusUser]
	radiusGroups  *collection[hotspot.RadiusGroup]
	sessions      *collection[hotspot.RadiusSession]
	plans         *collection[hotspot.Plan]
	subscriptions *collection[hotspot.Subscription]
	payments      *collection[hotspot.Payment]
	tenants       *collection[hotspot.Tenant]

	mu      sync.Mutex
	account hotspot.Account
	rng     *rand.Rand

	latencyMax time.Duration
	now        func() time.Time
}

// Option configures the simulated backend.
type Option func(*store)

// WithLatencyMax bounds the artificial latency. Zero disables it; tests use
// that to stay fast.
func WithLatencyMax(d time.Duration) Option {
	return func(s *store) { s.latencyMax = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *store) { s.now = now }
}

// WithSeed populates the store with a realistic demo dataset.
func WithSeed() Option {
	return func(s *store) { seed(s) }
}

// New creates a simulated backend. Without WithSeed the store starts empty
// except for the operator account.
func New(opts ...Option) *Backend {
	s := &store{
		hotspots: newCollection("hotspot", func(h *hotspot.Hotspot) int64 { return h.ID },
			func(h *hotspot.Hotspot, id int64, now time.Time, create bool) {
				if create {
					h.ID = id
					h.CreatedAt = now
				}
				h.UpdatedAt = now
			}),
		radiusUsers: newCollection("radius user", func(u *hotspot.RadiusUser) int64 { return u.ID },
			func(u *hotspot.RadiusUser, id int64, now time.Time, create bool) {
				if create {
					u.ID = id
					u.CreatedAt = now
				}
				u.UpdatedAt = now
			}),
		radiusGroups: newCollection("radius group", func(g *hotspot.RadiusGroup) int64 { return g.ID },
			func(g *hotspot.RadiusGroup, id int64, now time.Time, create bool) {
				if create {
					g.ID = id
					g.CreatedAt = now
				}
				g.UpdatedAt = now
			}),
		sessions: newCollection("radius session", func(s *hotspot.RadiusSession) int64 { return s.ID },
			func(s *hotspot.RadiusSession, id int64, now time.Time, create bool) {
				if create {
					s.ID = id
					s.StartedAt = now
				}
			}),
		plans: newCollection("plan", func(p *hotspot.Plan) int64 { return p.ID },
			func(p *hotspot.Plan, id int64, now time.Time, create bool) {
				if create {
					p.ID = id
					p.CreatedAt = now
				}
				p.UpdatedAt = now
			}),
		subscriptions: newCollection("subscription", func(s *hotspot.Subscription) int64 { return s.ID },
			func(s *hotspot.Subscription, id int64, now time.Time, create bool) {
				if create {
					s.ID = id
					s.CreatedAt = now
				}
				s.UpdatedAt = now
			}),
		payments: newCollection("payment", func(p *hotspot.Payment) int64 { return p.ID },
			func(p *hotspot.Payment, id int64, now time.Time, create bool) {
				if create {
					p.ID = id
					p.CreatedAt = now
				}
			}),
		tenants: newCollection("tenant", func(t *hotspot.Tenant) int64 { return t.ID },
			func(t *hotspot.Tenant, id int64, now time.Time, create bool) {
				if create {
					t.ID = id
					t.CreatedAt = now
				}
				t.UpdatedAt = now
			}),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		latencyMax: DefaultLatencyMax,
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
	s.account = hotspot.Account{
		ID: 1, Email: "operator@hotspot.local", Name: "Demo Operator", CreatedAt: s.now(),
	}
	for _, o := range opts {
		o(s)
	}

	gate := validate.New()
	return &Backend{
		Hotspots:       &HotspotService{s: s, gate: gate},
		RadiusUsers:    &RadiusUserService{s: s, gate: gate},
		RadiusGroups:   &RadiusGroupService{s: s, gate: gate},
		RadiusSessions: &RadiusSessionService{s: s},
		Plans:          &PlanService{s: s, gate: gate},
		Subscriptions:  &SubscriptionService{s: s, gate: gate},
		Payments:       &PaymentService{s: s, gate: gate},
		Tenants:        &TenantService{s: s, gate: gate},
		Account:        &AccountService{s: s, gate: gate},
		Stats:          &StatsService{s: s},
		Identity:       newIdentityProvider(s),
		store:          s,
	}
}

// delay sleeps a random duration up to latencyMax, honoring cancellation.
func (s *store) delay(ctx context.Context) error {
	if s.latencyMax <= 0 {
		return nil
	}
	s.mu.Lock()
	d := time.Duration(s.rng.Int63n(int64(s.latencyMax)))
	s.mu.Unlock()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// paginate slices list per opts. Page is 1-based; zero values disable paging.
func paginate[T any](list []T, opts hotspot.ListOptions) []T {
	if opts.PageSize <= 0 {
		return list
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * opts.PageSize
	if start >= len(list) {
		return []T{}
	}
	end := start + opts.PageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}
