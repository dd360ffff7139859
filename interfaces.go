package hotspot

import "context"

// Every service method returns errors exclusively as *apierror.Error, and
// every method has identical semantics on the live and simulated backends:
// swapping the backend never requires callers to change call sites or handle
// a different shape of success or failure.

// HotspotService manages hotspots.
// Implementations: live/ (REST), sim/ (in-memory).
type HotspotService interface {
	List(ctx context.Context, opts ListOptions) ([]Hotspot, error)
	Get(ctx context.Context, id int64) (*Hotspot, error)
	Create(ctx context.Context, in HotspotInput) (*Hotspot, error)
	Update(ctx context.Context, id int64, patch HotspotPatch) (*Hotspot, error)
	Delete(ctx context.Context, id int64) error
}

// RadiusUserService manages RADIUS user accounts.
type RadiusUserService interface {
	List(ctx context.Context, opts ListOptions) ([]RadiusUser, error)
	Get(ctx context.Context, id int64) (*RadiusUser, error)
	Create(ctx context.Context, in RadiusUserInput) (*RadiusUser, error)
	Update(ctx context.Context, id int64, patch RadiusUserPatch) (*RadiusUser, error)
	Delete(ctx context.Context, id int64) error
}

// RadiusGroupService manages RADIUS bandwidth groups.
type RadiusGroupService interface {
	List(ctx context.Context, opts ListOptions) ([]RadiusGroup, error)
	Get(ctx context.Context, id int64) (*RadiusGroup, error)
	Create(ctx context.Context, in RadiusGroupInput) (*RadiusGroup, error)
	Update(ctx context.Context, id int64, patch RadiusGroupPatch) (*RadiusGroup, error)
	Delete(ctx context.Context, id int64) error
}

// RadiusSessionService reads and terminates RADIUS accounting sessions.
// Sessions are created by the RADIUS backend, not by this SDK, so there is no
// Create or Update surface.
type RadiusSessionService interface {
	List(ctx context.Context, opts ListOptions) ([]RadiusSession, error)
	Get(ctx context.Context, id int64) (*RadiusSession, error)
	Disconnect(ctx context.Context, id int64) error
}

// PlanService manages purchasable access plans.
type PlanService interface {
	List(ctx context.Context, opts ListOptions) ([]Plan, error)
	Get(ctx context.Context, id int64) (*Plan, error)
	Create(ctx context.Context, in PlanInput) (*Plan, error)
	Update(ctx context.Context, id int64, patch PlanPatch) (*Plan, error)
	Delete(ctx context.Context, id int64) error
}

// SubscriptionService manages plan subscriptions.
type SubscriptionService interface {
	List(ctx context.Context, opts ListOptions) ([]Subscription, error)
	Get(ctx context.Context, id int64) (*Subscription, error)
	Create(ctx context.Context, in SubscriptionInput) (*Subscription, error)
	Update(ctx context.Context, id int64, patch SubscriptionPatch) (*Subscription, error)
	Delete(ctx context.Context, id int64) error
}

// PaymentService records and reads payments. Payments are immutable once
// recorded; there is no Update or Delete surface.
type PaymentService interface {
	List(ctx context.Context, opts ListOptions) ([]Payment, error)
	Get(ctx context.Context, id int64) (*Payment, error)
	Create(ctx context.Context, in PaymentInput) (*Payment, error)
}

// TenantService manages operator organizations.
type TenantService interface {
	List(ctx context.Context, opts ListOptions) ([]Tenant, error)
	Get(ctx context.Context, id int64) (*Tenant, error)
	Create(ctx context.Context, in TenantInput) (*Tenant, error)
	Update(ctx context.Context, id int64, patch TenantPatch) (*Tenant, error)
	Delete(ctx context.Context, id int64) error
}

// AccountService reads and updates the signed-in operator's profile.
type AccountService interface {
	Current(ctx context.Context) (*Account, error)
	Update(ctx context.Context, patch AccountPatch) (*Account, error)
}

// StatsService serves aggregate dashboard figures.
type StatsService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}
