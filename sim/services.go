package sim

import (
	"context"
	"strconv"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/apierror"
	"github.com/chimerakang/hotspot-go/validate"
)

// Interface conformance for every simulated service.
var (
	_ hotspot.HotspotService       = (*HotspotService)(nil)
	_ hotspot.RadiusUserService    = (*RadiusUserService)(nil)
	_ hotspot.RadiusGroupService   = (*RadiusGroupService)(nil)
	_ hotspot.RadiusSessionService = (*RadiusSessionService)(nil)
	_ hotspot.PlanService          = (*PlanService)(nil)
	_ hotspot.SubscriptionService  = (*SubscriptionService)(nil)
	_ hotspot.PaymentService       = (*PaymentService)(nil)
	_ hotspot.TenantService        = (*TenantService)(nil)
	_ hotspot.AccountService       = (*AccountService)(nil)
	_ hotspot.StatsService         = (*StatsService)(nil)
)

// HotspotService manages hotspots in memory.
type HotspotService struct {
	s    *store
	gate *validate.Gate
}

func (svc *HotspotService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.Hotspot, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	list := svc.s.hotspots.list(func(h *hotspot.Hotspot) bool {
		if status, ok := opts.Filters["status"]; ok && h.Status != status {
			return false
		}
		if tid, ok := opts.Filters["tenant_id"]; ok && strconv.FormatInt(h.TenantID, 10) != tid {
			return false
		}
		return true
	})
	return paginate(list, opts), nil
}

func (svc *HotspotService) Get(ctx context.Context, id int64) (*hotspot.Hotspot, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.hotspots.get(id)
}

func (svc *HotspotService) Create(ctx context.Context, in hotspot.HotspotInput) (*hotspot.Hotspot, error) {
	if err := svc.gate.Struct(in); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	h := hotspot.Hotspot{
		Name: in.Name, SSID: in.SSID, Address: in.Address,
		MACAddr: in.MACAddr, TenantID: in.TenantID, Status: "offline",
	}
	return svc.s.hotspots.insert(&h, svc.s.now()), nil
}

func (svc *HotspotService) Update(ctx context.Context, id int64, patch hotspot.HotspotPatch) (*hotspot.Hotspot, error) {
	if err := svc.gate.Partial(patch); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.hotspots.update(id, svc.s.now(), func(h *hotspot.Hotspot) {
		if patch.Name != nil {
			h.Name = *patch.Name
		}
		if patch.SSID != nil {
			h.SSID = *patch.SSID
		}
		if patch.Address != nil {
			h.Address = *patch.Address
		}
		if patch.Status != nil {
			h.Status = *patch.Status
		}
	})
}

func (svc *HotspotService) Delete(ctx context.Context, id int64) error {
	if err := svc.s.delay(ctx); err != nil {
		return apierror.FromNetwork(err)
	}
	// Sessions and users referencing the hotspot are left in place.
	return svc.s.hotspots.remove(id)
}

// RadiusUserService manages RADIUS users in memory.
type RadiusUserService struct {
	s    *store
	gate *validate.Gate
}

func (svc *RadiusUserService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.RadiusUser, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	list := svc.s.radiusUsers.list(func(u *hotspot.RadiusUser) bool {
		if enabled, ok := opts.Filters["enabled"]; ok && strconv.FormatBool(u.Enabled) != enabled {
			return false
		}
		if gid, ok := opts.Filters["group_id"]; ok && strconv.FormatInt(u.GroupID, 10) != gid {
			return false
		}
		if hid, ok := opts.Filters["hotspot_id"]; ok && strconv.FormatInt(u.HotspotID, 10) != hid {
			return false
		}
		return true
	})
	return paginate(list, opts), nil
}

func (svc *RadiusUserService) Get(ctx context.Context, id int64) (*hotspot.RadiusUser, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.radiusUsers.get(id)
}

func (svc *RadiusUserService) Create(ctx context.Context, in hotspot.RadiusUserInput) (*hotspot.RadiusUser, error) {
	if err := svc.gate.Struct(in); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	u := hotspot.RadiusUser{
		Username: in.Username, Password: in.Password,
		GroupID: in.GroupID, HotspotID: in.HotspotID, Enabled: true,
	}
	return svc.s.radiusUsers.insert(&u, svc.s.now()), nil
}

func (svc *RadiusUserService) Update(ctx context.Context, id int64, patch hotspot.RadiusUserPatch) (*hotspot.RadiusUser, error) {
	if err := svc.gate.Partial(patch); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.radiusUsers.update(id, svc.s.now(), func(u *hotspot.RadiusUser) {
		if patch.Password != nil {
			u.Password = *patch.Password
		}
		if patch.GroupID != nil {
			u.GroupID = *patch.GroupID
		}
		if patch.HotspotID != nil {
			u.HotspotID = *patch.HotspotID
		}
		if patch.Enabled != nil {
			u.Enabled = *patch.Enabled
		}
	})
}

func (svc *RadiusUserService) Delete(ctx context.Context, id int64) error {
	if err := svc.s.delay(ctx); err != nil {
		return apierror.FromNetwork(err)
	}
	// Subscriptions and payments keep their user_id; no cascade.
	return svc.s.radiusUsers.remove(id)
}

// RadiusGroupService manages RADIUS groups in memory.
type RadiusGroupService struct {
	s    *store
	gate *validate.Gate
}

func (svc *RadiusGroupService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.RadiusGroup, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return paginate(svc.s.radiusGroups.list(nil), opts), nil
}

func (svc *RadiusGroupService) Get(ctx context.Context, id int64) (*hotspot.RadiusGroup, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.radiusGroups.get(id)
}

func (svc *RadiusGroupService) Create(ctx context.Context, in hotspot.RadiusGroupInput) (*hotspot.RadiusGroup, error) {
	if err := svc.gate.Struct(in); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	g := hotspot.RadiusGroup{Name: in.Name, DownloadKbps: in.DownloadKbps, UploadKbps: in.UploadKbps}
	return svc.s.radiusGroups.insert(&g, svc.s.now()), nil
}

func (svc *RadiusGroupService) Update(ctx context.Context, id int64, patch hotspot.RadiusGroupPatch) (*hotspot.RadiusGroup, error) {
	if err := svc.gate.Partial(patch); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.radiusGroups.update(id, svc.s.now(), func(g *hotspot.RadiusGroup) {
		if patch.Name != nil {
			g.Name = *patch.Name
		}
		if patch.DownloadKbps != nil {
			g.DownloadKbps = *patch.DownloadKbps
		}
		if patch.UploadKbps != nil {
			g.UploadKbps = *patch.UploadKbps
		}
	})
}

func (svc *RadiusGroupService) Delete(ctx context.Context, id int64) error {
	if err := svc.s.delay(ctx); err != nil {
		return apierror.FromNetwork(err)
	}
	// Users keep their group_id pointing at the gone group; no cascade.
	return svc.s.radiusGroups.remove(id)
}

// RadiusSessionService reads and terminates simulated accounting sessions.
type RadiusSessionService struct {
	s *store
}

func (svc *RadiusSessionService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.RadiusSession, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	list := svc.s.sessions.list(func(s *hotspot.RadiusSession) bool {
		if active, ok := opts.Filters["active"]; ok && strconv.FormatBool(s.Active) != active {
			return false
		}
		if hid, ok := opts.Filters["hotspot_id"]; ok && strconv.FormatInt(s.HotspotID, 10) != hid {
			return false
		}
		return true
	})
	return paginate(list, opts), nil
}

func (svc *RadiusSessionService) Get(ctx context.Context, id int64) (*hotspot.RadiusSession, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.sessions.get(id)
}

// Disconnect stops an active session. The record survives as a stopped
// accounting entry, mirroring what a RADIUS backend does.
func (svc *RadiusSessionService) Disconnect(ctx context.Context, id int64) error {
	if err := svc.s.delay(ctx); err != nil {
		return apierror.FromNetwork(err)
	}
	now := svc.s.now()
	_, err := svc.s.sessions.update(id, now, func(s *hotspot.RadiusSession) {
		if s.Active {
			s.Active = false
			s.StoppedAt = &now
		}
	})
	return err
}

// PlanService manages access plans in memory.
type PlanService struct {
	s    *store
	gate *validate.Gate
}

func (svc *PlanService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.Plan, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return paginate(svc.s.plans.list(nil), opts), nil
}

func (svc *PlanService) Get(ctx context.Context, id int64) (*hotspot.Plan, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.plans.get(id)
}

func (svc *PlanService) Create(ctx context.Context, in hotspot.PlanInput) (*hotspot.Plan, error) {
	if err := svc.gate.Struct(in); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	p := hotspot.Plan{
		Name: in.Name, PriceCents: in.PriceCents, Currency: in.Currency,
		DurationDays: in.DurationDays, DataCapMB: in.DataCapMB,
	}
	return svc.s.plans.insert(&p, svc.s.now()), nil
}

func (svc *PlanService) Update(ctx context.Context, id int64, patch hotspot.PlanPatch) (*hotspot.Plan, error) {
	if err := svc.gate.Partial(patch); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.plans.update(id, svc.s.now(), func(p *hotspot.Plan) {
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.PriceCents != nil {
			p.PriceCents = *patch.PriceCents
		}
		if patch.DurationDays != nil {
			p.DurationDays = *patch.DurationDays
		}
		if patch.DataCapMB != nil {
			p.DataCapMB = *patch.DataCapMB
		}
	})
}

func (svc *PlanService) Delete(ctx context.Context, id int64) error {
	if err := svc.s.delay(ctx); err != nil {
		return apierror.FromNetwork(err)
	}
	// Subscriptions keep their plan_id; readers of a subscription whose plan
	// is gone get not-found on the plan lookup. Known data gap, kept for
	// parity with the live backend.
	return svc.s.plans.remove(id)
}

// SubscriptionService manages subscriptions in memory.
type SubscriptionService struct {
	s    *store
	gate *validate.Gate
}

func (svc *SubscriptionService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.Subscription, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	list := svc.s.subscriptions.list(func(s *hotspot.Subscription) bool {
		if active, ok := opts.Filters["active"]; ok && strconv.FormatBool(s.Active) != active {
			return false
		}
		if uid, ok := opts.Filters["user_id"]; ok && strconv.FormatInt(s.UserID, 10) != uid {
			return false
		}
		return true
	})
	return paginate(list, opts), nil
}

func (svc *SubscriptionService) Get(ctx context.Context, id int64) (*hotspot.Subscription, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.subscriptions.get(id)
}

func (svc *SubscriptionService) Create(ctx context.Context, in hotspot.SubscriptionInput) (*hotspot.Subscription, error) {
	if err := svc.gate.Struct(in); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	plan, err := svc.s.plans.get(in.PlanID)
	if err != nil {
		return nil, err
	}
	now := svc.s.now()
	starts := now
	if in.StartsAt != nil {
		starts = *in.StartsAt
	}
	sub := hotspot.Subscription{
		UserID: in.UserID, PlanID: in.PlanID,
		StartsAt:  starts,
		ExpiresAt: starts.AddDate(0, 0, plan.DurationDays),
		Active:    true,
	}
	return svc.s.subscriptions.insert(&sub, now), nil
}

func (svc *SubscriptionService) Update(ctx context.Context, id int64, patch hotspot.SubscriptionPatch) (*hotspot.Subscription, error) {
	if err := svc.gate.Partial(patch); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.subscriptions.update(id, svc.s.now(), func(s *hotspot.Subscription) {
		if patch.ExpiresAt != nil {
			s.ExpiresAt = *patch.ExpiresAt
		}
		if patch.Active != nil {
			s.Active = *patch.Active
		}
	})
}

func (svc *SubscriptionService) Delete(ctx context.Context, id int64) error {
	if err := svc.s.delay(ctx); err != nil {
		return apierror.FromNetwork(err)
	}
	return svc.s.subscriptions.remove(id)
}

// PaymentService records payments in memory. No update or delete surface:
// payments are immutable.
type PaymentService struct {
	s    *store
	gate *validate.Gate
}

func (svc *PaymentService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.Payment, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	list := svc.s.payments.list(func(p *hotspot.Payment) bool {
		if uid, ok := opts.Filters["user_id"]; ok && strconv.FormatInt(p.UserID, 10) != uid {
			return false
		}
		if method, ok := opts.Filters["method"]; ok && p.Method != method {
			return false
		}
		return true
	})
	return paginate(list, opts), nil
}

func (svc *PaymentService) Get(ctx context.Context, id int64) (*hotspot.Payment, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.payments.get(id)
}

func (svc *PaymentService) Create(ctx context.Context, in hotspot.PaymentInput) (*hotspot.Payment, error) {
	if err := svc.gate.Struct(in); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	now := svc.s.now()
	p := hotspot.Payment{
		UserID: in.UserID, SubscriptionID: in.SubscriptionID,
		AmountCents: in.AmountCents, Currency: in.Currency,
		Method: in.Method, PaidAt: now,
	}
	return svc.s.payments.insert(&p, now), nil
}

// TenantService manages tenants in memory.
type TenantService struct {
	s    *store
	gate *validate.Gate
}

func (svc *TenantService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.Tenant, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	list := svc.s.tenants.list(func(t *hotspot.Tenant) bool {
		if status, ok := opts.Filters["status"]; ok && t.Status != status {
			return false
		}
		return true
	})
	return paginate(list, opts), nil
}

func (svc *TenantService) Get(ctx context.Context, id int64) (*hotspot.Tenant, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.tenants.get(id)
}

func (svc *TenantService) Create(ctx context.Context, in hotspot.TenantInput) (*hotspot.Tenant, error) {
	if err := svc.gate.Struct(in); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	t := hotspot.Tenant{Name: in.Name, Domain: in.Domain, ContactEmail: in.ContactEmail, Status: "active"}
	return svc.s.tenants.insert(&t, svc.s.now()), nil
}

func (svc *TenantService) Update(ctx context.Context, id int64, patch hotspot.TenantPatch) (*hotspot.Tenant, error) {
	if err := svc.gate.Partial(patch); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	return svc.s.tenants.update(id, svc.s.now(), func(t *hotspot.Tenant) {
		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Domain != nil {
			t.Domain = *patch.Domain
		}
		if patch.ContactEmail != nil {
			t.ContactEmail = *patch.ContactEmail
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
	})
}

func (svc *TenantService) Delete(ctx context.Context, id int64) error {
	if err := svc.s.delay(ctx); err != nil {
		return apierror.FromNetwork(err)
	}
	// Hotspots keep their tenant_id; no cascade.
	return svc.s.tenants.remove(id)
}

// AccountService reads and updates the simulated operator profile.
type AccountService struct {
	s    *store
	gate *validate.Gate
}

func (svc *AccountService) Current(ctx context.Context) (*hotspot.Account, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	svc.s.mu.Lock()
	acct := svc.s.account
	svc.s.mu.Unlock()
	return &acct, nil
}

func (svc *AccountService) Update(ctx context.Context, patch hotspot.AccountPatch) (*hotspot.Account, error) {
	if err := svc.gate.Partial(patch); err != nil {
		return nil, err
	}
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	svc.s.mu.Lock()
	if patch.Name != nil {
		svc.s.account.Name = *patch.Name
	}
	if patch.Phone != nil {
		svc.s.account.Phone = *patch.Phone
	}
	svc.s.account.UpdatedAt = svc.s.now()
	acct := svc.s.account
	svc.s.mu.Unlock()
	return &acct, nil
}

// StatsService aggregates the store into the dashboard view.
type StatsService struct {
	s *store
}

func (svc *StatsService) Dashboard(ctx context.Context) (*hotspot.DashboardStats, error) {
	if err := svc.s.delay(ctx); err != nil {
		return nil, apierror.FromNetwork(err)
	}
	active := svc.s.sessions.list(func(s *hotspot.RadiusSession) bool { return s.Active })
	var revenue int64
	for _, p := range svc.s.payments.list(nil) {
		revenue += p.AmountCents
	}
	return &hotspot.DashboardStats{
		Hotspots:       svc.s.hotspots.len(),
		RadiusUsers:    svc.s.radiusUsers.len(),
		ActiveSessions: len(active),
		RevenueCents:   revenue,
	}, nil
}
