package live

import (
	"context"

	hotspot "github.com/chimerakang/hotspot-go"
)

// Interface conformance for every live service.
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

// HotspotService manages hotspots over REST.
type HotspotService struct {
	crud crud[hotspot.Hotspot, hotspot.HotspotInput, hotspot.HotspotPatch]
}

func (s *HotspotService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.Hotspot, error) {
	return s.crud.list(ctx, opts)
}

func (s *HotspotService) Get(ctx context.Context, id int64) (*hotspot.Hotspot, error) {
	return s.crud.get(ctx, id)
}

func (s *HotspotService) Create(ctx context.Context, in hotspot.HotspotInput) (*hotspot.Hotspot, error) {
	return s.crud.create(ctx, in)
}

func (s *HotspotService) Update(ctx context.Context, id int64, patch hotspot.HotspotPatch) (*hotspot.Hotspot, error) {
	return s.crud.update(ctx, id, patch)
}

func (s *HotspotService) Delete(ctx context.Context, id int64) error {
	return s.crud.delete(ctx, id)
}

// RadiusUserService manages RADIUS users over REST.
type RadiusUserService struct {
	crud crud[hotspot.RadiusUser, hotspot.RadiusUserInput, hotspot.RadiusUserPatch]
}

func (s *RadiusUserService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.RadiusUser, error) {
	return s.crud.list(ctx, opts)
}

func (s *RadiusUserService) Get(ctx context.Context, id int64) (*hotspot.RadiusUser, error) {
	return s.crud.get(ctx, id)
}

func (s *RadiusUserService) Create(ctx context.Context, in hotspot.RadiusUserInput) (*hotspot.RadiusUser, error) {
	return s.crud.create(ctx, in)
}

func (s *RadiusUserService) Update(ctx context.Context, id int64, patch hotspot.RadiusUserPatch) (*hotspot.RadiusUser, error) {
	return s.crud.update(ctx, id, patch)
}

func (s *RadiusUserService) Delete(ctx context.Context, id int64) error {
	return s.crud.delete(ctx, id)
}

// RadiusGroupService manages RADIUS groups over REST.
type RadiusGroupService struct {
	crud crud[hotspot.RadiusGroup, hotspot.RadiusGroupInput, hotspot.RadiusGroupPatch]
}

func (s *RadiusGroupService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.RadiusGroup, error) {
	return s.crud.list(ctx, opts)
}

func (s *RadiusGroupService) Get(ctx context.Context, id int64) (*hotspot.RadiusGroup, error) {
	return s.crud.get(ctx, id)
}

func (s *RadiusGroupService) Create(ctx context.Context, in hotspot.RadiusGroupInput) (*hotspot.RadiusGroup, error) {
	return s.crud.create(ctx, in)
}

func (s *RadiusGroupService) Update(ctx context.Context, id int64, patch hotspot.RadiusGroupPatch) (*hotspot.RadiusGroup, error) {
	return s.crud.update(ctx, id, patch)
}

func (s *RadiusGroupService) Delete(ctx context.Context, id int64) error {
	return s.crud.delete(ctx, id)
}

// PlanService manages access plans over REST.
type PlanService struct {
	crud crud[hotspot.Plan, hotspot.PlanInput, hotspot.PlanPatch]
}

func (s *PlanService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.Plan, error) {
	return s.crud.list(ctx, opts)
}

func (s *PlanService) Get(ctx context.Context, id int64) (*hotspot.Plan, error) {
	return s.crud.get(ctx, id)
}

func (s *PlanService) Create(ctx context.Context, in hotspot.PlanInput) (*hotspot.Plan, error) {
	return s.crud.create(ctx, in)
}

func (s *PlanService) Update(ctx context.Context, id int64, patch hotspot.PlanPatch) (*hotspot.Plan, error) {
	return s.crud.update(ctx, id, patch)
}

func (s *PlanService) Delete(ctx context.Context, id int64) error {
	return s.crud.delete(ctx, id)
}

// SubscriptionService manages subscriptions over REST.
type SubscriptionService struct {
	crud crud[hotspot.Subscription, hotspot.SubscriptionInput, hotspot.SubscriptionPatch]
}

func (s *SubscriptionService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.Subscription, error) {
	return s.crud.list(ctx, opts)
}

func (s *SubscriptionService) Get(ctx context.Context, id int64) (*hotspot.Subscription, error) {
	return s.crud.get(ctx, id)
}

func (s *SubscriptionService) Create(ctx context.Context, in hotspot.SubscriptionInput) (*hotspot.Subscription, error) {
	return s.crud.create(ctx, in)
}

func (s *SubscriptionService) Update(ctx context.Context, id int64, patch hotspot.SubscriptionPatch) (*hotspot.Subscription, error) {
	return s.crud.update(ctx, id, patch)
}

func (s *SubscriptionService) Delete(ctx context.Context, id int64) error {
	return s.crud.delete(ctx, id)
}

// PaymentService records payments over REST. No update or delete: payments
// are immutable once recorded.
type PaymentService struct {
	crud crud[hotspot.Payment, hotspot.PaymentInput, struct{}]
}

func (s *PaymentService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.Payment, error) {
	return s.crud.list(ctx, opts)
}

func (s *PaymentService) Get(ctx context.Context, id int64) (*hotspot.Payment, error) {
	return s.crud.get(ctx, id)
}

func (s *PaymentService) Create(ctx context.Context, in hotspot.PaymentInput) (*hotspot.Payment, error) {
	return s.crud.create(ctx, in)
}

// TenantService manages tenants over REST.
type TenantService struct {
	crud crud[hotspot.Tenant, hotspot.TenantInput, hotspot.TenantPatch]
}

func (s *TenantService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.Tenant, error) {
	return s.crud.list(ctx, opts)
}

func (s *TenantService) Get(ctx context.Context, id int64) (*hotspot.Tenant, error) {
	return s.crud.get(ctx, id)
}

func (s *TenantService) Create(ctx context.Context, in hotspot.TenantInput) (*hotspot.Tenant, error) {
	return s.crud.create(ctx, in)
}

func (s *TenantService) Update(ctx context.Context, id int64, patch hotspot.TenantPatch) (*hotspot.Tenant, error) {
	return s.crud.update(ctx, id, patch)
}

func (s *TenantService) Delete(ctx context.Context, id int64) error {
	return s.crud.delete(ctx, id)
}
