// Package live implements the data services against the REST backend.
//
// Every service follows the same request path: validate the outbound payload,
// send it through the retrying transport, validate the inbound payload, and
// route reads through the request cache. A response that fails its shape
// check surfaces as a validation error and never enters the cache. Mutations
// invalidate their declared cache families after the backend confirms success
// and before the call returns.
package live

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/querycache"
	"github.com/chimerakang/hotspot-go/transport"
	"github.com/chimerakang/hotspot-go/validate"
)

// Cache family names. Mutation invalidation and sign-out purging are keyed on
// these.
const (
	FamilyHotspots       = "hotspots"
	FamilyRadiusUsers    = "radius_users"
	FamilyRadiusGroups   = "radius_groups"
	FamilyRadiusSessions = "radius_sessions"
	FamilyPlans          = "plans"
	FamilySubscriptions  = "subscriptions"
	FamilyPayments       = "payments"
	FamilyTenants        = "tenants"
	FamilyAccount        = "account"
	FamilyStats          = "stats"
)

// Backend bundles all live service implementations over one transport and
// one cache.
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
}

// New wires every service against tr and cache.
func New(tr *transport.Transport, cache *querycache.Cache) *Backend {
	gate := validate.New()
	return &Backend{
		Hotspots: &HotspotService{crud: crud[hotspot.Hotspot, hotspot.HotspotInput, hotspot.HotspotPatch]{
			tr: tr, gate: gate, cache: cache,
			path: "/hotspots", family: FamilyHotspots,
			ttl: querycache.TTLReference, invalidates: []string{FamilyHotspots, FamilyStats},
		}},
		RadiusUsers: &RadiusUserService{crud: crud[hotspot.RadiusUser, hotspot.RadiusUserInput, hotspot.RadiusUserPatch]{
			tr: tr, gate: gate, cache: cache,
			path: "/radius/users", family: FamilyRadiusUsers,
			ttl: querycache.TTLReference, invalidates: []string{FamilyRadiusUsers, FamilyStats},
		}},
		RadiusGroups: &RadiusGroupService{crud: crud[hotspot.RadiusGroup, hotspot.RadiusGroupInput, hotspot.RadiusGroupPatch]{
			tr: tr, gate: gate, cache: cache,
			path: "/radius/groups", family: FamilyRadiusGroups,
			ttl: querycache.TTLReference, invalidates: []string{FamilyRadiusGroups},
		}},
		RadiusSessions: &RadiusSessionService{
			tr: tr, gate: gate, cache: cache,
		},
		Plans: &PlanService{crud: crud[hotspot.Plan, hotspot.PlanInput, hotspot.PlanPatch]{
			tr: tr, gate: gate, cache: cache,
			path: "/plans", family: FamilyPlans,
			ttl: querycache.TTLReference, invalidates: []string{FamilyPlans},
		}},
		Subscriptions: &SubscriptionService{crud: crud[hotspot.Subscription, hotspot.SubscriptionInput, hotspot.SubscriptionPatch]{
			tr: tr, gate: gate, cache: cache,
			path: "/subscriptions", family: FamilySubscriptions,
			ttl: querycache.TTLReference, invalidates: []string{FamilySubscriptions, FamilyStats},
		}},
		Payments: &PaymentService{crud: crud[hotspot.Payment, hotspot.PaymentInput, struct{}]{
			tr: tr, gate: gate, cache: cache,
			path: "/payments", family: FamilyPayments,
			ttl: querycache.TTLReference, invalidates: []string{FamilyPayments, FamilyStats},
		}},
		Tenants: &TenantService{crud: crud[hotspot.Tenant, hotspot.TenantInput, hotspot.TenantPatch]{
			tr: tr, gate: gate, cache: cache,
			path: "/tenants", family: FamilyTenants,
			ttl: querycache.TTLReference, invalidates: []string{FamilyTenants},
		}},
		Account: &AccountService{tr: tr, gate: gate, cache: cache},
		Stats:   &StatsService{tr: tr, gate: gate, cache: cache},
	}
}

// listQuery renders pagination and filters as a query string, and as the
// filter map for the cache key. Keys are emitted sorted so equal parameter
// sets hit the same cache entry.
func listQuery(opts hotspot.ListOptions) (string, map[string]string) {
	params := make(map[string]string, len(opts.Filters)+2)
	for k, v := range opts.Filters {
		params[k] = v
	}
	if opts.Page > 0 {
		params["page"] = strconv.Itoa(opts.Page)
	}
	if opts.PageSize > 0 {
		params["page_size"] = strconv.Itoa(opts.PageSize)
	}
	if len(params) == 0 {
		return "", nil
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteByte('?')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[name]))
	}
	return b.String(), params
}
