package hotspot

import "time"

// Credential is the opaque bearer token minted by the identity provider,
// plus its expiry metadata. It is owned exclusively by the auth coordinator.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Valid reports whether the credential is present and not known to be expired.
// A zero ExpiresAt means the provider supplied no expiry metadata; such a
// credential is treated as valid until the provider says otherwise.
func (c Credential) Valid() bool {
	if c.Token == "" {
		return false
	}
	return c.ExpiresAt.IsZero() || time.Now().Before(c.ExpiresAt)
}

// Session is the current authenticated identity plus its credential.
// At most one valid Session exists process-wide at a time; it is mutated only
// by the auth coordinator.
type Session struct {
	Subject    string     `json:"subject"`
	Credential Credential `json:"credential"`
	IssuedAt   time.Time  `json:"issued_at"`
}

// Record types double as response shapes: their validate tags are the
// inbound contract the live backend's responses are checked against before
// a payload is cached or returned.

// Account is the profile of the signed-in operator.
type Account struct {
	ID        int64     `json:"id" validate:"gt=0"`
	Email     string    `json:"email" validate:"required,email"`
	Name      string    `json:"name" validate:"required"`
	Phone     string    `json:"phone,omitempty"`
	TenantID  int64     `json:"tenant_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Hotspot is a managed WiFi access point.
type Hotspot struct {
	ID        int64     `json:"id" validate:"gt=0"`
	Name      string    `json:"name" validate:"required"`
	SSID      string    `json:"ssid" validate:"required"`
	Address   string    `json:"address,omitempty"`
	MACAddr   string    `json:"mac_addr,omitempty"`
	TenantID  int64     `json:"tenant_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// RadiusUser is a RADIUS account that can authenticate at a hotspot.
type RadiusUser struct {
	ID        int64     `json:"id" validate:"gt=0"`
	Username  string    `json:"username" validate:"required"`
	Password  string    `json:"password,omitempty"`
	GroupID   int64     `json:"group_id,omitempty"`
	HotspotID int64     `json:"hotspot_id,omitempty"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// RadiusGroup bundles bandwidth policy applied to its member users.
type RadiusGroup struct {
	ID           int64     `json:"id" validate:"gt=0"`
	Name         string    `json:"name" validate:"required"`
	DownloadKbps int64     `json:"download_kbps,omitempty"`
	UploadKbps   int64     `json:"upload_kbps,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// RadiusSession is one accounting record of a user attached to a hotspot.
type RadiusSession struct {
	ID         int64      `json:"id" validate:"gt=0"`
	UserID     int64      `json:"user_id" validate:"gt=0"`
	HotspotID  int64      `json:"hotspot_id" validate:"gt=0"`
	StartedAt  time.Time  `json:"started_at"`
	StoppedAt  *time.Time `json:"stopped_at,omitempty"`
	BytesIn    int64      `json:"bytes_in"`
	BytesOut   int64      `json:"bytes_out"`
	Active     bool       `json:"active"`
	FramedIP   string     `json:"framed_ip,omitempty"`
	CallingMAC string     `json:"calling_mac,omitempty"`
}

// Plan is a purchasable access plan.
type Plan struct {
	ID           int64     `json:"id" validate:"gt=0"`
	Name         string    `json:"name" validate:"required"`
	PriceCents   int64     `json:"price_cents" validate:"gte=0"`
	Currency     string    `json:"currency" validate:"omitempty,iso4217"`
	DurationDays int       `json:"duration_days"`
	DataCapMB    int64     `json:"data_cap_mb,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Subscription ties a RADIUS user to a plan for a period.
// PlanID is a plain foreign key: deleting a plan does not touch
// subscriptions referencing it.
type Subscription struct {
	ID        int64     `json:"id" validate:"gt=0"`
	UserID    int64     `json:"user_id" validate:"gt=0"`
	PlanID    int64     `json:"plan_id" validate:"gt=0"`
	StartsAt  time.Time `json:"starts_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Payment records money received for a subscription. UserID is a plain
// foreign key with no enforced cascade.
type Payment struct {
	ID             int64     `json:"id" validate:"gt=0"`
	UserID         int64     `json:"user_id" validate:"gt=0"`
	SubscriptionID int64     `json:"subscription_id,omitempty"`
	AmountCents    int64     `json:"amount_cents" validate:"gt=0"`
	Currency       string    `json:"currency" validate:"omitempty,iso4217"`
	Method         string    `json:"method"`
	PaidAt         time.Time `json:"paid_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// Tenant is an operator organization.
type Tenant struct {
	ID           int64     `json:"id" validate:"gt=0"`
	Name         string    `json:"name" validate:"required"`
	Domain       string    `json:"domain,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// DashboardStats is the aggregate view shown on the home screen.
type DashboardStats struct {
	Hotspots       int   `json:"hotspots" validate:"gte=0"`
	RadiusUsers    int   `json:"radius_users" validate:"gte=0"`
	ActiveSessions int   `json:"active_sessions" validate:"gte=0"`
	RevenueCents   int64 `json:"revenue_cents" validate:"gte=0"`
}

// ListOptions holds pagination and filter parameters. Filters participate in
// cache key derivation, so two calls with identical filters share an entry.
type ListOptions struct {
	Page     int
	PageSize int
	Filters  map[string]string
}

// --- create inputs ---

// HotspotInput is the payload for creating a hotspot.
type HotspotInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	SSID     string `json:"ssid" validate:"required,min=1,max=32"`
	Address  string `json:"address,omitempty" validate:"omitempty,max=200"`
	MACAddr  string `json:"mac_addr,omitempty" validate:"omitempty,mac"`
	TenantID int64  `json:"tenant_id,omitempty" validate:"omitempty,gt=0"`
}

// RadiusUserInput is the payload for creating a RADIUS user.
type RadiusUserInput struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
	GroupID   int64  `json:"group_id,omitempty" validate:"omitempty,gt=0"`
	HotspotID int64  `json:"hotspot_id,omitempty" validate:"omitempty,gt=0"`
}

// RadiusGroupInput is the payload for creating a RADIUS group.
type RadiusGroupInput struct {
	Name         string `json:"name" validate:"required,min=2,max=64"`
	DownloadKbps int64  `json:"download_kbps,omitempty" validate:"omitempty,gt=0"`
	UploadKbps   int64  `json:"upload_kbps,omitempty" validate:"omitempty,gt=0"`
}

// PlanInput is the payload for creating a plan.
type PlanInput struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	PriceCents   int64  `json:"price_cents" validate:"gte=0"`
	Currency     string `json:"currency" validate:"required,iso4217"`
	DurationDays int    `json:"duration_days" validate:"required,gt=0"`
	DataCapMB    int64  `json:"data_cap_mb,omitempty" validate:"omitempty,gt=0"`
}

// SubscriptionInput is the payload for creating a subscription.
type SubscriptionInput struct {
	UserID   int64      `json:"user_id" validate:"required,gt=0"`
	PlanID   int64      `json:"plan_id" validate:"required,gt=0"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
}

// PaymentInput is the payload for recording a payment.
type PaymentInput struct {
	UserID         int64  `json:"user_id" validate:"required,gt=0"`
	SubscriptionID int64  `json:"subscription_id,omitempty" validate:"omitempty,gt=0"`
	AmountCents    int64  `json:"amount_cents" validate:"required,gt=0"`
	Currency       string `json:"currency" validate:"required,iso4217"`
	Method         string `json:"method" validate:"required,oneof=cash card voucher mobile_money"`
}

// TenantInput is the payload for creating a tenant.
type TenantInput struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Domain       string `json:"domain,omitempty" validate:"omitempty,fqdn"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

// --- partial-update inputs ---
//
// Patch structs use pointer fields: a nil field is absent and is neither
// validated nor written. Updates are shallow merges preserving the record id.

// HotspotPatch updates a subset of hotspot fields.
type HotspotPatch struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	SSID    *string `json:"ssid,omitempty" validate:"omitempty,min=1,max=32"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=200"`
	Status  *string `json:"status,omitempty" validate:"omitempty,oneof=online offline maintenance"`
}

// RadiusUserPatch updates a subset of RADIUS user fields.
type RadiusUserPatch struct {
	Password  *string `json:"password,omitempty" validate:"omitempty,min=6,max=128"`
	GroupID   *int64  `json:"group_id,omitempty" validate:"omitempty,gt=0"`
	HotspotID *int64  `json:"hotspot_id,omitempty" validate:"omitempty,gt=0"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

// RadiusGroupPatch updates a subset of RADIUS group fields.
type RadiusGroupPatch struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=64"`
	DownloadKbps *int64  `json:"download_kbps,omitempty" validate:"omitempty,gt=0"`
	UploadKbps   *int64  `json:"upload_kbps,omitempty" validate:"omitempty,gt=0"`
}

// PlanPatch updates a subset of plan fields.
type PlanPatch struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	PriceCents   *int64  `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	DurationDays *int    `json:"duration_days,omitempty" validate:"omitempty,gt=0"`
	DataCapMB    *int64  `json:"data_cap_mb,omitempty" validate:"omitempty,gt=0"`
}

// SubscriptionPatch updates a subset of subscription fields.
type SubscriptionPatch struct {
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Active    *bool      `json:"active,omitempty"`
}

// TenantPatch updates a subset of tenant fields.
type TenantPatch struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Domain       *string `json:"domain,omitempty" validate:"omitempty,fqdn"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=active suspended trial"`
}

// AccountPatch updates a subset of the signed-in operator's profile.
type AccountPatch struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,e164"`
}
