package sim

import (
	"time"

	hotspot "github.com/chimerakang/hotspot-go"
)

// seed fills the store with a small, internally consistent demo dataset:
// one tenant running three hotspots, a handful of RADIUS users across two
// bandwidth groups, plans with subscriptions and payments, and a mix of
// active and stopped sessions.
func seed(s *store) {
	base := s.now().Add(-30 * 24 * time.Hour)
	day := 24 * time.Hour

	s.tenants.seed(&hotspot.Tenant{
		ID: 1, Name: "Harbor Cafe Group", Domain: "harborcafe.example",
		ContactEmail: "admin@harborcafe.example", Status: "active", CreatedAt: base,
	})

	s.hotspots.seed(&hotspot.Hotspot{
		ID: 1, Name: "Harbor Cafe", SSID: "harbor-guest", Address: "12 Quay St",
		MACAddr: "a4:2b:b0:11:22:33", TenantID: 1, Status: "online", CreatedAt: base,
	})
	s.hotspots.seed(&hotspot.Hotspot{
		ID: 2, Name: "Harbor Annex", SSID: "harbor-annex", Address: "14 Quay St",
		MACAddr: "a4:2b:b0:44:55:66", TenantID: 1, Status: "online", CreatedAt: base.Add(day),
	})
	s.hotspots.seed(&hotspot.Hotspot{
		ID: 3, Name: "Rooftop Bar", SSID: "rooftop-wifi",
		TenantID: 1, Status: "maintenance", CreatedAt: base.Add(2 * day),
	})

	s.radiusGroups.seed(&hotspot.RadiusGroup{
		ID: 1, Name: "standard", DownloadKbps: 10240, UploadKbps: 2048, CreatedAt: base,
	})
	s.radiusGroups.seed(&hotspot.RadiusGroup{
		ID: 2, Name: "premium", DownloadKbps: 51200, UploadKbps: 10240, CreatedAt: base,
	})

	users := []hotspot.RadiusUser{
		{ID: 1, Username: "guest-ava", GroupID: 1, HotspotID: 1, Enabled: true},
		{ID: 2, Username: "guest-ben", GroupID: 1, HotspotID: 1, Enabled: true},
		{ID: 3, Username: "guest-chloe", GroupID: 2, HotspotID: 2, Enabled: true},
		{ID: 4, Username: "guest-dan", GroupID: 1, HotspotID: 2, Enabled: false},
	}
	for i := range users {
		users[i].Password = "changeme1"
		users[i].CreatedAt = base.Add(time.Duration(i) * day)
		s.radiusUsers.seed(&users[i])
	}

	s.plans.seed(&hotspot.Plan{
		ID: 1, Name: "Day Pass", PriceCents: 300, Currency: "USD",
		DurationDays: 1, DataCapMB: 1024, CreatedAt: base,
	})
	s.plans.seed(&hotspot.Plan{
		ID: 2, Name: "Weekly", PriceCents: 1500, Currency: "USD",
		DurationDays: 7, DataCapMB: 10240, CreatedAt: base,
	})
	s.plans.seed(&hotspot.Plan{
		ID: 3, Name: "Monthly Unlimited", PriceCents: 4500, Currency: "USD",
		DurationDays: 30, CreatedAt: base,
	})

	s.subscriptions.seed(&hotspot.Subscription{
		ID: 1, UserID: 1, PlanID: 3, StartsAt: base.Add(3 * day),
		ExpiresAt: base.Add(33 * day), Active: true, CreatedAt: base.Add(3 * day),
	})
	s.subscriptions.seed(&hotspot.Subscription{
		ID: 2, UserID: 3, PlanID: 2, StartsAt: base.Add(20 * day),
		ExpiresAt: base.Add(27 * day), Active: true, CreatedAt: base.Add(20 * day),
	})
	s.subscriptions.seed(&hotspot.Subscription{
		ID: 3, UserID: 2, PlanID: 1, StartsAt: base.Add(5 * day),
		ExpiresAt: base.Add(6 * day), Active: false, CreatedAt: base.Add(5 * day),
	})

	s.payments.seed(&hotspot.Payment{
		ID: 1, UserID: 1, SubscriptionID: 1, AmountCents: 4500, Currency: "USD",
		Method: "card", PaidAt: base.Add(3 * day), CreatedAt: base.Add(3 * day),
	})
	s.payments.seed(&hotspot.Payment{
		ID: 2, UserID: 3, SubscriptionID: 2, AmountCents: 1500, Currency: "USD",
		Method: "mobile_money", PaidAt: base.Add(20 * day), CreatedAt: base.Add(20 * day),
	})
	s.payments.seed(&hotspot.Payment{
		ID: 3, UserID: 2, SubscriptionID: 3, AmountCents: 300, Currency: "USD",
		Method: "cash", PaidAt: base.Add(5 * day), CreatedAt: base.Add(5 * day),
	})

	stopped := base.Add(28*day + 2*time.Hour)
	s.sessions.seed(&hotspot.RadiusSession{
		ID: 1, UserID: 1, HotspotID: 1, StartedAt: s.now().Add(-45 * time.Minute),
		BytesIn: 120 << 20, BytesOut: 30 << 20, Active: true,
		FramedIP: "10.8.0.21", CallingMAC: "f0:18:98:aa:bb:01",
	})
	s.sessions.seed(&hotspot.RadiusSession{
		ID: 2, UserID: 3, HotspotID: 2, StartedAt: s.now().Add(-10 * time.Minute),
		BytesIn: 15 << 20, BytesOut: 4 << 20, Active: true,
		FramedIP: "10.8.0.34", CallingMAC: "f0:18:98:aa:bb:02",
	})
	s.sessions.seed(&hotspot.RadiusSession{
		ID: 3, UserID: 2, HotspotID: 1, StartedAt: base.Add(28 * day),
		StoppedAt: &stopped, BytesIn: 800 << 20, BytesOut: 120 << 20, Active: false,
		FramedIP: "10.8.0.19", CallingMAC: "f0:18:98:aa:bb:03",
	})
}
