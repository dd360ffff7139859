package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/apierror"
	"github.com/chimerakang/hotspot-go/querycache"
	"github.com/chimerakang/hotspot-go/transport"
)

func newBackend(t *testing.T, handler http.Handler) (*Backend, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tr := transport.New(srv.URL, transport.WithBackoffWait(time.Millisecond, 5*time.Millisecond))
	return New(tr, querycache.New()), srv
}

func TestListCachesResults(t *testing.T) {
	var hits atomic.Int64
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hotspots" {
			t.Errorf("path = %q, want /hotspots", r.URL.Path)
		}
		hits.Add(1)
		json.NewEncoder(w).Encode([]hotspot.Hotspot{{ID: 1, Name: "Lobby", SSID: "lobby-wifi"}})
	}))

	for i := 0; i < 3; i++ {
		got, err := b.Hotspots.List(context.Background(), hotspot.ListOptions{})
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(got) != 1 || got[0].Name != "Lobby" {
			t.Fatalf("List() = %+v", got)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("backend hits = %d, want 1 (fresh reads served from cache)", hits.Load())
	}
}

func TestListQueryParamsAndDistinctCacheEntries(t *testing.T) {
	var paths []string
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		json.NewEncoder(w).Encode([]hotspot.RadiusUser{})
	}))

	ctx := context.Background()
	if _, err := b.RadiusUsers.List(ctx, hotspot.ListOptions{Page: 2, PageSize: 10, Filters: map[string]string{"enabled": "true"}}); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if _, err := b.RadiusUsers.List(ctx, hotspot.ListOptions{Page: 3, PageSize: 10, Filters: map[string]string{"enabled": "true"}}); err != nil {
		t.Fatalf("List() error: %v", err)
	}

	want := []string{
		"/radius/users?enabled=true&page=2&page_size=10",
		"/radius/users?enabled=true&page=3&page_size=10",
	}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("request URIs = %v, want %v", paths, want)
	}
}

func TestListRejectsMalformedElement(t *testing.T) {
	var hits atomic.Int64
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode([]hotspot.Hotspot{
			{ID: 1, Name: "Lobby", SSID: "lobby-wifi"},
			{ID: 2, Name: "", SSID: ""},
		})
	}))

	got, err := b.Hotspots.List(context.Background(), hotspot.ListOptions{})
	if err == nil {
		t.Fatalf("List() = %d elements with nil error, want failure on the malformed element", len(got))
	}
	if !apierror.IsValidation(err) {
		t.Errorf("IsValidation(err) = false; err = %v", err)
	}

	// The rejected list must not have been cached.
	if _, err := b.Hotspots.List(context.Background(), hotspot.ListOptions{}); err == nil {
		t.Fatal("second List() returned nil error")
	}
	if hits.Load() != 2 {
		t.Errorf("backend hits = %d, want 2 (invalid response cached)", hits.Load())
	}
}

func TestGetRejectsMalformedResponse(t *testing.T) {
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(hotspot.Account{ID: 1, Email: "not-an-email", Name: "Op"})
	}))

	_, err := b.Account.Current(context.Background())
	if err == nil {
		t.Fatal("Current() accepted a malformed response")
	}
	if !apierror.IsValidation(err) {
		t.Errorf("IsValidation(err) = false; err = %v", err)
	}
}

func TestCreateRejectsMalformedResponse(t *testing.T) {
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Mutation accepted but the echoed record is missing its name.
		json.NewEncoder(w).Encode(hotspot.Plan{ID: 7, Currency: "USD"})
	}))

	_, err := b.Plans.Create(context.Background(), hotspot.PlanInput{
		Name: "Day Pass", PriceCents: 500, Currency: "USD", DurationDays: 1,
	})
	if err == nil {
		t.Fatal("Create() accepted a malformed response")
	}
	if !apierror.IsValidation(err) {
		t.Errorf("IsValidation(err) = false; err = %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "plan 99 not found"})
	}))

	_, err := b.Plans.Get(context.Background(), 99)
	if err == nil {
		t.Fatal("Get() returned nil error for missing record")
	}
	if !apierror.IsNotFound(err) {
		t.Errorf("IsNotFound(err) = false; err = %v", err)
	}
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	var hits atomic.Int64
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	_, err := b.Hotspots.Create(context.Background(), hotspot.HotspotInput{Name: "x", SSID: ""})
	if err == nil {
		t.Fatal("Create() accepted an invalid payload")
	}
	if !apierror.IsValidation(err) {
		t.Errorf("IsValidation(err) = false; err = %v", err)
	}
	var norm *apierror.Error
	if !errors.As(err, &norm) {
		t.Fatalf("error is not normalized: %v", err)
	}
	if f, ok := norm.Details["field"]; !ok || f == "" {
		t.Error("validation error carries no field detail")
	}
	if hits.Load() != 0 {
		t.Errorf("backend hits = %d, want 0 (rejected before the wire)", hits.Load())
	}
}

func TestCreateInvalidatesListCache(t *testing.T) {
	var listHits atomic.Int64
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			listHits.Add(1)
			json.NewEncoder(w).Encode([]hotspot.Plan{})
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(hotspot.Plan{ID: 7, Name: "Day Pass", Currency: "USD"})
		}
	}))

	ctx := context.Background()
	if _, err := b.Plans.List(ctx, hotspot.ListOptions{}); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	created, err := b.Plans.Create(ctx, hotspot.PlanInput{
		Name: "Day Pass", PriceCents: 500, Currency: "USD", DurationDays: 1,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID != 7 {
		t.Errorf("Create().ID = %d, want 7", created.ID)
	}
	if _, err := b.Plans.List(ctx, hotspot.ListOptions{}); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if listHits.Load() != 2 {
		t.Errorf("list hits = %d, want 2 (mutation invalidated the cached list)", listHits.Load())
	}
}

func TestUpdateSendsPatch(t *testing.T) {
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %q, want PATCH", r.Method)
		}
		if r.URL.Path != "/tenants/3" {
			t.Errorf("path = %q, want /tenants/3", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if len(body) != 1 || body["name"] != "Renamed" {
			t.Errorf("patch body = %v, want only name", body)
		}
		json.NewEncoder(w).Encode(hotspot.Tenant{ID: 3, Name: "Renamed", Status: "active"})
	}))

	name := "Renamed"
	got, err := b.Tenants.Update(context.Background(), 3, hotspot.TenantPatch{Name: &name})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("Update().Name = %q, want %q", got.Name, "Renamed")
	}
}

func TestUpdateRejectsInvalidPatchField(t *testing.T) {
	var hits atomic.Int64
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	bad := "not-a-valid-status"
	_, err := b.Tenants.Update(context.Background(), 3, hotspot.TenantPatch{Status: &bad})
	if err == nil {
		t.Fatal("Update() accepted an invalid status")
	}
	if !apierror.IsValidation(err) {
		t.Errorf("IsValidation(err) = false; err = %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("backend hits = %d, want 0", hits.Load())
	}
}

func TestDeleteInvalidatesItem(t *testing.T) {
	var getHits atomic.Int64
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			getHits.Add(1)
			json.NewEncoder(w).Encode(hotspot.RadiusGroup{ID: 5, Name: "staff"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))

	ctx := context.Background()
	if _, err := b.RadiusGroups.Get(ctx, 5); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if err := b.RadiusGroups.Delete(ctx, 5); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := b.RadiusGroups.Get(ctx, 5); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if getHits.Load() != 2 {
		t.Errorf("get hits = %d, want 2 (delete dropped the cached item)", getHits.Load())
	}
}

func TestDisconnectSession(t *testing.T) {
	var disconnected atomic.Bool
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/radius/sessions/12/disconnect" {
			disconnected.Store(true)
			w.WriteHeader(http.StatusOK)
			return
		}
		json.NewEncoder(w).Encode([]hotspot.RadiusSession{})
	}))

	if err := b.RadiusSessions.Disconnect(context.Background(), 12); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}
	if !disconnected.Load() {
		t.Error("disconnect endpoint was never called")
	}
}

func TestPaymentMethodValidation(t *testing.T) {
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid payment reached the backend")
	}))

	_, err := b.Payments.Create(context.Background(), hotspot.PaymentInput{
		UserID: 1, AmountCents: 500, Currency: "USD", Method: "crypto",
	})
	if err == nil {
		t.Fatal("Create() accepted an unknown payment method")
	}
	if !apierror.IsValidation(err) {
		t.Errorf("IsValidation(err) = false; err = %v", err)
	}
}

func TestAccountCurrentAndUpdate(t *testing.T) {
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(hotspot.Account{ID: 1, Email: "op@example.com", Name: "Op"})
		case http.MethodPatch:
			json.NewEncoder(w).Encode(hotspot.Account{ID: 1, Email: "op@example.com", Name: "Operator"})
		}
	}))

	ctx := context.Background()
	acct, err := b.Account.Current(ctx)
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if acct.Email != "op@example.com" {
		t.Errorf("Current().Email = %q", acct.Email)
	}

	name := "Operator"
	updated, err := b.Account.Update(ctx, hotspot.AccountPatch{Name: &name})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Name != "Operator" {
		t.Errorf("Update().Name = %q, want %q", updated.Name, "Operator")
	}
}

func TestDashboardStats(t *testing.T) {
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats/dashboard" {
			t.Errorf("path = %q, want /stats/dashboard", r.URL.Path)
		}
		json.NewEncoder(w).Encode(hotspot.DashboardStats{Hotspots: 3, RadiusUsers: 40, ActiveSessions: 7, RevenueCents: 120000})
	}))

	stats, err := b.Stats.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error: %v", err)
	}
	if stats.ActiveSessions != 7 {
		t.Errorf("ActiveSessions = %d, want 7", stats.ActiveSessions)
	}
}
