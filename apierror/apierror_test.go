package apierror_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/chimerakang/hotspot-go/apierror"
	"github.com/go-playground/validator/v10"
)

func TestFromNetwork_SetsFlagAndNoStatus(t *testing.T) {
	e := apierror.FromNetwork(errors.New("dial tcp: connection refused"))
	if !e.Network {
		t.Error("Network flag should be set")
	}
	if e.Status != 0 {
		t.Errorf("Status = %d, want 0", e.Status)
	}
	if e.Kind != apierror.KindNetwork {
		t.Errorf("Kind = %q, want %q", e.Kind, apierror.KindNetwork)
	}
}

func TestFromResponse_PrefersBackendMessage(t *testing.T) {
	e := apierror.FromResponse(404, "hotspot 7 not found", "request failed with 404")
	if e.Message != "hotspot 7 not found" {
		t.Errorf("Message = %q, want backend message", e.Message)
	}
	if e.Status != 404 {
		t.Errorf("Status = %d, want 404", e.Status)
	}
	if e.Kind != apierror.KindNotFound {
		t.Errorf("Kind = %q, want %q", e.Kind, apierror.KindNotFound)
	}
}

func TestFromResponse_FallsBackToTransportMessage(t *testing.T) {
	e := apierror.FromResponse(502, "", "bad gateway from upstream")
	if e.Message != "bad gateway from upstream" {
		t.Errorf("Message = %q, want fallback message", e.Message)
	}
	if e.Kind != apierror.KindServer {
		t.Errorf("Kind = %q, want %q", e.Kind, apierror.KindServer)
	}
}

func TestFromResponse_StatusClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   apierror.Kind
	}{
		{401, apierror.KindUnauthorized},
		{403, apierror.KindForbidden},
		{404, apierror.KindNotFound},
		{500, apierror.KindServer},
		{503, apierror.KindServer},
		{418, apierror.KindUnclassified},
	}
	for _, tc := range cases {
		if got := apierror.FromResponse(tc.status, "", "").Kind; got != tc.kind {
			t.Errorf("status %d: Kind = %q, want %q", tc.status, got, tc.kind)
		}
	}
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func validationFailure(t *testing.T) error {
	t.Helper()
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(loginInput{Password: "secret-password"})
	if err == nil {
		t.Fatal("expected a validation failure")
	}
	return err
}

func TestFromValidation_FirstFieldOnly(t *testing.T) {
	e := apierror.FromValidation(validationFailure(t))
	if !e.Validation {
		t.Error("Validation flag should be set")
	}
	if e.Status != 400 {
		t.Errorf("Status = %d, want 400", e.Status)
	}
	if e.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", e.Code)
	}
	if e.Details["field"] != "Email" {
		t.Errorf("Details[field] = %v, want Email", e.Details["field"])
	}
}

func TestFromAny_IdempotentNormalization(t *testing.T) {
	raw := errors.New("boom")
	once := apierror.FromAny(raw)
	twice := apierror.FromAny(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalizing twice changed the value: %+v vs %+v", once, twice)
	}
	// Same holds across normalizer families.
	net := apierror.FromNetwork(raw)
	if !reflect.DeepEqual(net, apierror.FromNetwork(net)) {
		t.Error("FromNetwork should pass an *Error through unchanged")
	}
	if !reflect.DeepEqual(net, apierror.FromValidation(net)) {
		t.Error("FromValidation should pass an *Error through unchanged")
	}
}

func TestFromAny_NilStaysNil(t *testing.T) {
	if apierror.FromAny(nil) != nil {
		t.Error("FromAny(nil) should be nil")
	}
}

func TestNotFound_MatchesLive404Shape(t *testing.T) {
	e := apierror.NotFound("radius user", 42)
	if e.Status != 404 || e.Kind != apierror.KindNotFound {
		t.Errorf("NotFound shape mismatch: %+v", e)
	}
	if !apierror.IsNotFound(e) {
		t.Error("IsNotFound should report true")
	}
}

func TestPredicates(t *testing.T) {
	if !apierror.IsUnauthorized(apierror.FromResponse(401, "", "")) {
		t.Error("IsUnauthorized(401)")
	}
	if !apierror.IsForbidden(apierror.FromResponse(403, "", "")) {
		t.Error("IsForbidden(403)")
	}
	if !apierror.IsServer(apierror.FromResponse(500, "", "")) {
		t.Error("IsServer(500)")
	}
	if apierror.IsNetwork(errors.New("plain")) {
		t.Error("IsNetwork should be false for non-normalized errors")
	}
	if !apierror.Retryable(apierror.FromNetwork(nil)) {
		t.Error("network errors are retryable")
	}
	if apierror.Retryable(apierror.FromResponse(400, "", "")) {
		t.Error("4xx errors are not retryable")
	}
}

func TestUserMessage_NeverLeaksInternals(t *testing.T) {
	raw := errors.New("pq: duplicate key value violates unique constraint")
	msg := apierror.UserMessage(apierror.FromAny(raw))
	if msg == raw.Error() {
		t.Error("UserMessage leaked the raw internal message")
	}
	if msg == "" {
		t.Error("UserMessage should never be empty")
	}
	if apierror.UserMessage(nil) == "" {
		t.Error("UserMessage(nil) should fall back to the generic message")
	}
}

func TestUserMessage_OnePerClassification(t *testing.T) {
	seen := map[string]apierror.Kind{}
	for _, status := range []int{401, 403, 404, 500} {
		e := apierror.FromResponse(status, "", "")
		msg := apierror.UserMessage(e)
		if prev, dup := seen[msg]; dup {
			t.Errorf("kinds %q and %q share the message %q", prev, e.Kind, msg)
		}
		seen[msg] = e.Kind
	}
}
