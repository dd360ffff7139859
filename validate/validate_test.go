package validate_test

import (
	"testing"

	"github.com/chimerakang/hotspot-go/apierror"
	"github.com/chimerakang/hotspot-go/validate"
)

type hotspotInput struct {
	Name    string `json:"name" validate:"required,min=2"`
	SSID    string `json:"ssid" validate:"required"`
	Address string `json:"address" validate:"omitempty,max=200"`
}

type hotspotPatch struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2"`
	SSID    *string `json:"ssid,omitempty" validate:"omitempty,min=1"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=200"`
}

func TestStruct_Valid(t *testing.T) {
	g := validate.New()
	if err := g.Struct(hotspotInput{Name: "Lobby AP", SSID: "lobby"}); err != nil {
		t.Fatalf("Struct() error: %v", err)
	}
}

func TestStruct_MissingRequiredFieldNamesField(t *testing.T) {
	g := validate.New()
	err := g.Struct(hotspotInput{Name: "Lobby AP"})
	if err == nil {
		t.Fatal("Struct() expected error for missing ssid")
	}
	if !apierror.IsValidation(err) {
		t.Errorf("error should classify as validation, got %v", err)
	}
	e := apierror.FromAny(err)
	if e.Details["field"] != "ssid" {
		t.Errorf("Details[field] = %v, want ssid (json tag name)", e.Details["field"])
	}
}

func TestPartial_AbsentFieldsAreNotValidated(t *testing.T) {
	g := validate.New()
	// Only name present; ssid and address absent must not fail or be defaulted.
	name := "Rooftop AP"
	if err := g.Partial(hotspotPatch{Name: &name}); err != nil {
		t.Fatalf("Partial() error: %v", err)
	}
}

func TestPartial_PresentFieldIsValidated(t *testing.T) {
	g := validate.New()
	bad := "x"
	if err := g.Partial(hotspotPatch{Name: &bad}); err == nil {
		t.Fatal("Partial() expected error for too-short name")
	}
}

func TestEach_OneBadElementFailsWholeList(t *testing.T) {
	g := validate.New()
	list := []hotspotInput{
		{Name: "Lobby AP", SSID: "lobby"},
		{Name: "Cafe AP"}, // missing ssid
		{Name: "Gym AP", SSID: "gym"},
	}
	err := g.Each(list)
	if err == nil {
		t.Fatal("Each() expected error when one element is invalid")
	}
	if !apierror.IsValidation(err) {
		t.Errorf("error should classify as validation, got %v", err)
	}
}

func TestEach_AllValid(t *testing.T) {
	g := validate.New()
	list := []hotspotInput{
		{Name: "Lobby AP", SSID: "lobby"},
		{Name: "Gym AP", SSID: "gym"},
	}
	if err := g.Each(list); err != nil {
		t.Fatalf("Each() error: %v", err)
	}
}

func TestVar(t *testing.T) {
	g := validate.New()
	if err := g.Var("not-an-email", "email"); err == nil {
		t.Fatal("Var() expected error for invalid email")
	}
	if err := g.Var("ops@example.com", "email"); err != nil {
		t.Fatalf("Var() error: %v", err)
	}
}
