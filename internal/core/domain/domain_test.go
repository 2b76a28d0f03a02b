package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAgreementStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to AgreementStatus
		want     bool
	}{
		{AgreementPending, AgreementChecked, true},
		{AgreementChecked, AgreementChecked, false},
		{AgreementChecked, AgreementPending, false},
		{AgreementPending, AgreementPending, false},
		{"", AgreementChecked, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%q -> %q: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestUser_HasRole(t *testing.T) {
	var nilUser *User
	if nilUser.HasRole(RoleAdmin) {
		t.Fatal("nil user must not hold any role")
	}

	unset := &User{Email: "a@x.com"}
	if unset.HasRole(RoleNone) {
		t.Fatal("unset role must never match")
	}
	if unset.HasRole(RoleMember) {
		t.Fatal("unset role must not match member")
	}

	admin := &User{Email: "b@x.com", Role: RoleAdmin}
	if !admin.HasRole(RoleAdmin) {
		t.Fatal("expected admin to hold admin role")
	}
	if admin.HasRole(RoleMember) {
		t.Fatal("admin must not match member")
	}
}

func TestUser_JSONAlwaysCarriesCreatedAt(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(User{Email: "a@x.com", CreatedAt: at})
	if err != nil {
		t.Fatal(err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	if out["createdAt"] != "2024-03-01T10:00:00Z" {
		t.Errorf("createdAt = %v", out["createdAt"])
	}
	if _, ok := out["role"]; ok {
		t.Errorf("unset role must be omitted, got %s", raw)
	}
}
