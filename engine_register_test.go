package goSession

import (
	"context"
	"testing"

	"github.com/MrEthical07/goSession/users"
)

func TestRegisterCreatesLoginableAccount(t *testing.T) {
	e := newTestEngine(t, StoreDurable)
	ctx := context.Background()

	view, err := e.Register(ctx, RegisterInput{Email: "New@X.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if view.Email != "new@x.com" || view.Role != users.RoleCustomer || view.ID == "" {
		t.Fatalf("unexpected view %+v", view)
	}

	p, err := e.repo.FindByID(ctx, view.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if p.PasswordHash == "long-enough" {
		t.Fatal("password must be stored hashed")
	}

	if _, err := e.Login(ctx, Credentials{Email: "new@x.com", Password: "long-enough"}, nil); err != nil {
		t.Fatalf("login as new account: %v", err)
	}
	if got := e.MetricsSnapshot().Counters[MetricAccountCreationSuccess]; got != 1 {
		t.Fatalf("expected 1 account creation, got %d", got)
	}
}

func TestRegisterAdminRole(t *testing.T) {
	e := newTestEngine(t, StoreEphemeral)
	view, err := e.Register(context.Background(), RegisterInput{Email: "root@x.com", Password: "long-enough", Role: users.RoleAdmin})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if view.Role != users.RoleAdmin {
		t.Fatalf("expected admin, got %q", view.Role)
	}
}

func TestRegisterRejections(t *testing.T) {
	e := newTestEngine(t, StoreEphemeral)
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"duplicate", RegisterInput{Email: testEmail, Password: "long-enough"}, ErrAccountExists},
		{"duplicate case", RegisterInput{Email: "A@X.COM", Password: "long-enough"}, ErrAccountExists},
		{"bad email", RegisterInput{Email: "not-an-email", Password: "long-enough"}, ErrAccountCreationInvalid},
		{"no tld", RegisterInput{Email: "a@localhost", Password: "long-enough"}, ErrAccountCreationInvalid},
		{"short password", RegisterInput{Email: "b@x.com", Password: "short"}, ErrAccountCreationInvalid},
		{"unknown role", RegisterInput{Email: "c@x.com", Password: "long-enough", Role: "owner"}, ErrAccountRoleInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.Register(ctx, tc.in); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if got := e.MetricsSnapshot().Counters[MetricAccountCreationDuplicate]; got != 2 {
		t.Fatalf("expected 2 duplicates, got %d", got)
	}
}

func TestRegisterDisabledWithoutCreator(t *testing.T) {
	_, rdb := newTestRedis(t)
	lookupOnly := struct{ users.Lookup }{seededRepository(t)}

	e, err := New().WithConfig(testConfig()).WithUserLookup(lookupOnly).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer e.Close()

	if _, err := e.Register(context.Background(), RegisterInput{Email: "b@x.com", Password: "long-enough"}); err != ErrAccountCreationDisabled {
		t.Fatalf("expected ErrAccountCreationDisabled, got %v", err)
	}
}
