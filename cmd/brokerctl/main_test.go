package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/insurance-lead-desk/internal/database"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/utils"
)

func run(t *testing.T, store database.Store, args ...string) string {
	t.Helper()
	root := newRootCmd(func(context.Context) (*app, error) { return newApp(store, nil), nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestMakeAdmin(t *testing.T) {
	store := database.NewMemoryStore()
	a := newApp(store, nil)
	ctx := context.Background()
	if _, err := a.users.Register(ctx, "u1", "Asha", "asha@example.com"); err != nil {
		t.Fatal(err)
	}

	out := run(t, store, "make-admin", "Asha@Example.com")
	if !strings.Contains(out, "asha@example.com an admin") {
		t.Errorf("output = %q", out)
	}
	u, err := a.users.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("role = %q, want admin", u.Role)
	}

	if out := run(t, store, "make-admin", "nobody@example.com"); !strings.Contains(out, "User not found!") {
		t.Errorf("missing user output = %q", out)
	}
}

func TestPromoteAllAdmins(t *testing.T) {
	store := database.NewMemoryStore()
	a := newApp(store, nil)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := a.users.Register(ctx, id, id, id+"@example.com"); err != nil {
			t.Fatal(err)
		}
	}

	out := run(t, store, "promote-all-admins")
	if !strings.Contains(out, "Promoted 3 users") {
		t.Errorf("output = %q", out)
	}
	users, err := a.users.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range users {
		if u.Role != model.RoleAdmin {
			t.Errorf("%s role = %q", u.ID, u.Role)
		}
	}
}

func TestSeedLeads(t *testing.T) {
	store := database.NewMemoryStore()
	run(t, store, "seed-leads", "--count", "12")

	leads, err := newApp(store, nil).leads.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(leads) != 12 {
		t.Fatalf("got %d leads, want 12", len(leads))
	}
	if leads[10].Name != sampleLeads[0].name {
		t.Errorf("lead 10 = %q, want the sample set to wrap", leads[10].Name)
	}
	for _, l := range leads {
		if l.LeadSource != seedSource || !l.HasTag("Seeded") {
			t.Errorf("%s: source %q tags %v", l.Name, l.LeadSource, l.Tags)
		}
	}
}

func TestSeededLeadsAge(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	leads := seededLeads(2, now, func() time.Duration { return 48 * time.Hour })
	if got, want := leads[0].CreatedAt, "2024-05-13T12:00:00.000Z"; got != want {
		t.Errorf("created_at = %q, want %q", got, want)
	}
	if got := leads[1].UpdatedAt; got != utils.Timestamp(now) {
		t.Errorf("updated_at = %q", got)
	}
	if age := randomAge(); age < 0 || age >= maxSeedAge {
		t.Errorf("randomAge() = %v out of range", age)
	}
}

func TestSeedPolicyIsClaimable(t *testing.T) {
	store := database.NewMemoryStore()
	out := run(t, store, "seed-policy", "POL-4242")
	if !strings.Contains(out, "Created unmapped policy: POL-4242") {
		t.Errorf("output = %q", out)
	}

	p, err := newApp(store, nil).policies.Claim(context.Background(), "u1", "POL-4242")
	if err != nil {
		t.Fatalf("claim seeded policy: %v", err)
	}
	if p.UserID != "u1" || p.Premium != 15000 || p.Status != model.PolicyActive {
		t.Errorf("claimed policy = %+v", p)
	}
}

func TestSeedLeadsRejectsBadCount(t *testing.T) {
	root := newRootCmd(func(context.Context) (*app, error) { return newApp(database.NewMemoryStore(), nil), nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"seed-leads", "--count", "0"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for --count 0")
	}
}
