package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/insurance-lead-desk/internal/database"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
)

func TestUserRepo(t *testing.T) {
	r := NewUserRepo(database.NewMemoryStore())
	r.Now = stepClock(epoch)
	ctx := context.Background()

	for _, u := range []struct{ id, name, email string }{
		{"s1", "Asha", "Asha@Mail.com"},
		{"s2", "Vikram", "vik@corp.in"},
		{"s3", "Meera", "meera@mail.com"},
	} {
		if _, err := r.Register(ctx, u.id, u.name, u.email); err != nil {
			t.Fatal(err)
		}
	}

	got, err := r.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != model.RoleUser || got.Email != "asha@mail.com" || got.ID != "s1" {
		t.Errorf("profile = %+v", got)
	}
	if _, err := r.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}

	byEmail, err := r.FindByEmail(ctx, " VIK@corp.in")
	if err != nil || byEmail.ID != "s2" {
		t.Errorf("FindByEmail = %+v, %v", byEmail, err)
	}

	if err := r.SetRole(ctx, "s2", model.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if u, _ := r.Get(ctx, "s2"); u.Role != model.RoleAdmin || u.Name != "Vikram" {
		t.Errorf("after SetRole = %+v", u)
	}
	if err := r.SetRole(ctx, "s2", "root"); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v", err)
	}
	if err := r.SetRole(ctx, "nope", model.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}

	recent, err := r.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != "s3" || recent[1].ID != "s2" {
		t.Errorf("List = %+v", recent)
	}
}

func TestRegisterKeepsRoleAndCreatedAt(t *testing.T) {
	r := NewUserRepo(database.NewMemoryStore())
	r.Now = stepClock(epoch)
	ctx := context.Background()

	first, err := r.Register(ctx, "s1", "Asha", "asha@mail.com")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetRole(ctx, "s1", model.RoleAdmin); err != nil {
		t.Fatal(err)
	}

	again, err := r.Register(ctx, "s1", "Asha Rao", "Asha.Rao@Mail.com")
	if err != nil {
		t.Fatal(err)
	}
	stored, err := r.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range []*model.User{again, stored} {
		if u.Role != model.RoleAdmin || u.CreatedAt != first.CreatedAt {
			t.Errorf("role %q createdAt %q, want admin %q", u.Role, u.CreatedAt, first.CreatedAt)
		}
		if u.Name != "Asha Rao" || u.Email != "asha.rao@mail.com" {
			t.Errorf("name %q email %q not updated", u.Name, u.Email)
		}
	}
}

func TestCredentialRepo(t *testing.T) {
	r := NewCredentialRepo(database.NewMemoryStore())
	ctx := context.Background()

	id, err := r.Create(ctx, "Asha@Mail.com", "hash")
	if err != nil || id == "" {
		t.Fatalf("Create = %q, %v", id, err)
	}
	if _, err := r.Create(ctx, "asha@mail.com", "other"); !errors.Is(err, ErrEmailExists) || !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v", err)
	}
	c, err := r.ByEmail(ctx, "ASHA@mail.com")
	if err != nil || c.ID != id || c.PasswordHash != "hash" {
		t.Errorf("ByEmail = %+v, %v", c, err)
	}
	if _, err := r.ByEmail(ctx, "nobody@mail.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestContactRepo(t *testing.T) {
	r := NewContactRepo(database.NewMemoryStore())
	r.Now = stepClock(epoch)
	ctx := context.Background()

	if _, err := r.Create(ctx, NewContact{Name: "A", Email: "a@x.io"}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v", err)
	}
	first, err := r.Create(ctx, NewContact{Name: "A", Email: "a@x.io", Message: "Call me"})
	if err != nil {
		t.Fatal(err)
	}
	second, _ := r.Create(ctx, NewContact{Name: "B", Email: "b@x.io", Phone: "98", Message: "Claim help"})

	msgs, err := r.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].ID != second.ID || msgs[1].ID != first.ID {
		t.Errorf("List = %+v", msgs)
	}
}
