package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/insurance-lead-desk/internal/database"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/utils"
)

const usersCollection = "users"

// UserRepo manages profiles in the "users" collection.  Profiles are keyed
// by identity subject.
type UserRepo struct {
	Store database.Store
	Now   func() time.Time
}

func NewUserRepo(s database.Store) *UserRepo { return &UserRepo{Store: s, Now: time.Now} }

// Register creates the profile of subject id with role user.  When the
// profile already exists only its name and email are updated; role and
// createdAt are kept.
func (r *UserRepo) Register(ctx context.Context, id, name, email string) (*model.User, error) {
	if id == "" {
		return nil, Validation("Missing identity subject")
	}
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := r.Get(ctx, id)
	switch {
	case err == nil:
		if err := r.Store.Merge(ctx, usersCollection, id, map[string]any{"name": name, "email": email}); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		existing.Name, existing.Email = name, email
		return existing, nil
	case !isNotFound(err):
		return nil, err
	}

	u := model.User{
		Name:      name,
		Email:     email,
		Role:      model.RoleUser,
		CreatedAt: utils.Timestamp(r.Now()),
	}
	if err := r.Store.Set(ctx, usersCollection, id, u); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	u.ID = id
	return &u, nil
}

// Get fetches a profile by id.
func (r *UserRepo) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.Store.Get(ctx, usersCollection, id, &u); err != nil {
		return nil, notFound(err, "User not found")
	}
	u.ID = id
	return &u, nil
}

// List returns the newest profiles by createdAt.
func (r *UserRepo) List(ctx context.Context, limit int) ([]model.User, error) {
	docs, err := r.Store.Find(ctx, usersCollection, database.Query{OrderBy: "createdAt", Desc: true, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return database.DecodeAll[model.User](docs)
}

// All returns every profile in insertion order.
func (r *UserRepo) All(ctx context.Context) ([]model.User, error) {
	docs, err := r.Store.Find(ctx, usersCollection, database.Query{})
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	return database.DecodeAll[model.User](docs)
}

// FindByEmail returns the first profile with the (normalized) email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	docs, err := r.Store.Find(ctx, usersCollection, database.Query{Limit: 1}.Where("email", database.Eq, email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if len(docs) == 0 {
		return nil, NotFound("User not found")
	}
	var u model.User
	if err := docs[0].Decode(&u); err != nil {
		return nil, err
	}
	u.ID = docs[0].ID
	return &u, nil
}

// SetRole changes the role of an existing profile.
func (r *UserRepo) SetRole(ctx context.Context, id, role string) error {
	if role != model.RoleUser && role != model.RoleAdmin {
		return Validation("Invalid role: " + role)
	}
	if err := r.Store.Merge(ctx, usersCollection, id, map[string]any{"role": role}); err != nil {
		return notFound(err, "User not found")
	}
	return nil
}
