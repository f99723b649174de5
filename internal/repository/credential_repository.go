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

const credentialsCollection = "credentials"

// ErrEmailExists is returned when a credential already uses the email.
var ErrEmailExists = Conflict("The email address is already in use by another account.")

// CredentialRepo stores the password hashes of locally managed identities.
type CredentialRepo struct {
	Store database.Store
	Now   func() time.Time
}

func NewCredentialRepo(s database.Store) *CredentialRepo {
	return &CredentialRepo{Store: s, Now: time.Now}
}

// Create stores a credential and returns its subject id.  The email check
// and the insert are not atomic.
func (r *CredentialRepo) Create(ctx context.Context, email, passwordHash string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := r.ByEmail(ctx, email); err == nil {
		return "", ErrEmailExists
	} else if !isNotFound(err) {
		return "", err
	}
	id, err := r.Store.Insert(ctx, credentialsCollection, model.Credential{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    utils.Timestamp(r.Now()),
	})
	if err != nil {
		return "", fmt.Errorf("insert credential: %w", err)
	}
	return id, nil
}

// ByEmail returns the credential registered for email.
func (r *CredentialRepo) ByEmail(ctx context.Context, email string) (*model.Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	docs, err := r.Store.Find(ctx, credentialsCollection, database.Query{Limit: 1}.Where("email", database.Eq, email))
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	if len(docs) == 0 {
		return nil, NotFound("Credential not found")
	}
	var c model.Credential
	if err := docs[0].Decode(&c); err != nil {
		return nil, err
	}
	c.ID = docs[0].ID
	return &c, nil
}

// Delete removes the credential with subject id.
func (r *CredentialRepo) Delete(ctx context.Context, id string) error {
	if err := r.Store.Delete(ctx, credentialsCollection, id); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
