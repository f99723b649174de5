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

const contactCollection = "contact_messages"

// NewContact is the body of the public contact form.
type NewContact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// ContactRepo stores contact form submissions.
type ContactRepo struct {
	Store database.Store
	Now   func() time.Time
}

func NewContactRepo(s database.Store) *ContactRepo { return &ContactRepo{Store: s, Now: time.Now} }

// Create stores a message.  Name, email and message are required.
func (r *ContactRepo) Create(ctx context.Context, in NewContact) (*model.ContactMessage, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, Validation("Please provide required fields")
	}
	m := model.ContactMessage{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Message:   in.Message,
		CreatedAt: utils.Timestamp(r.Now()),
	}
	id, err := r.Store.Insert(ctx, contactCollection, m)
	if err != nil {
		return nil, fmt.Errorf("insert contact message: %w", err)
	}
	m.ID = id
	return &m, nil
}

// List returns every message, newest first.
func (r *ContactRepo) List(ctx context.Context) ([]model.ContactMessage, error) {
	docs, err := r.Store.Find(ctx, contactCollection, database.Query{OrderBy: "createdAt", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return database.DecodeAll[model.ContactMessage](docs)
}
