// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import "github.com/iliyamo/insurance-lead-desk/internal/model"

// LeadCreatedQueue is the durable queue lead events are published to.
const LeadCreatedQueue = "lead.created"

// LeadCreatedEvent is published after a lead has been stored.  It carries
// enough for downstream consumers to log or notify without reading the store.
type LeadCreatedEvent struct {
	LeadID      string `json:"lead_id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	City        string `json:"city,omitempty"`
	ProductType string `json:"product_type"`
	LeadSource  string `json:"lead_source"`
	Duplicate   bool   `json:"duplicate"`
	CreatedAt   string `json:"created_at"`
}

// NewLeadCreatedEvent builds the event for a freshly created lead.
func NewLeadCreatedEvent(l model.CreatedLead) LeadCreatedEvent {
	return LeadCreatedEvent{
		LeadID:      l.ID,
		Name:        l.Name,
		Phone:       l.Phone,
		Email:       l.Email,
		City:        l.City,
		ProductType: l.ProductType,
		LeadSource:  l.LeadSource,
		Duplicate:   l.IsDuplicate,
		CreatedAt:   l.CreatedAt,
	}
}
