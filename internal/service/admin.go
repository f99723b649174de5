// Package service holds the read-side aggregations of the admin back
// office and the side channels of the API: lead events, domain metrics and
// error reporting.
package service

import (
	"context"

	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
)

// AdminService aggregates across the leads, users and policies collections.
type AdminService struct {
	Leads    *repository.LeadRepo
	Users    *repository.UserRepo
	Policies *repository.PolicyRepo
}

func NewAdminService(l *repository.LeadRepo, u *repository.UserRepo, p *repository.PolicyRepo) *AdminService {
	return &AdminService{Leads: l, Users: u, Policies: p}
}

const (
	adminUsersPageSize    = 20
	adminPoliciesPageSize = 50
)

// OwnedPolicy is a policy annotated with its owner's name.
type OwnedPolicy struct {
	model.Policy
	UserName string `json:"userName"`
}

// RecentUsers returns the newest profiles.
func (s *AdminService) RecentUsers(ctx context.Context) ([]model.User, error) {
	return s.Users.List(ctx, adminUsersPageSize)
}

// RecentPolicies returns the newest policies with owner names.  Unlinked
// policies and owners without a profile are shown as "Unknown".
func (s *AdminService) RecentPolicies(ctx context.Context) ([]OwnedPolicy, error) {
	policies, err := s.Policies.Latest(ctx, adminPoliciesPageSize)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	names := userNames(users)
	out := make([]OwnedPolicy, 0, len(policies))
	for _, p := range policies {
		out = append(out, OwnedPolicy{Policy: p, UserName: names.lookup(p.UserID)})
	}
	return out, nil
}

type nameIndex map[string]string

func userNames(users []model.User) nameIndex {
	idx := make(nameIndex, len(users))
	for _, u := range users {
		idx[u.ID] = u.Name
	}
	return idx
}

func (n nameIndex) lookup(id string) string {
	if name := n[id]; id != "" && name != "" {
		return name
	}
	return "Unknown"
}
