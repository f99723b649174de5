package service

import (
	"context"

	"github.com/iliyamo/insurance-lead-desk/internal/model"
)

// CustomerDetails is a profile with its policies and policy totals.
type CustomerDetails struct {
	User     *model.User    `json:"user"`
	Policies []model.Policy `json:"policies"`
	Stats    CustomerStats  `json:"stats"`
}

type CustomerStats struct {
	TotalPolicies  int     `json:"totalPolicies"`
	ActivePolicies int     `json:"activePolicies"`
	TotalPremium   float64 `json:"totalPremium"`
}

// UserDetails returns the customer view of user id.  A missing profile is
// repository.ErrNotFound.
func (s *AdminService) UserDetails(ctx context.Context, id string) (*CustomerDetails, error) {
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	policies, err := s.Policies.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &CustomerDetails{User: u, Policies: policies}
	d.Stats.TotalPolicies = len(policies)
	for _, p := range policies {
		if p.Status == model.PolicyActive {
			d.Stats.ActivePolicies++
		}
		d.Stats.TotalPremium += float64(p.Premium)
	}
	return d, nil
}
