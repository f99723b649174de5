package service

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
	"github.com/iliyamo/insurance-lead-desk/internal/utils"
)

const (
	recentCount    = 5
	topCityCount   = 5
	renewalWindowD = 30
)

// Stats is the admin dashboard summary.
type Stats struct {
	Leads    LeadStats   `json:"leads"`
	Users    UserStats   `json:"users"`
	Policies PolicyStats `json:"policies"`
}

type LeadStats struct {
	Total          int            `json:"total"`
	Today          int            `json:"today"`
	Month          int            `json:"month"`
	ConversionRate ConversionRate `json:"conversionRate"`
	ByStatus       map[string]int `json:"byStatus"`
	ByProduct      map[string]int `json:"byProduct"`
	TopCities      []CityCount    `json:"topCities"`
	Recent         []model.Lead   `json:"recent"`
}

type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

type UserStats struct {
	Total         int          `json:"total"`
	WithPolicy    int          `json:"withPolicy"`
	WithoutPolicy int          `json:"withoutPolicy"`
	Recent        []model.User `json:"recent"`
}

type PolicyStats struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	TotalPremium float64        `json:"totalPremium"`
	Renewals     []Renewal      `json:"renewals"`
	Recent       []model.Policy `json:"recent"`
}

// Renewal is a policy expiring within the renewal window.
type Renewal struct {
	ID           string `json:"id"`
	PolicyNumber string `json:"policyNumber"`
	User         string `json:"user"`
	ExpiryDate   string `json:"expiryDate"`
	Product      string `json:"product"`
}

// ConversionRate is the share of Converted leads.  It encodes as a string
// with one decimal ("30.0"), or as the number 0 when there are no leads.
type ConversionRate struct {
	Converted int
	Total     int
}

func (r ConversionRate) String() string {
	if r.Total == 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(r.Converted)/float64(r.Total)*100, 'f', 1, 64)
}

func (r ConversionRate) MarshalJSON() ([]byte, error) {
	if r.Total == 0 {
		return []byte("0"), nil
	}
	return json.Marshal(r.String())
}

// Stats reads the three collections in full and reduces them.  Day and
// month boundaries are taken in now's location.  Any read failure aborts.
func (s *AdminService) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	leads, err := s.Leads.All(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	policies, err := s.Policies.All(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Leads:    leadStats(leads, now),
		Users:    userStats(users, policies),
		Policies: policyStats(policies, users, now),
	}, nil
}

func leadStats(leads []model.Lead, now time.Time) LeadStats {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	st := LeadStats{
		Total:     len(leads),
		ByStatus:  map[string]int{},
		ByProduct: map[string]int{},
	}
	cities := map[string]int{}
	converted := 0
	for _, l := range leads {
		if created, ok := utils.ParseTimestamp(l.CreatedAt); ok {
			if !created.Before(startOfDay) {
				st.Today++
			}
			if !created.Before(startOfMonth) {
				st.Month++
			}
		}
		if l.Status == model.StatusConverted {
			converted++
		}
		st.ByStatus[orDefault(string(l.Status), "Unknown")]++
		st.ByProduct[orDefault(l.ProductType, "Other")]++
		cities[orDefault(l.City, "Unknown")]++
	}
	st.ConversionRate = ConversionRate{Converted: converted, Total: len(leads)}

	st.TopCities = make([]CityCount, 0, len(cities))
	for city, n := range cities {
		st.TopCities = append(st.TopCities, CityCount{City: city, Count: n})
	}
	sort.Slice(st.TopCities, func(i, j int) bool {
		a, b := st.TopCities[i], st.TopCities[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.City < b.City
	})
	if len(st.TopCities) > topCityCount {
		st.TopCities = st.TopCities[:topCityCount]
	}

	recent := append([]model.Lead(nil), leads...)
	sort.SliceStable(recent, func(i, j int) bool {
		return timeOf(recent[i].CreatedAt).After(timeOf(recent[j].CreatedAt))
	})
	st.Recent = head(recent, recentCount)
	return st
}

func userStats(users []model.User, policies []model.Policy) UserStats {
	owners := map[string]bool{}
	for _, p := range policies {
		if p.UserID != "" {
			owners[p.UserID] = true
		}
	}
	recent := append([]model.User(nil), users...)
	sort.SliceStable(recent, func(i, j int) bool {
		return timeOf(recent[i].CreatedAt).After(timeOf(recent[j].CreatedAt))
	})
	return UserStats{
		Total:         len(users),
		WithPolicy:    len(owners),
		WithoutPolicy: len(users) - len(owners),
		Recent:        head(recent, recentCount),
	}
}

func policyStats(policies []model.Policy, users []model.User, now time.Time) PolicyStats {
	st := PolicyStats{Total: len(policies), Renewals: []Renewal{}}
	names := userNames(users)
	windowEnd := now.AddDate(0, 0, renewalWindowD)
	for _, p := range policies {
		if p.Status == model.PolicyActive {
			st.Active++
		}
		st.TotalPremium += float64(p.Premium)

		expiry, ok := utils.ParseTimestamp(p.ExpiryDate)
		if !ok || expiry.Before(now) || expiry.After(windowEnd) {
			continue
		}
		st.Renewals = append(st.Renewals, Renewal{
			ID:           p.ID,
			PolicyNumber: p.PolicyNumber,
			User:         names.lookup(p.UserID),
			ExpiryDate:   p.ExpiryDate,
			Product:      p.Product(),
		})
	}

	recent := append([]model.Policy(nil), policies...)
	repository.SortPoliciesNewestFirst(recent)
	st.Recent = head(recent, recentCount)
	return st
}

func timeOf(s string) time.Time {
	t, _ := utils.ParseTimestamp(s)
	return t
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// head returns at most n leading elements, never nil.
func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	if s == nil {
		return []T{}
	}
	return s
}
