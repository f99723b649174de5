package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/iliyamo/insurance-lead-desk/internal/database"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
)

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func ts(t time.Time) string { return t.UTC().Format("2006-01-02T15:04:05.000Z") }

func TestConversionRateJSON(t *testing.T) {
	cases := []struct {
		rate ConversionRate
		want string
	}{
		{ConversionRate{}, `0`},
		{ConversionRate{Converted: 3, Total: 10}, `"30.0"`},
		{ConversionRate{Converted: 1, Total: 3}, `"33.3"`},
		{ConversionRate{Converted: 0, Total: 4}, `"0.0"`},
	}
	for _, tc := range cases {
		b, err := json.Marshal(tc.rate)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != tc.want {
			t.Errorf("%+v => %s, want %s", tc.rate, b, tc.want)
		}
	}
}

func TestLeadStats(t *testing.T) {
	var leads []model.Lead
	for i := 0; i < 10; i++ {
		l := model.Lead{
			ID:          fmt.Sprint(i),
			Status:      model.StatusNew,
			ProductType: "Health Insurance",
			City:        "Pune",
			CreatedAt:   ts(now.Add(-time.Duration(i) * 24 * time.Hour)),
		}
		if i < 3 {
			l.Status = model.StatusConverted
		}
		leads = append(leads, l)
	}
	leads[9].ProductType = ""
	leads[8].City = ""
	leads[7].City = "Mumbai"
	leads[6].City = "Mumbai"
	leads[5].Status = ""

	st := leadStats(leads, now)
	if st.Total != 10 || st.Today != 1 {
		t.Errorf("total/today = %d/%d", st.Total, st.Today)
	}
	// created on days 15..6 of May; all in the month.
	if st.Month != 10 {
		t.Errorf("month = %d", st.Month)
	}
	if st.ConversionRate.String() != "30.0" {
		t.Errorf("conversion = %s", st.ConversionRate)
	}
	if st.ByStatus["Converted"] != 3 || st.ByStatus["New"] != 6 || st.ByStatus["Unknown"] != 1 {
		t.Errorf("byStatus = %v", st.ByStatus)
	}
	if st.ByProduct["Other"] != 1 || st.ByProduct["Health Insurance"] != 9 {
		t.Errorf("byProduct = %v", st.ByProduct)
	}
	wantCities := []CityCount{{"Pune", 7}, {"Mumbai", 2}, {"Unknown", 1}}
	if fmt.Sprint(st.TopCities) != fmt.Sprint(wantCities) {
		t.Errorf("topCities = %v", st.TopCities)
	}
	if len(st.Recent) != 5 || st.Recent[0].ID != "0" || st.Recent[4].ID != "4" {
		t.Errorf("recent = %v", st.Recent)
	}
}

func TestLeadStatsEmpty(t *testing.T) {
	st := leadStats(nil, now)
	b, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out["conversionRate"] != 0.0 {
		t.Errorf("conversionRate = %v", out["conversionRate"])
	}
	if recent, ok := out["recent"].([]any); !ok || len(recent) != 0 {
		t.Errorf("recent = %v", out["recent"])
	}
}

func TestTopCitiesLimit(t *testing.T) {
	var leads []model.Lead
	for i, city := range []string{"A", "B", "C", "D", "E", "F", "F"} {
		leads = append(leads, model.Lead{ID: fmt.Sprint(i), City: city})
	}
	st := leadStats(leads, now)
	if len(st.TopCities) != 5 {
		t.Fatalf("topCities = %v", st.TopCities)
	}
	if st.TopCities[0] != (CityCount{"F", 2}) || st.TopCities[1].City != "A" || st.TopCities[4].City != "D" {
		t.Errorf("topCities = %v", st.TopCities)
	}
}

func TestRenewalWindow(t *testing.T) {
	users := []model.User{{ID: "u1", Name: "Asha"}}
	policies := []model.Policy{
		{ID: "past", ExpiryDate: ts(now.Add(-time.Minute)), Status: model.PolicyActive, Premium: 100, UserID: "u1"},
		{ID: "now", ExpiryDate: ts(now), Status: model.PolicyActive, Premium: 200, UserID: "u1", PolicyType: "Motor"},
		{ID: "edge", ExpiryDate: ts(now.AddDate(0, 0, 30)), Type: "Health", UserID: "ghost"},
		{ID: "late", ExpiryDate: ts(now.AddDate(0, 0, 30).Add(time.Second))},
		{ID: "bad", ExpiryDate: "soon"},
	}
	st := policyStats(policies, users, now)
	if st.Total != 5 || st.Active != 2 || st.TotalPremium != 300 {
		t.Errorf("totals = %+v", st)
	}
	if len(st.Renewals) != 2 {
		t.Fatalf("renewals = %+v", st.Renewals)
	}
	if r := st.Renewals[0]; r.ID != "now" || r.User != "Asha" || r.Product != "Motor" {
		t.Errorf("renewal[0] = %+v", r)
	}
	if r := st.Renewals[1]; r.ID != "edge" || r.User != "Unknown" || r.Product != "Health" {
		t.Errorf("renewal[1] = %+v", r)
	}
}

func TestUserStats(t *testing.T) {
	users := []model.User{
		{ID: "a", CreatedAt: ts(now.Add(-time.Hour))},
		{ID: "b", CreatedAt: ts(now)},
		{ID: "c"},
	}
	policies := []model.Policy{{UserID: "a"}, {UserID: "a"}, {UserID: ""}, {UserID: "b"}}
	st := userStats(users, policies)
	if st.Total != 3 || st.WithPolicy != 2 || st.WithoutPolicy != 1 {
		t.Errorf("stats = %+v", st)
	}
	if st.Recent[0].ID != "b" || st.Recent[2].ID != "c" {
		t.Errorf("recent = %+v", st.Recent)
	}
}

func newAdmin(t *testing.T) *AdminService {
	t.Helper()
	s := database.NewMemoryStore()
	clock := func() time.Time { return now }
	l := repository.NewLeadRepo(s)
	l.Now = clock
	u := repository.NewUserRepo(s)
	u.Now = clock
	p := repository.NewPolicyRepo(s)
	p.Now = clock
	return NewAdminService(l, u, p)
}

func TestStatsReadsAllCollections(t *testing.T) {
	ctx := context.Background()
	svc := newAdmin(t)
	if _, err := svc.Leads.Create(ctx, repository.NewLead{FullName: "a", Phone: "9876543210", ProductType: "Health Insurance"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Users.Register(ctx, "u1", "Asha", "asha@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Policies.Create(ctx, "u1", repository.NewPolicy{PolicyNumber: "P-1", Premium: 1500, ExpiryDate: ts(now.AddDate(0, 0, 10))}); err != nil {
		t.Fatal(err)
	}
	st, err := svc.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Leads.Total != 1 || st.Leads.Today != 1 || st.Users.WithPolicy != 1 || st.Policies.TotalPremium != 1500 {
		t.Errorf("stats = %+v", st)
	}
	if len(st.Policies.Renewals) != 1 || st.Policies.Renewals[0].User != "Asha" {
		t.Errorf("renewals = %+v", st.Policies.Renewals)
	}
}

func TestUserDetails(t *testing.T) {
	ctx := context.Background()
	svc := newAdmin(t)
	if _, err := svc.UserDetails(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.Users.Register(ctx, "u1", "Asha", "asha@example.com"); err != nil {
		t.Fatal(err)
	}
	for _, in := range []repository.NewPolicy{
		{PolicyNumber: "P-1", Premium: 1000},
		{PolicyNumber: "P-2", Premium: 500, Status: "Expired"},
	} {
		if _, err := svc.Policies.Create(ctx, "u1", in); err != nil {
			t.Fatal(err)
		}
	}
	d, err := svc.UserDetails(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	want := CustomerStats{TotalPolicies: 2, ActivePolicies: 1, TotalPremium: 1500}
	if d.Stats != want || d.User.Name != "Asha" {
		t.Errorf("details = %+v", d)
	}
}

func TestRecentPoliciesNames(t *testing.T) {
	ctx := context.Background()
	svc := newAdmin(t)
	if _, err := svc.Users.Register(ctx, "u1", "Asha", "asha@example.com"); err != nil {
		t.Fatal(err)
	}
	svc.Policies.Create(ctx, "u1", repository.NewPolicy{PolicyNumber: "P-1"})
	svc.Policies.Create(ctx, "", repository.NewPolicy{PolicyNumber: "P-2"})
	got, err := svc.RecentPolicies(ctx)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]string{}
	for _, p := range got {
		names[p.PolicyNumber] = p.UserName
	}
	if names["P-1"] != "Asha" || names["P-2"] != "Unknown" {
		t.Errorf("names = %v", names)
	}
}
