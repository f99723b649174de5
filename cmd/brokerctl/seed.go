package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/utils"
)

const seedSource = "manual-seed"

// maxSeedAge bounds how far in the past a seeded lead's created_at falls.
const maxSeedAge = 1_000_000_000 * time.Millisecond

type sampleLead struct {
	name, phone, email, city, product string
	status                            model.LeadStatus
	details                           map[string]any
}

var sampleLeads = []sampleLead{
	{"Rajesh Kumar", "919876543210", "rajesh.k@example.com", "Mumbai", "Health Insurance", model.StatusNew,
		map[string]any{"type": "Family Floater", "sum_insured": "5 Lakhs"}},
	{"Priya Sharma", "919876543211", "priya.s@example.com", "Delhi", "Motor Insurance", model.StatusContacted,
		map[string]any{"regNumber": "DL-01-AB-1234", "make": "Maruti Swift"}},
	{"Amit Patel", "919876543212", "amit.patel@example.com", "Ahmedabad", "Life Insurance", model.StatusQuoteShared,
		map[string]any{"type": "Term Life", "sum_insured": "1 Crore"}},
	{"Sneha Gupta", "919876543213", "sneha.g@example.com", "Bangalore", "Health Insurance", model.StatusConverted,
		map[string]any{"type": "Individual", "sum_insured": "10 Lakhs"}},
	{"Vikram Singh", "919876543214", "vikram.s@example.com", "Jaipur", "Motor Insurance", model.StatusNew,
		map[string]any{"regNumber": "RJ-14-XY-9876", "make": "Hyundai Creta"}},
	{"Anjali Desai", "919876543215", "anjali.d@example.com", "Mumbai", "Life Insurance", model.StatusLost,
		map[string]any{"type": "Endowment", "sum_insured": "25 Lakhs"}},
	{"Rohan Mehta", "919876543216", "rohan.m@example.com", "Pune", "Health Insurance", model.StatusNew,
		map[string]any{"type": "Senior Citizen", "sum_insured": "5 Lakhs"}},
	{"Kavita Reddy", "919876543217", "kavita.r@example.com", "Hyderabad", "Motor Insurance", model.StatusContacted,
		map[string]any{"regNumber": "TS-07-ZZ-5555", "make": "Honda City"}},
	{"Arjun Nair", "919876543218", "arjun.n@example.com", "Kochi", "Life Insurance", model.StatusNew,
		map[string]any{"type": "Term Life", "sum_insured": "2 Crores"}},
	{"Meera Joshi", "919876543219", "meera.j@example.com", "Pune", "Health Insurance", model.StatusQuoteShared,
		map[string]any{"type": "Family Floater", "sum_insured": "15 Lakhs"}},
}

// seededLeads builds count leads from sampleLeads, cycling when count is
// larger than the sample set.  age picks each lead's distance into the past.
func seededLeads(count int, now time.Time, age func() time.Duration) []model.Lead {
	out := make([]model.Lead, 0, count)
	for i := 0; i < count; i++ {
		s := sampleLeads[i%len(sampleLeads)]
		out = append(out, model.Lead{
			Name:         s.name,
			Phone:        s.phone,
			Email:        s.email,
			City:         s.city,
			ProductType:  s.product,
			ExtraDetails: s.details,
			LeadSource:   seedSource,
			Status:       s.status,
			Tags:         []string{"Seeded"},
			CreatedAt:    utils.Timestamp(now.Add(-age())),
			UpdatedAt:    utils.Timestamp(now),
		})
	}
	return out
}

func randomAge() time.Duration { return time.Duration(rand.Int64N(int64(maxSeedAge))) }

func seedLeadsCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed-leads",
		Short: "Insert sample leads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			cmd.Println("Seeding realistic leads...")
			for _, l := range seededLeads(count, time.Now(), randomAge) {
				if _, err := a.leads.Import(cmd.Context(), l); err != nil {
					return err
				}
				cmd.Printf("Added lead: %s\n", l.Name)
			}
			cmd.Printf("Done! Added %d realistic leads.\n", count)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", len(sampleLeads), "number of leads to insert")
	return cmd
}

// seededPolicy is an active, unclaimed health policy expiring a year from now.
func seededPolicy(number string, now time.Time) model.Policy {
	return model.Policy{
		PolicyNumber: number,
		Type:         "Health Insurance",
		Premium:      15000,
		SumInsured:   500000,
		ExpiryDate:   utils.Timestamp(now.AddDate(1, 0, 0)),
		Status:       model.PolicyActive,
		CreatedAt:    utils.Timestamp(now),
	}
}

func seedPolicyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-policy [policyNumber]",
		Short: "Insert an unclaimed policy users can link to their account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := fmt.Sprintf("POL-%d", rand.IntN(10000))
			if len(args) == 1 {
				number = args[0]
			}
			if _, err := a.policies.Import(cmd.Context(), seededPolicy(number, time.Now())); err != nil {
				return err
			}
			cmd.Printf("Created unmapped policy: %s\n", number)
			return nil
		},
	}
}
