package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/insurance-lead-desk/internal/database"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/utils"
)

const policiesCollection = "policies"

// ErrUploadFields is returned by Upload when the type or the file is missing.
var ErrUploadFields = Validation("Type and File are required")

// PolicyRepo manages the "policies" collection.
type PolicyRepo struct {
	Store database.Store
	Now   func() time.Time
	// Number generates policy numbers for uploads.
	Number func() string
}

func NewPolicyRepo(s database.Store) *PolicyRepo {
	return &PolicyRepo{Store: s, Now: time.Now, Number: uploadNumber}
}

// uploadNumber draws UP-<0..99999>.  Numbers are not guaranteed unique.
func uploadNumber() string { return fmt.Sprintf("UP-%d", rand.IntN(100000)) }

// NewPolicy is the body of a direct policy creation.
type NewPolicy struct {
	PolicyNumber string       `json:"policyNumber"`
	Type         string       `json:"type"`
	Premium      model.Amount `json:"premium"`
	ExpiryDate   string       `json:"expiryDate"`
	Status       string       `json:"status"`
}

// VerifyInput is the admin's verification of an uploaded policy.
type VerifyInput struct {
	Premium    model.Amount `json:"premium"`
	SumInsured model.Amount `json:"sumInsured"`
	Status     string       `json:"status"`
}

func (r *PolicyRepo) get(ctx context.Context, id string) (*model.Policy, error) {
	var p model.Policy
	if err := r.Store.Get(ctx, policiesCollection, id, &p); err != nil {
		return nil, notFound(err, "Policy not found")
	}
	p.ID = id
	return &p, nil
}

// ListByUser returns the policies linked to userID in insertion order.
func (r *PolicyRepo) ListByUser(ctx context.Context, userID string) ([]model.Policy, error) {
	docs, err := r.Store.Find(ctx, policiesCollection, database.Query{}.Where("userId", database.Eq, userID))
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return database.DecodeAll[model.Policy](docs)
}

// Create inserts a policy owned by userID.  Status defaults to Active.
func (r *PolicyRepo) Create(ctx context.Context, userID string, in NewPolicy) (*model.Policy, error) {
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = model.PolicyActive
	}
	p := model.Policy{
		UserID:       userID,
		PolicyNumber: strings.TrimSpace(in.PolicyNumber),
		Type:         in.Type,
		Premium:      in.Premium,
		ExpiryDate:   in.ExpiryDate,
		Status:       status,
		CreatedAt:    utils.Timestamp(r.Now()),
	}
	id, err := r.Store.Insert(ctx, policiesCollection, p)
	if err != nil {
		return nil, fmt.Errorf("insert policy: %w", err)
	}
	p.ID = id
	return &p, nil
}

// Import stores p as is.  Policies imported without a UserID are
// unclaimed.
func (r *PolicyRepo) Import(ctx context.Context, p model.Policy) (*model.Policy, error) {
	p.ID = ""
	id, err := r.Store.Insert(ctx, policiesCollection, p)
	if err != nil {
		return nil, fmt.Errorf("import policy: %w", err)
	}
	p.ID = id
	return &p, nil
}

// Claim links the unclaimed policy with policyNumber to userID.
//
// The lookup and the write are separate store calls: two concurrent claims
// of the same unclaimed policy can both succeed, and the last write decides
// the owner.
func (r *PolicyRepo) Claim(ctx context.Context, userID, policyNumber string) (*model.Policy, error) {
	policyNumber = strings.TrimSpace(policyNumber)
	if policyNumber == "" {
		return nil, Validation("Policy number is required")
	}
	docs, err := r.Store.Find(ctx, policiesCollection, database.Query{Limit: 1}.Where("policyNumber", database.Eq, policyNumber))
	if err != nil {
		return nil, fmt.Errorf("find policy: %w", err)
	}
	if len(docs) == 0 {
		return nil, NotFound("Policy not found")
	}
	var p model.Policy
	if err := docs[0].Decode(&p); err != nil {
		return nil, err
	}
	p.ID = docs[0].ID

	switch p.UserID {
	case "":
	case userID:
		return nil, Conflict("Policy is already linked to your account")
	default:
		return nil, Conflict("Policy is already linked to another account")
	}

	if err := r.Store.Merge(ctx, policiesCollection, p.ID, map[string]any{"userId": userID}); err != nil {
		return nil, notFound(err, "Policy not found")
	}
	p.UserID = userID
	return &p, nil
}

// Upload records a customer-uploaded policy document awaiting verification.
// The policy gets a generated number, zero amounts and a one year expiry.
func (r *PolicyRepo) Upload(ctx context.Context, userID, policyType string, file *model.PolicyFile) (*model.Policy, error) {
	policyType = strings.TrimSpace(policyType)
	if policyType == "" || file == nil {
		return nil, ErrUploadFields
	}
	now := r.Now()
	p := model.Policy{
		UserID:       userID,
		PolicyNumber: r.Number(),
		Type:         policyType,
		Status:       model.PolicyPendingVerification,
		ExpiryDate:   utils.Timestamp(now.AddDate(0, 0, 365)),
		FileName:     file.Name,
		FileURL:      file.URL,
		UploadedAt:   utils.Timestamp(now),
	}
	id, err := r.Store.Insert(ctx, policiesCollection, p)
	if err != nil {
		return nil, fmt.Errorf("insert uploaded policy: %w", err)
	}
	p.ID = id
	return &p, nil
}

// Verify sets the verified amounts and status.  Status defaults to Active.
func (r *PolicyRepo) Verify(ctx context.Context, id string, in VerifyInput) (*model.Policy, error) {
	if _, err := r.get(ctx, id); err != nil {
		return nil, err
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = model.PolicyActive
	}
	fields := map[string]any{
		"premium":    in.Premium,
		"sumInsured": in.SumInsured,
		"status":     status,
		"verifiedAt": utils.Timestamp(r.Now()),
	}
	if err := r.Store.Merge(ctx, policiesCollection, id, fields); err != nil {
		return nil, notFound(err, "Policy not found")
	}
	return r.get(ctx, id)
}

// All returns every policy in insertion order.
func (r *PolicyRepo) All(ctx context.Context) ([]model.Policy, error) {
	docs, err := r.Store.Find(ctx, policiesCollection, database.Query{})
	if err != nil {
		return nil, fmt.Errorf("fetch policies: %w", err)
	}
	return database.DecodeAll[model.Policy](docs)
}

// Latest returns up to limit policies, newest first by uploadedAt, falling
// back to createdAt for policies that were never uploaded.
func (r *PolicyRepo) Latest(ctx context.Context, limit int) ([]model.Policy, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	SortPoliciesNewestFirst(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// SortPoliciesNewestFirst orders by uploadedAt, else createdAt, descending.
func SortPoliciesNewestFirst(ps []model.Policy) {
	sort.SliceStable(ps, func(i, j int) bool { return policyTime(ps[i]).After(policyTime(ps[j])) })
}

func policyTime(p model.Policy) time.Time {
	if t, ok := utils.ParseTimestamp(p.UploadedAt); ok {
		return t
	}
	t, _ := utils.ParseTimestamp(p.CreatedAt)
	return t
}
