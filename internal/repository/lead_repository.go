package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/insurance-lead-desk/internal/database"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/utils"
)

const leadsCollection = "leads"

// LeadRepo manages the "leads" collection and each lead's timeline.
type LeadRepo struct {
	Store database.Store
	Now   func() time.Time
}

func NewLeadRepo(s database.Store) *LeadRepo { return &LeadRepo{Store: s, Now: time.Now} }

func (r *LeadRepo) now() string { return utils.Timestamp(r.Now()) }

// NewLead is the payload of the public capture form.
type NewLead struct {
	FullName    string         `json:"fullName"`
	Phone       string         `json:"phone"`
	Email       string         `json:"email"`
	City        string         `json:"city"`
	ProductType string         `json:"productType"`
	Details     map[string]any `json:"details"`
	SourcePage  string         `json:"sourcePage"`
}

// Create stores a captured lead.  A lead whose normalized phone matches an
// existing lead is still stored, tagged Duplicate.
//
// The duplicate check and the insert are two separate store calls, so two
// concurrent submissions of the same phone can both be stored untagged.
func (r *LeadRepo) Create(ctx context.Context, in NewLead) (*model.CreatedLead, error) {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Phone) == "" || strings.TrimSpace(in.ProductType) == "" {
		return nil, Validation("Please provide required fields: fullName, phone, productType")
	}
	phone := utils.NormalizePhone(in.Phone)

	existing, err := r.Store.Find(ctx, leadsCollection, database.Query{Limit: 1}.Where("phone", database.Eq, phone))
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	duplicate := len(existing) > 0
	tags := []string{}
	if duplicate {
		tags = []string{model.TagDuplicate}
	}

	source := strings.TrimSpace(in.SourcePage)
	if source == "" {
		source = model.DefaultLeadSource
	}
	now := r.now()
	lead := model.Lead{
		Name:         utils.TitleCase(strings.TrimSpace(in.FullName)),
		Phone:        phone,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		City:         utils.TitleCase(strings.TrimSpace(in.City)),
		ProductType:  in.ProductType,
		ExtraDetails: in.Details,
		SumInsured:   sumInsured(in.Details),
		LeadSource:   source,
		Status:       model.StatusNew,
		Tags:         tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := r.Store.Insert(ctx, leadsCollection, lead)
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	lead.ID = id

	desc := "New lead created via form"
	if duplicate {
		desc = "Lead created (Potential Duplicate)"
	}
	if _, err := r.appendEntry(ctx, id, model.ActionLeadCreated, desc, "System"); err != nil {
		return nil, err
	}
	return &model.CreatedLead{Lead: lead, IsDuplicate: duplicate}, nil
}

// sumInsured lifts details.sum_insured to the top level.  Empty values are
// dropped.
func sumInsured(details map[string]any) *string {
	var s string
	switch v := details["sum_insured"].(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		if v != 0 {
			s = strconv.FormatFloat(v, 'f', -1, 64)
		}
	case nil, bool:
	default:
		s = fmt.Sprint(v)
	}
	if s == "" {
		return nil
	}
	return &s
}

// LeadFilter narrows List.  Status, ProductType, City and the date range are
// evaluated by the store; Search is applied afterwards.
type LeadFilter struct {
	Search      string
	Status      string
	ProductType string
	City        string
	StartDate   string
	EndDate     string
	Page        int
	Limit       int
}

// LeadPage is one page of List results.
type LeadPage struct {
	Leads []model.Lead `json:"leads"`
	Page  int          `json:"page"`
	Pages int          `json:"pages"`
	Total int          `json:"total"`
}

const defaultPageSize = 10

// List returns the filtered leads, paginated in memory.  Page defaults to 1
// and Limit to 10; there is no upper bound on Limit.
func (r *LeadRepo) List(ctx context.Context, f LeadFilter) (*LeadPage, error) {
	q := database.Query{}
	if f.Status != "" {
		q = q.Where("status", database.Eq, f.Status)
	}
	if f.ProductType != "" {
		q = q.Where("product_type", database.Eq, f.ProductType)
	}
	if f.City != "" {
		q = q.Where("city", database.Eq, f.City)
	}
	if f.StartDate != "" {
		q = q.Where("created_at", database.Gte, f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("created_at", database.Lte, f.EndDate)
	}
	docs, err := r.Store.Find(ctx, leadsCollection, q)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	leads, err := database.DecodeAll[model.Lead](docs)
	if err != nil {
		return nil, err
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		matched := leads[:0]
		for _, l := range leads {
			if strings.Contains(strings.ToLower(l.Name), needle) ||
				strings.Contains(strings.ToLower(l.Email), needle) ||
				strings.Contains(l.Phone, needle) {
				matched = append(matched, l)
			}
		}
		leads = matched
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	total := len(leads)
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := total
	if limit < total-start {
		end = start + limit
	}
	return &LeadPage{
		Leads: leads[start:end],
		Page:  page,
		Pages: (total + limit - 1) / limit,
		Total: total,
	}, nil
}

// Get returns the lead with id.
func (r *LeadRepo) Get(ctx context.Context, id string) (*model.Lead, error) {
	var l model.Lead
	if err := r.Store.Get(ctx, leadsCollection, id, &l); err != nil {
		return nil, notFound(err, "Lead not found")
	}
	l.ID = id
	return &l, nil
}

// All returns every lead in insertion order.
func (r *LeadRepo) All(ctx context.Context) ([]model.Lead, error) {
	docs, err := r.Store.Find(ctx, leadsCollection, database.Query{})
	if err != nil {
		return nil, fmt.Errorf("fetch leads: %w", err)
	}
	return database.DecodeAll[model.Lead](docs)
}

// Import stores l as is: no normalization, dedup check or timeline entry.
// It is meant for seeding.
func (r *LeadRepo) Import(ctx context.Context, l model.Lead) (string, error) {
	l.ID = ""
	id, err := r.Store.Insert(ctx, leadsCollection, l)
	if err != nil {
		return "", fmt.Errorf("import lead: %w", err)
	}
	return id, nil
}

// readOnlyLeadFields are accepted in an update body and ignored.
var readOnlyLeadFields = map[string]bool{"id": true, "created_at": true, "updated_at": true, "isDuplicate": true}

// Update merges patch into the lead.  Only known fields are accepted and the
// status must be one of model.LeadStatuses.  A status change is recorded on
// the timeline with actor as its author.
func (r *LeadRepo) Update(ctx context.Context, id string, patch map[string]json.RawMessage, actor string) (*model.Lead, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make(map[string]any, len(patch)+1)
	for _, k := range keys {
		raw := patch[k]
		switch k {
		case "name", "email", "city", "product_type", "lead_source":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, Validation(k + " must be a string")
			}
			fields[k] = s
		case "phone":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, Validation("phone must be a string")
			}
			fields[k] = utils.NormalizePhone(s)
		case "status":
			var s model.LeadStatus
			if err := json.Unmarshal(raw, &s); err != nil || !s.Valid() {
				return nil, Validation("Invalid status: " + strings.Trim(string(raw), `"`))
			}
			fields[k] = s
		case "tags":
			var tags []string
			if err := json.Unmarshal(raw, &tags); err != nil {
				return nil, Validation("tags must be a list of strings")
			}
			if tags == nil {
				tags = []string{}
			}
			fields[k] = tags
		case "vehicle_details":
			var details map[string]any
			if err := json.Unmarshal(raw, &details); err != nil {
				return nil, Validation("vehicle_details must be an object")
			}
			fields[k] = details
		case "sum_insured":
			var s *string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, Validation("sum_insured must be a string")
			}
			fields[k] = s
		default:
			if readOnlyLeadFields[k] {
				continue
			}
			return nil, Validation("Unknown field: " + k)
		}
	}
	fields["updated_at"] = r.now()

	if err := r.Store.Merge(ctx, leadsCollection, id, fields); err != nil {
		return nil, notFound(err, "Lead not found")
	}

	if next, ok := fields["status"].(model.LeadStatus); ok && next != current.Status {
		desc := fmt.Sprintf("Status changed from %s to %s", current.Status, next)
		if _, err := r.appendEntry(ctx, id, model.ActionStatusChanged, desc, actor); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, id)
}
