package model

// LeadStatus is the triage state of a lead.
type LeadStatus string

const (
	StatusNew         LeadStatus = "New"
	StatusContacted   LeadStatus = "Contacted"
	StatusQuoteShared LeadStatus = "Quote Shared"
	StatusConverted   LeadStatus = "Converted"
	StatusLost        LeadStatus = "Lost"
)

// LeadStatuses lists every accepted status in pipeline order.
var LeadStatuses = []LeadStatus{StatusNew, StatusContacted, StatusQuoteShared, StatusConverted, StatusLost}

// Valid reports whether s is one of LeadStatuses.
func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TagDuplicate marks a lead whose phone matched an earlier lead at capture time.
const TagDuplicate = "Duplicate"

// DefaultLeadSource is used when the capture form does not name its page.
const DefaultLeadSource = "homepage-hero-form"

// Lead is a prospective customer captured by a public form.  It is stored as
// one document in the "leads" collection; the JSON names are the stored
// field names.
type Lead struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name"`
	Phone        string         `json:"phone"`
	Email        string         `json:"email"`
	City         string         `json:"city"`
	ProductType  string         `json:"product_type"`
	ExtraDetails map[string]any `json:"vehicle_details,omitempty"` // product specific answers
	SumInsured   *string        `json:"sum_insured"`
	LeadSource   string         `json:"lead_source"`
	Status       LeadStatus     `json:"status"`
	Tags         []string       `json:"tags"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// HasTag reports whether the lead carries tag.
func (l Lead) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CreatedLead is the creation response: the stored lead plus the dedup verdict.
type CreatedLead struct {
	Lead
	IsDuplicate bool `json:"isDuplicate"`
}

// TimelineEntry is one append-only activity record in leads/<id>/timeline.
type TimelineEntry struct {
	ID          string `json:"id,omitempty"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	By          string `json:"by"`
}

// Timeline actions written by the server.
const (
	ActionLeadCreated   = "Lead Created"
	ActionStatusChanged = "Status Changed"
	ActionNoteAdded     = "Note Added"
)
