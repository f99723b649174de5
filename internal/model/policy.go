package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Policy statuses used by the server.  Stored documents may carry others.
const (
	PolicyActive              = "Active"
	PolicyPendingVerification = "Pending Verification"
)

// Policy is an insurance policy, optionally linked to a user by UserID.
// An empty UserID means the policy has not been claimed yet.
type Policy struct {
	ID           string `json:"id,omitempty"`
	UserID       string `json:"userId,omitempty"`
	PolicyNumber string `json:"policyNumber"`
	Type         string `json:"type,omitempty"`
	PolicyType   string `json:"policyType,omitempty"`
	Premium      Amount `json:"premium"`
	SumInsured   Amount `json:"sumInsured"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	Status       string `json:"status"`
	FileName     string `json:"fileName,omitempty"`
	FileURL      string `json:"fileUrl,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UploadedAt   string `json:"uploadedAt,omitempty"`
	VerifiedAt   string `json:"verifiedAt,omitempty"`
}

// Product returns the policy's product label, preferring policyType.
func (p Policy) Product() string {
	if p.PolicyType != "" {
		return p.PolicyType
	}
	return p.Type
}

// PolicyFile describes an uploaded policy document.
type PolicyFile struct {
	Name string // original file name
	URL  string
}

// Amount is a monetary value.  It decodes from a JSON number or a numeric
// string; anything else (null, booleans, garbage, NaN, infinities) decodes
// as 0.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*a = Amount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*a = Amount(f)
			return nil
		}
	}
	*a = 0
	return nil
}
