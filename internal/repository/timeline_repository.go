package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/insurance-lead-desk/internal/database"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
)

func timelinePath(leadID string) string {
	return database.SubCollection(leadsCollection, leadID, "timeline")
}

// ListTimeline returns the lead's activity entries, newest first.
func (r *LeadRepo) ListTimeline(ctx context.Context, leadID string) ([]model.TimelineEntry, error) {
	if _, err := r.Get(ctx, leadID); err != nil {
		return nil, err
	}
	docs, err := r.Store.Find(ctx, timelinePath(leadID), database.Query{OrderBy: "timestamp", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	return database.DecodeAll[model.TimelineEntry](docs)
}

// AddTimelineEntry appends a manual entry.  Action defaults to "Note Added"
// and actor to "Admin".
func (r *LeadRepo) AddTimelineEntry(ctx context.Context, leadID, action, description, actor string) (*model.TimelineEntry, error) {
	if strings.TrimSpace(description) == "" {
		return nil, Validation("Please provide a description")
	}
	if _, err := r.Get(ctx, leadID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(action) == "" {
		action = model.ActionNoteAdded
	}
	if strings.TrimSpace(actor) == "" {
		actor = "Admin"
	}
	return r.appendEntry(ctx, leadID, action, description, actor)
}

func (r *LeadRepo) appendEntry(ctx context.Context, leadID, action, description, actor string) (*model.TimelineEntry, error) {
	e := model.TimelineEntry{
		Action:      action,
		Description: description,
		Timestamp:   r.now(),
		By:          actor,
	}
	id, err := r.Store.Insert(ctx, timelinePath(leadID), e)
	if err != nil {
		return nil, fmt.Errorf("append timeline entry: %w", err)
	}
	e.ID = id
	return &e, nil
}
