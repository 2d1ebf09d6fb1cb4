// Package models defines content items and their audience declarations.
package models

import (
	"strings"
	"time"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// Kind classifies a content item.
type Kind string

const (
	KindAnnouncement Kind = "announcement"
	KindClasswork    Kind = "classwork"
	KindActivity     Kind = "activity"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindAnnouncement, KindClasswork, KindActivity:
		return true
	}
	return false
}

// AgeFilterAll matches every child regardless of band.
const AgeFilterAll = "all"

// Item is a posted content item. Immutable once created, except for
// center-scoped deletion. AttachmentPath is an opaque reference into the
// file store; nothing here validates or serves file bytes.
type Item struct {
	ID             domain.ContentID `json:"id"`
	Kind           Kind             `json:"kind"`
	Title          string           `json:"title"`
	Body           string           `json:"body,omitempty"`
	CenterID       *domain.CenterID `json:"center_id,omitempty"`
	AgeFilter      string           `json:"age_filter"`
	RoleFilter     []domain.Role    `json:"role_filter"`
	AttachmentPath string           `json:"attachment_path,omitempty"`
	CreatedBy      domain.UserID    `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Broadcast reports whether the item is bound to no center.
func (i *Item) Broadcast() bool {
	return i.CenterID == nil
}

// NewItem constructs an item, validating invariants: a known kind, a title,
// at least one targeted role, and an age filter (band id or "all").
func NewItem(id domain.ContentID, kind Kind, title, body string, centerID *domain.CenterID,
	ageFilter string, roleFilter []domain.Role, attachmentPath string,
	createdBy domain.UserID, now time.Time) (*Item, error) {

	if !kind.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown content kind %q", kind)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(title) > 256 {
		return nil, dErrors.New(dErrors.CodeValidation, "title must be 256 characters or less")
	}
	if len(roleFilter) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "role filter must target at least one role")
	}
	for _, r := range roleFilter {
		if !r.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeValidation, "unknown role %q in role filter", r)
		}
	}
	ageFilter = strings.TrimSpace(ageFilter)
	if ageFilter == "" {
		ageFilter = AgeFilterAll
	}

	return &Item{
		ID:             id,
		Kind:           kind,
		Title:          title,
		Body:           body,
		CenterID:       centerID,
		AgeFilter:      ageFilter,
		RoleFilter:     roleFilter,
		AttachmentPath: attachmentPath,
		CreatedBy:      createdBy,
		CreatedAt:      now,
	}, nil
}
