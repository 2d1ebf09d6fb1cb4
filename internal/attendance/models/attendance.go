// Package models defines daily attendance records.
package models

import (
	"time"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// Status is a child's attendance state for one day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Record is one child's attendance for one calendar day. One record per
// child per day; re-marking the same day is a conflict, not an overwrite.
type Record struct {
	ChildID  domain.ChildID  `json:"child_id"`
	CenterID domain.CenterID `json:"center_id"`
	Date     time.Time       `json:"date"`
	Status   Status          `json:"status"`
	MarkedBy domain.UserID   `json:"marked_by"`
	MarkedAt time.Time       `json:"marked_at"`
}

// DaySummary is the per-center aggregate a read-only statistical view sees.
// It carries counts only, never child identities.
type DaySummary struct {
	CenterID domain.CenterID `json:"center_id"`
	Date     time.Time       `json:"date"`
	Present  int             `json:"present"`
	Absent   int             `json:"absent"`
	Late     int             `json:"late"`
	Excused  int             `json:"excused"`
}

// NewRecord constructs a record, validating the status and normalizing the
// date to midnight UTC so one calendar day has one canonical key.
func NewRecord(childID domain.ChildID, centerID domain.CenterID, date time.Time, status Status, markedBy domain.UserID, now time.Time) (*Record, error) {
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown attendance status %q", status)
	}
	if childID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "attendance requires a child")
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return &Record{
		ChildID:  childID,
		CenterID: centerID,
		Date:     day,
		Status:   status,
		MarkedBy: markedBy,
		MarkedAt: now,
	}, nil
}
