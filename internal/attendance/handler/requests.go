package handler

import (
	"strings"
	"time"

	"github.com/R3gret/TinyBackend-sub000/internal/attendance/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// MarkRequest is the HTTP request body for POST /attendance.
type MarkRequest struct {
	ChildID string `json:"child_id"`
	Date    string `json:"date"`
	Status  string `json:"status"`

	// Parsed values (populated by Validate)
	parsedChildID domain.ChildID
	parsedDate    time.Time
	parsedStatus  models.Status
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *MarkRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	childID, err := domain.ParseChildID(r.ChildID)
	if err != nil {
		return err
	}
	r.parsedChildID = childID

	date, err := time.Parse(dateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "date must be formatted YYYY-MM-DD")
	}
	r.parsedDate = date

	status := models.Status(strings.TrimSpace(strings.ToLower(r.Status)))
	if !status.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown attendance status %q", r.Status)
	}
	r.parsedStatus = status
	return nil
}

// ParsedChildID returns the validated child ID.
func (r *MarkRequest) ParsedChildID() domain.ChildID { return r.parsedChildID }

// ParsedDate returns the validated calendar day.
func (r *MarkRequest) ParsedDate() time.Time { return r.parsedDate }

// ParsedStatus returns the validated status.
func (r *MarkRequest) ParsedStatus() models.Status { return r.parsedStatus }

// parseDateParam reads a YYYY-MM-DD query parameter.
func parseDateParam(raw, name string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "%s must be formatted YYYY-MM-DD", name)
	}
	return d, nil
}
