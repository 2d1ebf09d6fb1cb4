package handler

import (
	"strings"

	"github.com/R3gret/TinyBackend-sub000/internal/content/models"
	"github.com/R3gret/TinyBackend-sub000/internal/content/service"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// PostContentRequest is the HTTP request body for POST /content.
type PostContentRequest struct {
	Kind           string   `json:"kind"`
	Title          string   `json:"title"`
	Body           string   `json:"body,omitempty"`
	AgeFilter      string   `json:"age_filter,omitempty"`
	Roles          []string `json:"roles"`
	AttachmentPath string   `json:"attachment_path,omitempty"`
	Broadcast      bool     `json:"broadcast,omitempty"`

	// Parsed values (populated by Validate)
	parsedKind models.Kind
}

// Validate validates and parses the request. Deep validation of the role
// and age filters happens in the service; this catches what can be caught
// without store access.
func (r *PostContentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	kind := models.Kind(strings.TrimSpace(strings.ToLower(r.Kind)))
	if !kind.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown content kind %q", r.Kind)
	}
	r.parsedKind = kind

	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(r.Roles) == 0 {
		return dErrors.New(dErrors.CodeValidation, "roles must target at least one role")
	}
	return nil
}

// ToServiceRequest maps the validated body onto the service's input.
func (r *PostContentRequest) ToServiceRequest() service.PostRequest {
	return service.PostRequest{
		Kind:           r.parsedKind,
		Title:          r.Title,
		Body:           r.Body,
		AgeFilter:      r.AgeFilter,
		Roles:          r.Roles,
		AttachmentPath: r.AttachmentPath,
		Broadcast:      r.Broadcast,
	}
}
