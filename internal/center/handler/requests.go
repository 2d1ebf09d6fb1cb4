package handler

import (
	"strings"

	"github.com/R3gret/TinyBackend-sub000/internal/center/models"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// CreateCenterRequest is the HTTP request body for POST /centers.
type CreateCenterRequest struct {
	Name     string `json:"name"`
	Location struct {
		Region       string `json:"region"`
		Province     string `json:"province"`
		Municipality string `json:"municipality"`
		Barangay     string `json:"barangay"`
	} `json:"location"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateCenterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 128 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 128 characters")
	}

	r.Location.Region = strings.TrimSpace(r.Location.Region)
	r.Location.Province = strings.TrimSpace(r.Location.Province)
	r.Location.Municipality = strings.TrimSpace(r.Location.Municipality)
	r.Location.Barangay = strings.TrimSpace(r.Location.Barangay)
	if r.Location.Province == "" {
		return dErrors.New(dErrors.CodeValidation, "location.province is required")
	}
	if r.Location.Municipality == "" {
		return dErrors.New(dErrors.CodeValidation, "location.municipality is required")
	}

	return nil
}

// ParsedLocation returns the validated location.
func (r *CreateCenterRequest) ParsedLocation() models.Location {
	return models.Location{
		Region:       r.Location.Region,
		Province:     r.Location.Province,
		Municipality: r.Location.Municipality,
		Barangay:     r.Location.Barangay,
	}
}
