package handler

import (
	"strings"
	"time"

	"github.com/R3gret/TinyBackend-sub000/internal/people/service"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// RegisterUserRequest is the HTTP request body for POST /users.
type RegisterUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	CenterID string `json:"center_id,omitempty"`
	Address  string `json:"address,omitempty"`

	// Parsed values (populated by Validate)
	parsedRole     domain.Role
	parsedCenterID *domain.CenterID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}

	role, err := domain.ParseRole(strings.TrimSpace(r.Role))
	if err != nil {
		return err
	}
	r.parsedRole = role

	if r.CenterID != "" {
		centerID, err := domain.ParseCenterID(r.CenterID)
		if err != nil {
			return err
		}
		r.parsedCenterID = &centerID
	}

	r.Address = strings.TrimSpace(r.Address)
	return nil
}

// ToServiceRequest maps the validated body onto the registry's input.
func (r *RegisterUserRequest) ToServiceRequest() service.RegisterUserRequest {
	return service.RegisterUserRequest{
		Username: r.Username,
		Password: r.Password,
		Role:     r.parsedRole,
		CenterID: r.parsedCenterID,
		Address:  r.Address,
	}
}

// ParsedRole returns the validated role.
func (r *RegisterUserRequest) ParsedRole() domain.Role {
	return r.parsedRole
}

// ParsedCenterID returns the validated center, nil when absent.
func (r *RegisterUserRequest) ParsedCenterID() *domain.CenterID {
	return r.parsedCenterID
}

// LoginRequest is the HTTP request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the request.
func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// EnrollChildRequest is the HTTP request body for POST /children.
type EnrollChildRequest struct {
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"`
	CenterID  string `json:"center_id"`

	// Parsed values (populated by Validate)
	parsedBirthdate time.Time
	parsedCenterID  domain.CenterID
}

// Validate validates and parses the request.
func (r *EnrollChildRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}

	birthdate, err := time.Parse(dateLayout, strings.TrimSpace(r.Birthdate))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "birthdate must be formatted YYYY-MM-DD")
	}
	r.parsedBirthdate = birthdate

	centerID, err := domain.ParseCenterID(r.CenterID)
	if err != nil {
		return err
	}
	r.parsedCenterID = centerID
	return nil
}

// ToServiceRequest maps the validated body onto the registry's input.
func (r *EnrollChildRequest) ToServiceRequest() service.EnrollChildRequest {
	return service.EnrollChildRequest{
		Name:      r.Name,
		Birthdate: r.parsedBirthdate,
		CenterID:  r.parsedCenterID,
	}
}

// ParsedCenterID returns the validated center.
func (r *EnrollChildRequest) ParsedCenterID() domain.CenterID {
	return r.parsedCenterID
}

// LinkGuardianRequest is the HTTP request body for POST /guardian-links.
type LinkGuardianRequest struct {
	ParentID string `json:"parent_id"`
	ChildID  string `json:"child_id"`

	// Parsed values (populated by Validate)
	parsedParentID domain.UserID
	parsedChildID  domain.ChildID
}

// Validate validates and parses the request.
func (r *LinkGuardianRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	parentID, err := domain.ParseUserID(r.ParentID)
	if err != nil {
		return err
	}
	r.parsedParentID = parentID

	childID, err := domain.ParseChildID(r.ChildID)
	if err != nil {
		return err
	}
	r.parsedChildID = childID
	return nil
}

// ParsedParentID returns the validated parent account ID.
func (r *LinkGuardianRequest) ParsedParentID() domain.UserID {
	return r.parsedParentID
}

// ParsedChildID returns the validated child ID.
func (r *LinkGuardianRequest) ParsedChildID() domain.ChildID {
	return r.parsedChildID
}
