package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the closed set of viewer roles. The zero value is not a valid role.
type Role int

const (
	RoleResident Role = iota + 1
	RoleAdmin
)

// ParseRole parses the wire form of a role ("resident" or "admin").
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "resident":
		return RoleResident, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleResident, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	switch r {
	case RoleResident:
		return "resident"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid role %d", int(r))
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role as text.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot store invalid role %d", int(r))
	}
	return r.String(), nil
}

// Scan reads a role stored as text.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseRole(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case []byte:
		return r.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}

// Viewer is the authenticated actor on whose behalf visibility and relevance
// are evaluated.
type Viewer struct {
	ID   string `json:"user_id"`
	Role Role   `json:"role"`
}

// NewViewer validates and builds a Viewer.
func NewViewer(id string, role Role) (Viewer, error) {
	if strings.TrimSpace(id) == "" {
		return Viewer{}, fmt.Errorf("viewer id is required")
	}
	if !role.Valid() {
		return Viewer{}, fmt.Errorf("invalid viewer role %d", int(role))
	}
	return Viewer{ID: id, Role: role}, nil
}

// Valid reports whether the viewer has an id and a declared role.
func (v Viewer) Valid() bool {
	return v.ID != "" && v.Role.Valid()
}
