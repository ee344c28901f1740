package domain

import (
	"errors"
	"time"
)

var (
	ErrLevelNotFound      = errors.New("access level not found")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrForbidden          = errors.New("access forbidden")
)

// Access level names seeded at provisioning time. Ranks run from 1 (most
// privileged) to 6 (least privileged).
const (
	LevelMaster      = "MASTER"
	LevelAdmin       = "ADMIN"
	LevelCoordinator = "COORDINATOR"
	LevelInstructor  = "INSTRUCTOR"
	LevelMusician    = "MUSICIAN"
	LevelCandidate   = "CANDIDATE"
)

// AccessLevel is a named privilege tier with a unique total order.
// A numerically lower rank means a more privileged level.
type AccessLevel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Rank        int       `json:"rank"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is a module-scoped capability named "<module>.<action>".
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Module      string    `json:"module"`
	Action      string    `json:"action"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
