package workspace

import (
	"context"
	"errors"
	"time"
)

var ErrProjectNotFound = errors.New("workspace.project_not_found")

// Project is a tenant-scoped resource. A nil OrganizationID marks a legacy
// project created before organizations existed.
type Project struct {
	ID             int64     `json:"id"`
	OrganizationID *string   `json:"organization_id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProjectStore reads projects on behalf of a user.
type ProjectStore interface {
	ListProjects(ctx context.Context, userID int64) ([]Project, error)
	GetProject(ctx context.Context, userID, id int64) (Project, error)
}
