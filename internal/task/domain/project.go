package domain

import "time"

// Project owns tasks and at most one inbox. NextTaskNumber backs the
// sequential per-project task numbering used for slugs.
type Project struct {
	ID             string `json:"id" gorm:"primaryKey"`
	WorkspaceID    string `json:"workspace_id" gorm:"index"`
	OrganizationID string `json:"organization_id" gorm:"index"`

	Name           string `json:"name" gorm:"not null"`
	Slug           string `json:"slug" gorm:"uniqueIndex"`
	NextTaskNumber int    `json:"next_task_number" gorm:"default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sprint groups tasks inside a project; one sprint may be marked default so
// email-created tasks land in it.
type Sprint struct {
	ID        string `json:"id" gorm:"primaryKey"`
	ProjectID string `json:"project_id" gorm:"index;not null"`

	Name      string `json:"name"`
	IsDefault bool   `json:"is_default" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberRole is a membership role at organization/workspace/project scope.
type MemberRole string

const (
	RoleViewer MemberRole = "VIEWER"
	RoleMember MemberRole = "MEMBER"
	RoleAdmin  MemberRole = "ADMIN"
)

// ProjectMember links a user to a project with a role.
type ProjectMember struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	ProjectID string     `json:"project_id" gorm:"index:idx_project_user;not null"`
	UserID    string     `json:"user_id" gorm:"index:idx_project_user;not null"`
	Role      MemberRole `json:"role" gorm:"default:VIEWER"`
	CreatedAt time.Time  `json:"created_at"`
}

// WorkspaceMember links a user to a workspace with a role.
type WorkspaceMember struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	WorkspaceID string     `json:"workspace_id" gorm:"index:idx_workspace_user;not null"`
	UserID      string     `json:"user_id" gorm:"index:idx_workspace_user;not null"`
	Role        MemberRole `json:"role" gorm:"default:VIEWER"`
	CreatedAt   time.Time  `json:"created_at"`
}

// OrganizationMember links a user to an organization with a role.
type OrganizationMember struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	OrganizationID string     `json:"organization_id" gorm:"index:idx_org_user;not null"`
	UserID         string     `json:"user_id" gorm:"index:idx_org_user;not null"`
	Role           MemberRole `json:"role" gorm:"default:VIEWER"`
	CreatedAt      time.Time  `json:"created_at"`
}
