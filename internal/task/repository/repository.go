package repository

import (
	"github.com/taskosaur/mailroom/internal/task/domain"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(task *domain.Task) error
	FindByID(id string) (*domain.Task, error)
	FindByProjectAndThreadID(projectID, threadID string) (*domain.Task, error)
	FindRecentThreaded(projectID string, limit int) ([]*domain.Task, error)
}

// CommentRepository defines persistence operations for task comments.
type CommentRepository interface {
	Create(comment *domain.TaskComment) error
	FindByEmailMessageID(messageID string) (*domain.TaskComment, error)
}

// TaskAttachmentRepository defines persistence operations for task attachments.
type TaskAttachmentRepository interface {
	Create(att *domain.TaskAttachment) error
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	FindByID(id string) (*domain.Project, error)
	// AllocateTaskNumber atomically claims the next sequential task number.
	AllocateTaskNumber(projectID string) (int, error)
}

// SprintRepository defines persistence operations for sprints.
type SprintRepository interface {
	FindDefaultByProject(projectID string) (*domain.Sprint, error)
}

// MemberRepository defines membership operations across the three scopes.
type MemberRepository interface {
	FirstProjectMember(projectID string) (*domain.ProjectMember, error)
	IsProjectMember(projectID, userID string) (bool, error)
	// AddViewerMemberships grants viewer-level membership at organization,
	// workspace and project scope, skipping scopes already granted.
	AddViewerMemberships(orgID, workspaceID, projectID, userID string) error
}
