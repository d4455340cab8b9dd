package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskosaur/mailroom/internal/task/domain"
)

type gormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a GORM-based TaskRepository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	return r.db.Create(task).Error
}

func (r *gormTaskRepository) FindByID(id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) FindByProjectAndThreadID(projectID, threadID string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.Where("project_id = ? AND email_thread_id = ?", projectID, threadID).First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) FindRecentThreaded(projectID string, limit int) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("project_id = ? AND email_thread_id <> ''", projectID).
		Order("created_at DESC").Limit(limit).Find(&tasks).Error
	return tasks, err
}

type gormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a GORM-based CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

func (r *gormCommentRepository) Create(comment *domain.TaskComment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()
	return r.db.Create(comment).Error
}

func (r *gormCommentRepository) FindByEmailMessageID(messageID string) (*domain.TaskComment, error) {
	var comment domain.TaskComment
	err := r.db.Where("email_message_id = ?", messageID).First(&comment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

type gormTaskAttachmentRepository struct {
	db *gorm.DB
}

// NewTaskAttachmentRepository creates a GORM-based TaskAttachmentRepository.
func NewTaskAttachmentRepository(db *gorm.DB) TaskAttachmentRepository {
	return &gormTaskAttachmentRepository{db: db}
}

func (r *gormTaskAttachmentRepository) Create(att *domain.TaskAttachment) error {
	if att.ID == "" {
		att.ID = uuid.New().String()
	}
	att.CreatedAt = time.Now()
	return r.db.Create(att).Error
}

type gormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a GORM-based ProjectRepository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) FindByID(id string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.Where("id = ?", id).First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *gormProjectRepository) AllocateTaskNumber(projectID string) (int, error) {
	var allocated int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var project domain.Project
		if err := tx.Where("id = ?", projectID).First(&project).Error; err != nil {
			return err
		}
		allocated = project.NextTaskNumber
		return tx.Model(&domain.Project{}).Where("id = ?", projectID).
			Updates(map[string]interface{}{
				"next_task_number": gorm.Expr("next_task_number + 1"),
				"updated_at":       time.Now(),
			}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate task number: %w", err)
	}
	return allocated, nil
}

type gormSprintRepository struct {
	db *gorm.DB
}

// NewSprintRepository creates a GORM-based SprintRepository.
func NewSprintRepository(db *gorm.DB) SprintRepository {
	return &gormSprintRepository{db: db}
}

func (r *gormSprintRepository) FindDefaultByProject(projectID string) (*domain.Sprint, error) {
	var sprint domain.Sprint
	err := r.db.Where("project_id = ? AND is_default = ?", projectID, true).First(&sprint).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sprint, nil
}

type gormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a GORM-based MemberRepository.
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &gormMemberRepository{db: db}
}

func (r *gormMemberRepository) FirstProjectMember(projectID string) (*domain.ProjectMember, error) {
	var member domain.ProjectMember
	err := r.db.Where("project_id = ?", projectID).Order("created_at ASC").First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *gormMemberRepository) IsProjectMember(projectID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).Count(&count).Error
	return count > 0, err
}

func (r *gormMemberRepository) AddViewerMemberships(orgID, workspaceID, projectID, userID string) error {
	now := time.Now()

	if orgID != "" {
		member := domain.OrganizationMember{
			ID: uuid.New().String(), OrganizationID: orgID, UserID: userID,
			Role: domain.RoleViewer, CreatedAt: now,
		}
		if err := r.db.Where("organization_id = ? AND user_id = ?", orgID, userID).
			FirstOrCreate(&member).Error; err != nil {
			return err
		}
	}
	if workspaceID != "" {
		member := domain.WorkspaceMember{
			ID: uuid.New().String(), WorkspaceID: workspaceID, UserID: userID,
			Role: domain.RoleViewer, CreatedAt: now,
		}
		if err := r.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
			FirstOrCreate(&member).Error; err != nil {
			return err
		}
	}
	member := domain.ProjectMember{
		ID: uuid.New().String(), ProjectID: projectID, UserID: userID,
		Role: domain.RoleViewer, CreatedAt: now,
	}
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		FirstOrCreate(&member).Error
}
