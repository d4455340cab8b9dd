package usecase

import (
	"fmt"
	"log"
	"strings"
	"time"

	inboxdomain "github.com/taskosaur/mailroom/internal/inbox/domain"
	inboxrepo "github.com/taskosaur/mailroom/internal/inbox/repository"
	"github.com/taskosaur/mailroom/internal/inbox/rules"
	"github.com/taskosaur/mailroom/internal/inbox/thread"
	"github.com/taskosaur/mailroom/internal/task/domain"
	taskrepo "github.com/taskosaur/mailroom/internal/task/repository"
	"github.com/taskosaur/mailroom/pkg/storage"
)

const defaultDueWindow = 7 * 24 * time.Hour

// Materializer turns a persisted inbox message into a task or a comment on
// an existing task. It never deletes tasks.
type Materializer struct {
	tasks       taskrepo.TaskRepository
	comments    taskrepo.CommentRepository
	attachments taskrepo.TaskAttachmentRepository
	projects    taskrepo.ProjectRepository
	sprints     taskrepo.SprintRepository
	members     taskrepo.MemberRepository
	messages    inboxrepo.MessageRepository
	store       storage.BlobStore
	resolver    *AccountResolver
}

// NewMaterializer creates a Materializer.
func NewMaterializer(
	tasks taskrepo.TaskRepository,
	comments taskrepo.CommentRepository,
	attachments taskrepo.TaskAttachmentRepository,
	projects taskrepo.ProjectRepository,
	sprints taskrepo.SprintRepository,
	members taskrepo.MemberRepository,
	messages inboxrepo.MessageRepository,
	store storage.BlobStore,
	resolver *AccountResolver,
) *Materializer {
	return &Materializer{
		tasks:       tasks,
		comments:    comments,
		attachments: attachments,
		projects:    projects,
		sprints:     sprints,
		members:     members,
		messages:    messages,
		store:       store,
		resolver:    resolver,
	}
}

// Result reports what one materialization produced.
type Result struct {
	CreatedTask   bool
	AddedComment  bool
	TaskID        string
}

// Materialize resolves the message to a parent task or creates a new one,
// then marks the message CONVERTED. Callers only invoke this for messages
// that are not IGNORED on inboxes with auto-create enabled.
func (m *Materializer) Materialize(runID string, inbox *inboxdomain.Inbox, msg *inboxdomain.InboxMessage, outcome rules.Outcome) (*Result, error) {
	parent, err := m.findParentTask(runID, inbox, msg)
	if err != nil {
		return nil, err
	}

	reporter := m.resolveAuthor(runID, inbox, msg)

	if parent != nil {
		if err := m.appendComment(parent, msg, reporter); err != nil {
			return nil, err
		}
		m.copyAttachments(runID, msg, parent.ID)
		if err := m.messages.MarkConverted(msg.ID, parent.ID); err != nil {
			return nil, fmt.Errorf("failed to mark message converted: %w", err)
		}
		return &Result{AddedComment: true, TaskID: parent.ID}, nil
	}

	task, err := m.createTask(inbox, msg, outcome, reporter)
	if err != nil {
		return nil, err
	}
	m.copyAttachments(runID, msg, task.ID)
	if err := m.messages.MarkConverted(msg.ID, task.ID); err != nil {
		return nil, fmt.Errorf("failed to mark message converted: %w", err)
	}
	return &Result{CreatedTask: true, TaskID: task.ID}, nil
}

// findParentTask tries, in order: the thread id against same-project tasks,
// the in-reply-to id against comment notifications, and the in-reply-to id
// against already-converted messages (replies arriving in a later sync than
// their parent).
func (m *Materializer) findParentTask(runID string, inbox *inboxdomain.Inbox, msg *inboxdomain.InboxMessage) (*domain.Task, error) {
	if msg.ThreadID != "" {
		task, err := m.tasks.FindByProjectAndThreadID(inbox.ProjectID, msg.ThreadID)
		if err != nil {
			return nil, fmt.Errorf("failed thread lookup: %w", err)
		}
		if task != nil {
			return task, nil
		}
	}

	if msg.InReplyTo != "" {
		comment, err := m.comments.FindByEmailMessageID(msg.InReplyTo)
		if err != nil {
			return nil, fmt.Errorf("failed comment lookup: %w", err)
		}
		if comment != nil {
			task, err := m.tasks.FindByID(comment.TaskID)
			if err != nil {
				return nil, err
			}
			if task != nil {
				return task, nil
			}
		}

		converted, err := m.messages.FindConvertedByMessageID(msg.InReplyTo)
		if err != nil {
			return nil, fmt.Errorf("failed converted-message lookup: %w", err)
		}
		if converted != nil && converted.TaskID != nil {
			task, err := m.tasks.FindByID(*converted.TaskID)
			if err != nil {
				return nil, err
			}
			if task != nil {
				return task, nil
			}
		}

		// A reply that matched nothing falls through to task creation:
		// over-creating a task beats silently dropping a message. Log enough
		// context to diagnose the unmatched thread afterwards.
		recent, _ := m.tasks.FindRecentThreaded(inbox.ProjectID, 5)
		recentThreads := make([]string, 0, len(recent))
		for _, t := range recent {
			recentThreads = append(recentThreads, t.EmailThreadID)
		}
		log.Printf("[Materializer] run=%s unmatched reply message=%s thread=%s inReplyTo=%s references=%q recentThreads=%v",
			runID, msg.MessageID, msg.ThreadID, msg.InReplyTo, msg.References, recentThreads)
	}

	return nil, nil
}

func (m *Materializer) appendComment(task *domain.Task, msg *inboxdomain.InboxMessage, reporter *commentAuthor) error {
	comment := &domain.TaskComment{
		TaskID:         task.ID,
		Content:        commentContent(msg),
		EmailMessageID: msg.MessageID,
		AuthorName:     authorDisplayName(msg),
	}
	if reporter != nil {
		comment.AuthorID = &reporter.id
	}
	if err := m.comments.Create(comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (m *Materializer) createTask(inbox *inboxdomain.Inbox, msg *inboxdomain.InboxMessage, outcome rules.Outcome, reporter *commentAuthor) (*domain.Task, error) {
	project, err := m.projects.FindByID(inbox.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s not found", inbox.ProjectID)
	}

	number, err := m.projects.AllocateTaskNumber(project.ID)
	if err != nil {
		return nil, err
	}

	priority := inbox.DefaultPriority
	if outcome.Priority != "" {
		priority = outcome.Priority
	}

	var assignee *string
	switch {
	case outcome.AssigneeID != "":
		id := outcome.AssigneeID
		assignee = &id
	case inbox.DefaultAssigneeID != nil:
		assignee = inbox.DefaultAssigneeID
	}

	var sprintID *string
	if sprint, err := m.sprints.FindDefaultByProject(project.ID); err == nil && sprint != nil {
		sprintID = &sprint.ID
	}

	now := time.Now()
	due := now.Add(defaultDueWindow)

	title := thread.NormalizeSubject(msg.Subject)
	if title == "" {
		title = "(no subject)"
	}

	task := &domain.Task{
		ProjectID:         project.ID,
		Number:            number,
		Slug:              fmt.Sprintf("%s-%d", project.Slug, number),
		Title:             title,
		Description:       taskDescription(msg),
		Type:              inbox.DefaultTaskType,
		Priority:          domain.Priority(priority),
		Status:            inbox.DefaultStatus,
		AssigneeID:        assignee,
		SprintID:          sprintID,
		Labels:            strings.Join(outcome.Labels, ","),
		StartDate:         &now,
		DueDate:           &due,
		EmailThreadID:     msg.ThreadID,
		AllowEmailReplies: true,
	}
	if reporter != nil {
		task.ReporterID = reporter.id
	}

	if err := m.tasks.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// copyAttachments duplicates the message's stored attachments onto the task.
// Individual copy failures are logged and skipped; the task still completes.
func (m *Materializer) copyAttachments(runID string, msg *inboxdomain.InboxMessage, taskID string) {
	if !msg.HasAttachments {
		return
	}

	atts, err := m.messages.AttachmentsByMessage(msg.ID)
	if err != nil {
		log.Printf("[Materializer] run=%s failed to list attachments for message %s: %v", runID, msg.ID, err)
		return
	}

	for _, att := range atts {
		copied, err := m.store.Copy(att.StorageKey, "tasks/"+taskID)
		if err != nil {
			log.Printf("[Materializer] run=%s failed to copy attachment %s: %v", runID, att.ID, err)
			continue
		}
		taskAtt := &domain.TaskAttachment{
			TaskID:     taskID,
			Filename:   att.Filename,
			MimeType:   att.MimeType,
			Size:       copied.Size,
			StorageKey: copied.Key,
			URL:        copied.URL,
		}
		if err := m.attachments.Create(taskAtt); err != nil {
			log.Printf("[Materializer] run=%s failed to record attachment %s: %v", runID, att.ID, err)
		}
	}
}

type commentAuthor struct {
	id string
}

// resolveAuthor picks the acting user: the sender's resolved account, or the
// first project member as last resort. A nil return means the comment keeps
// only the display name.
func (m *Materializer) resolveAuthor(runID string, inbox *inboxdomain.Inbox, msg *inboxdomain.InboxMessage) *commentAuthor {
	user, err := m.resolver.ResolveReporter(inbox.ProjectID, msg.FromEmail, msg.FromName)
	if err == nil && user != nil {
		return &commentAuthor{id: user.ID}
	}
	if err != nil {
		log.Printf("[Materializer] run=%s could not resolve sender %s: %v", runID, msg.FromEmail, err)
	}

	member, err := m.members.FirstProjectMember(inbox.ProjectID)
	if err != nil || member == nil {
		return nil
	}
	return &commentAuthor{id: member.UserID}
}

func commentContent(msg *inboxdomain.InboxMessage) string {
	if msg.HTML != "" {
		return msg.HTML
	}
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Subject
}

func taskDescription(msg *inboxdomain.InboxMessage) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.HTML
}

func authorDisplayName(msg *inboxdomain.InboxMessage) string {
	if msg.FromName != "" {
		return msg.FromName
	}
	return msg.FromEmail
}
