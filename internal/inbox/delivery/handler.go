package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
	"github.com/taskosaur/mailroom/internal/inbox/usecase"
	"github.com/taskosaur/mailroom/pkg/queue"
)

// InboxHandler handles inbox-related HTTP requests
type InboxHandler struct {
	runner  queue.JobRunner
	queries *usecase.Queries
}

// NewInboxHandler creates a new InboxHandler
func NewInboxHandler(runner queue.JobRunner, queries *usecase.Queries) *InboxHandler {
	return &InboxHandler{runner: runner, queries: queries}
}

// TriggerSync runs a sync for the project's inbox and waits for the result
// POST /api/projects/:projectId/inbox/sync
func (h *InboxHandler) TriggerSync(c *gin.Context) {
	projectID := c.Param("projectId")

	job := queue.Job{
		ProjectID: projectID,
		UserID:    c.GetString("userID"),
		Type:      queue.TriggerManual,
	}

	res := h.runner.Submit(c.Request.Context(), job)
	if res.Err != nil {
		if errors.Is(res.Err, queue.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Sync queue is full, try again later"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": res.Err.Error()})
		return
	}

	summary, _ := res.Payload.(*usecase.Summary)
	c.JSON(http.StatusOK, gin.H{
		"project_id":   res.ProjectID,
		"started_at":   res.SyncStartTime,
		"completed_at": res.CompletedAt,
		"summary":      summary,
	})
}

// GetMessages returns the project's ingested messages
// GET /api/projects/:projectId/inbox/messages?limit=50&offset=0
func (h *InboxHandler) GetMessages(c *gin.Context) {
	projectID := c.Param("projectId")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, total, err := h.queries.ListMessages(projectID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if messages == nil {
		messages = []*domain.InboxMessage{}
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    total,
	})
}

// GetSyncLogs returns the project's recent sync runs
// GET /api/projects/:projectId/inbox/sync-logs?limit=20
func (h *InboxHandler) GetSyncLogs(c *gin.Context) {
	projectID := c.Param("projectId")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logs, err := h.queries.ListSyncLogs(projectID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []*domain.SyncLog{}
	}

	c.JSON(http.StatusOK, gin.H{"sync_logs": logs})
}
