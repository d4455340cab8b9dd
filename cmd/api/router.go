package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	inboxDelivery "github.com/taskosaur/mailroom/internal/inbox/delivery"
)

func SetupRoutes(r *gin.Engine, inboxHandler *inboxDelivery.InboxHandler) {
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Inbox routes, scoped per project
		projects := api.Group("/projects/:projectId")
		{
			projects.POST("/inbox/sync", inboxHandler.TriggerSync)
			projects.GET("/inbox/messages", inboxHandler.GetMessages)
			projects.GET("/inbox/sync-logs", inboxHandler.GetSyncLogs)
		}
	}
}
