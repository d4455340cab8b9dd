package api

import (
	"github.com/gin-gonic/gin"

	inboxDelivery "github.com/taskosaur/mailroom/internal/inbox/delivery"
	"github.com/taskosaur/mailroom/internal/inbox/usecase"
	"github.com/taskosaur/mailroom/pkg/config"
	"github.com/taskosaur/mailroom/pkg/queue"
)

type Handler struct {
	config       *config.Config
	inboxHandler *inboxDelivery.InboxHandler
}

func NewHandler(cfg *config.Config, runner queue.JobRunner, queries *usecase.Queries) *Handler {
	return &Handler{
		config:       cfg,
		inboxHandler: inboxDelivery.NewInboxHandler(runner, queries),
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.inboxHandler)

	return r.Run(addr)
}
