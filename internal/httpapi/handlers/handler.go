package handlers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/call"
	"github.com/curlben/msuas-server/internal/chat"
	"github.com/curlben/msuas-server/internal/config"
	"github.com/curlben/msuas-server/internal/email"
	"github.com/curlben/msuas-server/internal/httpapi/middleware"
	"github.com/curlben/msuas-server/internal/report"
	"github.com/curlben/msuas-server/internal/supervision"

	"github.com/gin-gonic/gin"
)

// DatePublisher enqueues a supervision-date notification job.
type DatePublisher interface {
	PublishDateRange(ctx context.Context, start, end time.Time) error
}

// PresenceReader reports a user's last announced presence status.
type PresenceReader interface {
	GetPresence(ctx context.Context, userID uint64) (string, error)
}

type Handler struct {
	DB           *gorm.DB
	Cfg          config.Config
	SMTPSetting  email.SMTPConfig
	ChatSvc      *chat.Service
	CallSvc      *call.Service
	Supervisions *supervision.Repo
	Reports      *report.Repo
	Rabbit       DatePublisher
	Presence     PresenceReader
}

func NewHandler(db *gorm.DB, cfg config.Config, chatSvc *chat.Service, callSvc *call.Service, rabbit DatePublisher, presence PresenceReader) *Handler {
	return &Handler{
		DB:  db,
		Cfg: cfg,
		SMTPSetting: email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		},
		ChatSvc:      chatSvc,
		CallSvc:      callSvc,
		Supervisions: supervision.NewRepo(db),
		Reports:      report.NewRepo(db),
		Rabbit:       rabbit,
		Presence:     presence,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(200, gin.H{"message": "pong"})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
