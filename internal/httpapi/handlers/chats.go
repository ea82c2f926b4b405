package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/curlben/msuas-server/internal/chat"
	"github.com/curlben/msuas-server/internal/common"
)

func (h *Handler) failChat(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyContent):
		common.Fail(c, http.StatusBadRequest, 10002, "message content is required")
	case errors.Is(err, chat.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "chat not found")
	case errors.Is(err, chat.ErrForbidden):
		common.Fail(c, http.StatusForbidden, 40301, "not authorized to access this chat")
	default:
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}

// GetStudentChat returns the chat of the student's active supervision.
func (h *Handler) GetStudentChat(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	view, err := h.ChatSvc.StudentChat(c.Request.Context(), uid)
	if err != nil {
		h.failChat(c, err)
		return
	}
	common.OK(c, view)
}

// GetSupervisorChats lists the supervisor's chats, most recently
// active first.
func (h *Handler) GetSupervisorChats(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	entries, err := h.ChatSvc.SupervisorChats(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40406, "no active supervisions found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, entries)
}

// GetChatByID also flips the reader's unread messages and notifies the
// original sender which ids were read.
func (h *Handler) GetChatByID(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	chatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10013, "invalid chat id")
		return
	}

	view, err := h.ChatSvc.GetChatByID(c.Request.Context(), uid, chatID)
	if err != nil {
		h.failChat(c, err)
		return
	}
	common.OK(c, view)
}

type sendMessageReq struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	chatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10013, "invalid chat id")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10002, "message content is required")
		return
	}

	m, err := h.ChatSvc.SendMessage(c.Request.Context(), uid, chatID, req.Content)
	if err != nil {
		h.failChat(c, err)
		return
	}
	common.OK(c, m)
}
