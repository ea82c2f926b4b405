package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/curlben/msuas-server/internal/common"
)

// GetUserPresence returns the last presence status a user announced
// over their realtime connection. Expired or never-set entries read as
// offline.
func (h *Handler) GetUserPresence(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10014, "invalid user id")
		return
	}

	status, err := h.Presence.GetPresence(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "presence lookup failed")
		return
	}

	common.OK(c, gin.H{"userId": id, "status": status})
}
