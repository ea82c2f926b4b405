package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curlben/msuas-server/internal/call"
	"github.com/curlben/msuas-server/internal/common"
)

func (h *Handler) failCall(c *gin.Context, err error) {
	switch {
	case errors.Is(err, call.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40402, "call not found")
	case errors.Is(err, call.ErrForbidden):
		common.Fail(c, http.StatusForbidden, 40302, "not authorized for this call")
	default:
		common.Fail(c, http.StatusInternalServerError, 50002, "call operation failed")
	}
}

type initiateCallReq struct {
	StudentID     uint64 `json:"studentId"`
	SupervisionID uint64 `json:"supervisionId"`
}

// InitiateCall creates the signaling record and rings the callee on
// every connected device.
func (h *Handler) InitiateCall(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req initiateCallReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	res, err := h.CallSvc.Initiate(c.Request.Context(), uid, req.StudentID, req.SupervisionID)
	if err != nil {
		if errors.Is(err, call.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "no active supervision found for this student")
			return
		}
		h.failCall(c, err)
		return
	}

	common.OK(c, res)
}

func (h *Handler) JoinCall(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	parts, err := h.CallSvc.Join(c.Request.Context(), uid, c.Param("callId"))
	if err != nil {
		h.failCall(c, err)
		return
	}

	common.OK(c, gin.H{"callData": gin.H{"participants": parts}})
}

// EndCall is idempotent: ending an unknown room still reports success.
func (h *Handler) EndCall(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	if err := h.CallSvc.End(c.Request.Context(), uid, c.Param("callId")); err != nil {
		h.failCall(c, err)
		return
	}

	common.OK(c, gin.H{"msg": "Call ended successfully"})
}

func (h *Handler) RejectCall(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	if err := h.CallSvc.Reject(c.Request.Context(), uid, c.Param("callId")); err != nil {
		h.failCall(c, err)
		return
	}

	common.OK(c, gin.H{"msg": "Call rejected successfully"})
}
