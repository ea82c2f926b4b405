package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/auth"
	"github.com/curlben/msuas-server/internal/common"
	"github.com/curlben/msuas-server/internal/models"
)

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context, role string) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "email and password required")
		return
	}

	var user models.User
	if err := h.DB.Where("email = ? AND role = ?", req.Email, role).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusBadRequest, 10010, "user does not exist")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusBadRequest, 10011, "incorrect password")
		return
	}

	token, err := auth.SignJWT(user.ID, user.Name, user.Role, h.Cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}

	common.OK(c, gin.H{"token": token, "msg": "Login success!"})
}

func (h *Handler) StudentLogin(c *gin.Context) {
	h.login(c, models.RoleStudent)
}

func (h *Handler) SupervisorLogin(c *gin.Context) {
	h.login(c, models.RoleSupervisor)
}
