package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/common"
	"github.com/curlben/msuas-server/internal/email"
	"github.com/curlben/msuas-server/internal/models"
	"github.com/curlben/msuas-server/internal/supervision"
)

type setDateReq struct {
	StudentID uint64    `json:"studentId" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
}

// SetSupervisionDate books a session, activates the supervision and
// emails both parties.
func (h *Handler) SetSupervisionDate(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req setDateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "student id and date are required")
		return
	}

	sup, err := h.Supervisions.FindByPair(c.Request.Context(), req.StudentID, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40407, "supervision relationship not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	date := req.Date
	sup.Start = &date
	sup.Status = supervision.StatusActive
	if err := h.Supervisions.Save(c.Request.Context(), sup); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	var student, supervisor models.User
	if err := h.DB.First(&student, req.StudentID).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if err := h.DB.First(&supervisor, uid).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	// Best effort; scheduling succeeds even if the mails bounce.
	go func(smtp email.SMTPConfig, student, supervisor models.User, date time.Time) {
		if err := email.SendSupervisionScheduled(smtp, student.Email, student.Name, supervisor.Name, date, false); err != nil {
			log.Printf("supervision email to student %s failed: %v", student.Email, err)
		}
		if err := email.SendSupervisionScheduled(smtp, supervisor.Email, supervisor.Name, student.Name, date, true); err != nil {
			log.Printf("supervision email to supervisor %s failed: %v", supervisor.Email, err)
		}
	}(h.SMTPSetting, student, supervisor, date)

	common.OK(c, gin.H{
		"msg":         "Supervision date set successfully!",
		"supervision": sup,
	})
}

func (h *Handler) GetSupervisorSupervisions(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sups, err := h.Supervisions.ListForSupervisor(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, sups)
}

func (h *Handler) GetStudentSupervisions(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sups, err := h.Supervisions.ListForStudent(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, sups)
}
