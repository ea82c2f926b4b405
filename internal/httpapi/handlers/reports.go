package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/common"
	"github.com/curlben/msuas-server/internal/models"
	"github.com/curlben/msuas-server/internal/report"
)

// GetWeeklyReports generates the week grid for the student's
// attachment period, holidays excluded.
func (h *Handler) GetWeeklyReports(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var internship models.Internship
	if err := h.DB.Where("student_id = ?", uid).First(&internship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusBadRequest, 10008, "internship details not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	var student models.User
	if err := h.DB.First(&student, uid).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	weeks := report.GenerateWeeks(internship.StartDate, internship.EndDate, student.Holidays)
	progress := report.Summarize(weeks, time.Now())

	common.OK(c, gin.H{
		"weeklyReports":  weeks,
		"totalWeeks":     progress.TotalWeeks,
		"weeksCompleted": progress.WeeksCompleted,
		"weeksLeft":      progress.WeeksLeft,
	})
}

type upsertReportReq struct {
	WorkingDays      []models.DateRange `json:"workingDays" binding:"required"`
	Tasks            []string           `json:"tasks"`
	OffDaysOrHoliday []models.DateRange `json:"offDaysOrHoliday"`
	Status           string             `json:"status"`
}

func (h *Handler) CreateOrUpdateReport(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	week, err := strconv.Atoi(c.Param("weekNumber"))
	if err != nil || week <= 0 {
		common.Fail(c, http.StatusBadRequest, 10009, "invalid week number")
		return
	}

	var req upsertReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "please provide all required fields")
		return
	}

	rep, err := h.Reports.FindByStudentWeek(c.Request.Context(), uid, week)
	switch {
	case err == nil:
		rep.WorkingDays = req.WorkingDays
		if req.Tasks != nil {
			rep.Tasks = req.Tasks
		}
		if req.OffDaysOrHoliday != nil {
			rep.OffDaysOrHoliday = req.OffDaysOrHoliday
		}
		if req.Status != "" {
			rep.Status = req.Status
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		status := req.Status
		if status == "" {
			status = report.StatusPendingReview
		}
		tasks := req.Tasks
		if tasks == nil {
			tasks = []string{}
		}
		off := req.OffDaysOrHoliday
		if off == nil {
			off = []models.DateRange{}
		}
		rep = &report.Report{
			StudentID:        uid,
			WeekNumber:       week,
			WorkingDays:      req.WorkingDays,
			Tasks:            tasks,
			OffDaysOrHoliday: off,
			Status:           status,
		}
	default:
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	if err := h.Reports.Save(c.Request.Context(), rep); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{"msg": "Report saved successfully!", "report": rep})
}

type setHolidaysReq struct {
	Holidays []models.DateRange `json:"holidays" binding:"required"`
}

func (h *Handler) SetHolidays(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req setHolidaysReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "please provide a valid list of holidays")
		return
	}

	if err := h.DB.Model(&models.User{}).
		Where("id = ?", uid).
		Update("holidays", req.Holidays).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{"msg": "Holidays updated successfully!"})
}

func (h *Handler) GetSingleReport(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	week, err := strconv.Atoi(c.Param("weekNumber"))
	if err != nil || week <= 0 {
		common.Fail(c, http.StatusBadRequest, 10009, "invalid week number")
		return
	}

	rep, err := h.Reports.FindByStudentWeek(c.Request.Context(), uid, week)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40405, "report not found for the specified week")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, rep)
}
