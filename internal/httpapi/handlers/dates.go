package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/common"
	"github.com/curlben/msuas-server/internal/models"
)

type dateRangeBody struct {
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

type setDatesReq struct {
	DateRanges []dateRangeBody `json:"dateRanges" binding:"required"`
}

// SetSupervisionDates replaces the coordinator-wide date windows and
// queues a notification job per range.
func (h *Handler) SetSupervisionDates(c *gin.Context) {
	var req setDatesReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.DateRanges) == 0 {
		common.Fail(c, http.StatusBadRequest, 10001, "dateRanges required")
		return
	}
	for _, r := range req.DateRanges {
		if !r.StartDate.Before(r.EndDate) {
			common.Fail(c, http.StatusBadRequest, 10005, "end date must be after start date")
			return
		}
	}

	created := make([]models.SupervisionDate, 0, len(req.DateRanges))
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.SupervisionDate{}).Error; err != nil {
			return err
		}
		for _, r := range req.DateRanges {
			d := models.SupervisionDate{StartTime: r.StartDate, EndTime: r.EndDate}
			if err := tx.Create(&d).Error; err != nil {
				return err
			}
			created = append(created, d)
		}
		return nil
	})
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	if h.Rabbit != nil {
		for _, d := range created {
			if err := h.Rabbit.PublishDateRange(c.Request.Context(), d.StartTime, d.EndTime); err != nil {
				log.Printf("publish date range job: %v", err)
			}
		}
	}

	ranges := make([]gin.H, 0, len(created))
	for _, d := range created {
		ranges = append(ranges, gin.H{"startDate": d.StartTime, "endDate": d.EndTime})
	}
	common.OK(c, gin.H{"dateRanges": ranges})
}

func (h *Handler) GetSupervisionDates(c *gin.Context) {
	var dates []models.SupervisionDate
	if err := h.DB.Order("start_time ASC").Find(&dates).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	out := make([]gin.H, 0, len(dates))
	for _, d := range dates {
		out = append(out, gin.H{"id": d.ID, "startDate": d.StartTime, "endDate": d.EndTime})
	}
	common.OK(c, out)
}

func (h *Handler) UpdateDateRange(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("dateId"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10014, "invalid date id")
		return
	}

	var req dateRangeBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "startDate and endDate required")
		return
	}

	var d models.SupervisionDate
	if err := h.DB.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40408, "date range not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	d.StartTime = req.StartDate
	d.EndTime = req.EndDate
	if err := h.DB.Save(&d).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	if h.Rabbit != nil {
		if err := h.Rabbit.PublishDateRange(c.Request.Context(), d.StartTime, d.EndTime); err != nil {
			log.Printf("publish date range job: %v", err)
		}
	}

	common.OK(c, gin.H{"startDate": d.StartTime, "endDate": d.EndTime})
}

func (h *Handler) DeleteSupervisionDate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("dateId"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10014, "invalid date id")
		return
	}

	res := h.DB.Delete(&models.SupervisionDate{}, id)
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, 40408, "date range not found")
		return
	}

	common.OK(c, gin.H{})
}
