package handlers

import (
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/common"
	"github.com/curlben/msuas-server/internal/models"
	"github.com/curlben/msuas-server/internal/supervision"
)

type createInternshipReq struct {
	StartDate      time.Time `json:"startDate" binding:"required"`
	EndDate        time.Time `json:"endDate" binding:"required"`
	CompanyName    string    `json:"companyName" binding:"required"`
	CompanyAddress string    `json:"companyAddress" binding:"required"`
	CompanyContact string    `json:"companyContact" binding:"required"`
}

// CreateInternship records the attachment details, pairs the student
// with a randomly assigned supervisor and opens their chat.
func (h *Handler) CreateInternship(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createInternshipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "all fields are required")
		return
	}
	if !req.StartDate.Before(req.EndDate) {
		common.Fail(c, http.StatusBadRequest, 10005, "end date must be after start date")
		return
	}

	var supervisors []models.User
	if err := h.DB.Where("role = ?", models.RoleSupervisor).Find(&supervisors).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if len(supervisors) == 0 {
		common.Fail(c, http.StatusBadRequest, 10006, "no supervisors available")
		return
	}
	assigned := supervisors[rand.Intn(len(supervisors))]

	internship := models.Internship{
		StudentID:      uid,
		SupervisorID:   assigned.ID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		CompanyName:    req.CompanyName,
		CompanyAddress: req.CompanyAddress,
		CompanyContact: req.CompanyContact,
	}
	if err := h.DB.Create(&internship).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10007, "failed to create internship (maybe one already exists)")
		return
	}

	sup := supervision.Supervision{
		StudentID:    uid,
		SupervisorID: assigned.ID,
		Status:       supervision.StatusActive,
	}
	if err := h.Supervisions.Create(c.Request.Context(), &sup); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20006, "failed to create supervision")
		return
	}

	chatRoom, err := h.ChatSvc.CreateForSupervision(c.Request.Context(), sup.ID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20007, "failed to create chat")
		return
	}

	common.OK(c, gin.H{
		"msg":        "Internship created successfully! Chat with supervisor has been created.",
		"internship": internship,
		"chat":       chatRoom,
	})
}

func (h *Handler) GetInternship(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var internship models.Internship
	if err := h.DB.Preload("Student").Preload("Supervisor").
		Where("student_id = ?", uid).
		First(&internship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40403, "no internship found for this student")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, internship)
}

type updateInternshipReq struct {
	CompanyName    string     `json:"companyName"`
	CompanyAddress string     `json:"companyAddress"`
	CompanyContact string     `json:"companyContact"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
}

func (h *Handler) UpdateInternship(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req updateInternshipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	var internship models.Internship
	if err := h.DB.Where("student_id = ?", uid).First(&internship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40403, "internship not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	if req.CompanyName != "" {
		internship.CompanyName = req.CompanyName
	}
	if req.CompanyAddress != "" {
		internship.CompanyAddress = req.CompanyAddress
	}
	if req.CompanyContact != "" {
		internship.CompanyContact = req.CompanyContact
	}
	if req.StartDate != nil {
		internship.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		internship.EndDate = *req.EndDate
	}

	if err := h.DB.Save(&internship).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{"msg": "Internship updated successfully!", "internship": internship})
}

// GetCompaniesAndStudents groups all internships by host company.
func (h *Handler) GetCompaniesAndStudents(c *gin.Context) {
	var internships []models.Internship
	if err := h.DB.Preload("Student").Preload("Supervisor").Find(&internships).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if len(internships) == 0 {
		common.Fail(c, http.StatusNotFound, 40404, "no internships found")
		return
	}

	type studentEntry struct {
		StudentName string    `json:"studentName"`
		StartDate   time.Time `json:"startDate"`
		EndDate     time.Time `json:"endDate"`
	}
	type company struct {
		Name     string         `json:"name"`
		Location string         `json:"location"`
		Students []studentEntry `json:"students"`
	}

	index := make(map[string]*company)
	order := make([]string, 0)
	for _, in := range internships {
		entry, ok := index[in.CompanyName]
		if !ok {
			entry = &company{Name: in.CompanyName, Location: in.CompanyAddress}
			index[in.CompanyName] = entry
			order = append(order, in.CompanyName)
		}
		name := ""
		if in.Student != nil {
			name = in.Student.Name
		}
		entry.Students = append(entry.Students, studentEntry{
			StudentName: name,
			StartDate:   in.StartDate,
			EndDate:     in.EndDate,
		})
	}

	companies := make([]company, 0, len(order))
	for _, name := range order {
		companies = append(companies, *index[name])
	}
	common.OK(c, companies)
}
