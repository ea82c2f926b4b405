package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/auth"
	"github.com/curlben/msuas-server/internal/common"
	"github.com/curlben/msuas-server/internal/models"
)

type createStudentReq struct {
	Name       string  `json:"name" binding:"required"`
	Email      string  `json:"email" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	NationalID string  `json:"nationalID" binding:"required"`
	CourseID   *uint64 `json:"courseId"`
	LevelID    *uint64 `json:"levelId"`
	FeeAmount  float64 `json:"feeAmount"`
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var req createStudentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	var cnt int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&cnt).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if cnt > 0 {
		common.Fail(c, http.StatusBadRequest, 10012, "user already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
		return
	}

	fee := models.Fee{IsPaid: false, Amount: req.FeeAmount}
	if err := h.DB.Create(&fee).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		NationalID:   req.NationalID,
		Role:         models.RoleStudent,
		CourseID:     req.CourseID,
		LevelID:      req.LevelID,
		FeeID:        &fee.ID,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10003, "failed to create user (maybe email or national id already exists)")
		return
	}

	common.OK(c, gin.H{"msg": "Student created successfully!", "id": user.ID})
}

type createStaffReq struct {
	Name       string  `json:"name" binding:"required"`
	Email      string  `json:"email" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	NationalID string  `json:"nationalID" binding:"required"`
	Phone      string  `json:"phone"`
	CourseID   *uint64 `json:"courseId"`
}

func (h *Handler) createStaff(c *gin.Context, role, okMsg string) {
	var req createStaffReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	var cnt int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&cnt).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if cnt > 0 {
		common.Fail(c, http.StatusBadRequest, 10012, "user already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		NationalID:   req.NationalID,
		Phone:        req.Phone,
		Role:         role,
		CourseID:     req.CourseID,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10003, "failed to create user (maybe email or national id already exists)")
		return
	}

	common.OK(c, gin.H{"msg": okMsg, "id": user.ID})
}

func (h *Handler) CreateSupervisor(c *gin.Context) {
	h.createStaff(c, models.RoleSupervisor, "Supervisor created successfully!")
}

func (h *Handler) CreateCoordinator(c *gin.Context) {
	h.createStaff(c, models.RoleSuperAdmin, "Coordinator created successfully!")
}

func (h *Handler) GetStudentProfile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var student models.User
	if err := h.DB.Preload("Course").Preload("Level").Preload("Fee").First(&student, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "student not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	degree := "Not specified"
	if student.Course != nil {
		degree = student.Course.Name
	}
	level := "Not specified"
	if student.Level != nil {
		level = student.Level.Name
	}

	feeStatus := gin.H{"status": "Unknown", "balance": 0.0}
	if student.Fee != nil {
		status := "Outstanding"
		balance := student.Fee.Amount
		if student.Fee.IsPaid {
			status = "Fully Paid"
			balance = 0
		}
		feeStatus = gin.H{"status": status, "balance": balance}
	}

	common.OK(c, gin.H{
		"fullName":    student.Name,
		"studentId":   student.NationalID,
		"degree":      degree,
		"degreeLevel": level,
		"feeStatus":   feeStatus,
	})
}

type updateStudentReq struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	NationalID string  `json:"nationalID"`
	CourseID   *uint64 `json:"courseId"`
	LevelID    *uint64 `json:"levelId"`
}

func (h *Handler) UpdateStudentProfile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req updateStudentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	var student models.User
	if err := h.DB.First(&student, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "student not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	if req.Name != "" {
		student.Name = req.Name
	}
	if req.Email != "" {
		student.Email = req.Email
	}
	if req.NationalID != "" {
		student.NationalID = req.NationalID
	}
	if req.CourseID != nil {
		student.CourseID = req.CourseID
	}
	if req.LevelID != nil {
		student.LevelID = req.LevelID
	}

	if err := h.DB.Save(&student).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{"msg": "Profile updated successfully!"})
}

func (h *Handler) GetSupervisorProfile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var supervisor models.User
	if err := h.DB.Preload("Course").First(&supervisor, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "supervisor not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	phone := supervisor.Phone
	if phone == "" {
		phone = "Not provided"
	}
	course := "Not assigned"
	if supervisor.Course != nil {
		course = supervisor.Course.Name
	}

	common.OK(c, gin.H{
		"fullName":       supervisor.Name,
		"supervisorId":   supervisor.NationalID,
		"email":          supervisor.Email,
		"phone":          phone,
		"assignedCourse": course,
	})
}
