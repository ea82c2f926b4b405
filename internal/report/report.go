package report

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/models"
)

const (
	StatusPendingReview = "Pending-Review"
	StatusApproved      = "Approved"
	StatusRejected      = "Rejected"
)

// Report is one student's weekly progress entry.
type Report struct {
	ID               uint64             `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID        uint64             `gorm:"not null;index:uniq_report_student_week,unique,priority:1" json:"studentId"`
	WeekNumber       int                `gorm:"not null;index:uniq_report_student_week,unique,priority:2" json:"weekNumber"`
	WorkingDays      []models.DateRange `gorm:"serializer:json" json:"workingDays"`
	Tasks            []string           `gorm:"serializer:json" json:"tasks"`
	OffDaysOrHoliday []models.DateRange `gorm:"serializer:json" json:"offDaysOrHoliday"`
	Status           string             `gorm:"type:varchar(24);not null;default:Pending-Review" json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func (Report) TableName() string { return "reports" }

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) FindByStudentWeek(ctx context.Context, studentID uint64, week int) (*Report, error) {
	var rep Report
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND week_number = ?", studentID, week).
		First(&rep).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *Repo) Save(ctx context.Context, rep *Report) error {
	return r.db.WithContext(ctx).Save(rep).Error
}
