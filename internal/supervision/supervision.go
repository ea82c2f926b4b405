package supervision

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/models"
)

const (
	StatusPending    = "pending"
	StatusActive     = "active"
	StatusCompleted  = "completed"
	StatusTerminated = "terminated"
)

// Supervision is the durable student–supervisor pairing that authorizes
// chat and calls. Unique per (student, supervisor) pair.
type Supervision struct {
	ID           uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID    uint64       `gorm:"not null;index:uniq_supervision_pair,unique,priority:1" json:"studentId"`
	Student      *models.User `json:"student,omitempty"`
	SupervisorID uint64       `gorm:"not null;index:uniq_supervision_pair,unique,priority:2" json:"supervisorId"`
	Supervisor   *models.User `json:"supervisor,omitempty"`
	Start        *time.Time   `json:"start,omitempty"`
	Status       string       `gorm:"type:varchar(16);index;not null;default:pending" json:"status"`
}

func (Supervision) TableName() string { return "supervisions" }

// Participant reports whether userID is the student or the supervisor.
func (s *Supervision) Participant(userID uint64) bool {
	return s.StudentID == userID || s.SupervisorID == userID
}

// Counterpart returns the other participant's id relative to userID.
func (s *Supervision) Counterpart(userID uint64) uint64 {
	if s.StudentID == userID {
		return s.SupervisorID
	}
	return s.StudentID
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, s *Supervision) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repo) Save(ctx context.Context, s *Supervision) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *Repo) FindByID(ctx context.Context, id uint64) (*Supervision, error) {
	var s Supervision
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindActive returns the active supervision between the two users, if any.
func (r *Repo) FindActive(ctx context.Context, studentID, supervisorID uint64) (*Supervision, error) {
	var s Supervision
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND supervisor_id = ? AND status = ?", studentID, supervisorID, StatusActive).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) FindByPair(ctx context.Context, studentID, supervisorID uint64) (*Supervision, error) {
	var s Supervision
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND supervisor_id = ?", studentID, supervisorID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListForSupervisor returns the supervisor's supervisions ordered by start date.
func (r *Repo) ListForSupervisor(ctx context.Context, supervisorID uint64) ([]Supervision, error) {
	var out []Supervision
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("supervisor_id = ?", supervisorID).
		Order("start ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListForStudent(ctx context.Context, studentID uint64) ([]Supervision, error) {
	var out []Supervision
	if err := r.db.WithContext(ctx).
		Preload("Supervisor").
		Where("student_id = ?", studentID).
		Order("start ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveForSupervisor returns only active supervisions, used by the chat list.
func (r *Repo) ActiveForSupervisor(ctx context.Context, supervisorID uint64) ([]Supervision, error) {
	var out []Supervision
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("supervisor_id = ? AND status = ?", supervisorID, StatusActive).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveForStudent returns the student's single active supervision.
func (r *Repo) ActiveForStudent(ctx context.Context, studentID uint64) (*Supervision, error) {
	var s Supervision
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ?", studentID, StatusActive).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
