package models

import "time"

const (
	RoleStudent    = "student"
	RoleSupervisor = "supervisor"
	RoleSuperAdmin = "super-admin"
)

// DateRange is a closed [Start, End] interval, used both for student
// holidays and the coordinator-wide supervision date windows.
type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Reason    string    `json:"reason,omitempty"`
}

type User struct {
	ID           uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string      `gorm:"type:varchar(128);not null" json:"name"`
	NationalID   string      `gorm:"type:varchar(64);uniqueIndex;not null" json:"nationalID"`
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"type:varchar(128);not null" json:"-"`
	Phone        string      `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Role         string      `gorm:"type:varchar(16);index;not null;default:student" json:"role"`
	CourseID     *uint64     `gorm:"index" json:"-"`
	Course       *Course     `json:"course,omitempty"`
	LevelID      *uint64     `gorm:"index" json:"-"`
	Level        *Level      `json:"level,omitempty"`
	FeeID        *uint64     `gorm:"index" json:"-"`
	Fee          *Fee        `json:"fee,omitempty"`
	Holidays     []DateRange `gorm:"serializer:json" json:"holidays,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (User) TableName() string { return "users" }

type Course struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(128);not null" json:"name"`
}

func (Course) TableName() string { return "courses" }

type Level struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(64);not null" json:"name"`
}

func (Level) TableName() string { return "levels" }

type Fee struct {
	ID     uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	IsPaid bool    `gorm:"not null;default:false" json:"isPaid"`
	Amount float64 `gorm:"not null" json:"amount"`
}

func (Fee) TableName() string { return "fees" }

type Internship struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID      uint64    `gorm:"uniqueIndex;not null" json:"-"`
	Student        *User     `json:"student,omitempty"`
	SupervisorID   uint64    `gorm:"index;not null" json:"-"`
	Supervisor     *User     `json:"supervisor,omitempty"`
	StartDate      time.Time `gorm:"not null" json:"startDate"`
	EndDate        time.Time `gorm:"not null" json:"endDate"`
	CompanyName    string    `gorm:"type:varchar(255);not null" json:"companyName"`
	CompanyAddress string    `gorm:"type:varchar(255);not null" json:"companyAddress"`
	CompanyContact string    `gorm:"type:varchar(64);not null" json:"companyContact"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Internship) TableName() string { return "internships" }

// SupervisionDate is one coordinator-published window during which
// on-site supervision visits take place.
type SupervisionDate struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StartTime time.Time `gorm:"not null;index" json:"startTime"`
	EndTime   time.Time `gorm:"not null" json:"endTime"`
	CreatedAt time.Time `json:"created_at"`
}

func (SupervisionDate) TableName() string { return "supervision_dates" }
