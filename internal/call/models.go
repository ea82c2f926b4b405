package call

import "time"

const (
	StatusInitiated = "initiated"
	StatusOngoing   = "ongoing"
	StatusEnded     = "ended"
	StatusRejected  = "rejected"
	StatusMissed    = "missed"
)

// Call is the ephemeral signaling record for one call attempt. The row
// exists only for the duration of signaling; end/reject delete it.
type Call struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement" json:"-"`
	SupervisionID    uint64     `gorm:"index;not null" json:"supervisionId"`
	SupervisorID     uint64     `gorm:"index;not null" json:"supervisorId"`
	StudentID        uint64     `gorm:"index;not null" json:"studentId"`
	RoomID           string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"roomId"`
	Status           string     `gorm:"type:varchar(16);not null;default:initiated" json:"status"`
	SupervisorJoined bool       `gorm:"not null;default:false" json:"supervisorJoined"`
	StudentJoined    bool       `gorm:"not null;default:false" json:"studentJoined"`
	StartTime        *time.Time `json:"startTime,omitempty"`
	EndTime          *time.Time `json:"endTime,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Call) TableName() string { return "calls" }

// Participant reports whether userID belongs to the call.
func (c *Call) Participant(userID uint64) bool {
	return c.SupervisorID == userID || c.StudentID == userID
}

// Counterpart returns the other participant's id relative to userID.
func (c *Call) Counterpart(userID uint64) uint64 {
	if c.SupervisorID == userID {
		return c.StudentID
	}
	return c.SupervisorID
}
