package chat

import "time"

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Chat is the single conversation attached to one supervision.
type Chat struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SupervisionID uint64    `gorm:"uniqueIndex;not null" json:"supervisionId"`
	Messages      []Message `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
	LastActivity  time.Time `gorm:"index;not null" json:"lastActivity"`
	Status        string    `gorm:"type:varchar(16);not null;default:active" json:"status"`
}

func (Chat) TableName() string { return "chats" }

type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID    uint64    `gorm:"index;not null" json:"chatId"`
	SenderID  uint64    `gorm:"index;not null" json:"sender"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	IsRead    bool      `gorm:"not null;default:false" json:"isRead"`
}

func (Message) TableName() string { return "chat_messages" }
