package chat

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateChat(ctx context.Context, c *Chat) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repo) FindChatByID(ctx context.Context, id uint64) (*Chat, error) {
	var c Chat
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) FindChatBySupervision(ctx context.Context, supervisionID uint64) (*Chat, error) {
	var c Chat
	if err := r.db.WithContext(ctx).
		Where("supervision_id = ?", supervisionID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChatsBySupervisions returns chats for the given supervisions,
// most recently active first.
func (r *Repo) ListChatsBySupervisions(ctx context.Context, supervisionIDs []uint64) ([]Chat, error) {
	var out []Chat
	if err := r.db.WithContext(ctx).
		Where("supervision_id IN ?", supervisionIDs).
		Order("last_activity DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AppendMessage inserts the message and bumps the chat's lastActivity in
// one transaction, so the relay step only ever sees committed writes.
func (r *Repo) AppendMessage(ctx context.Context, m *Message) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&Chat{}).
			Where("id = ?", m.ChatID).
			Update("last_activity", now).Error
	})
}

// ListMessages returns the chat's messages oldest first.
func (r *Repo) ListMessages(ctx context.Context, chatID uint64) ([]Message, error) {
	var out []Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadFromOthers returns messages in the chat that were authored by
// someone other than readerID and not yet marked read.
func (r *Repo) UnreadFromOthers(ctx context.Context, chatID, readerID uint64) ([]Message, error) {
	var out []Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkMessagesRead flips the given messages to read in a single update.
func (r *Repo) MarkMessagesRead(ctx context.Context, chatID uint64, messageIDs []uint64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&Message{}).
		Where("chat_id = ? AND id IN ?", chatID, messageIDs).
		Update("is_read", true).Error
}
