package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/supervision"
)

var (
	ErrNotFound     = errors.New("chat not found")
	ErrForbidden    = errors.New("not a participant of this chat")
	ErrEmptyContent = errors.New("message content is required")
)

// Notifier pushes an event to every live connection of one user.
// Satisfied by *ws.Registry; offline recipients are a silent no-op.
type Notifier interface {
	SendToUser(userID uint64, event any)
}

type Service struct {
	repo         *Repo
	supervisions *supervision.Repo
	notifier     Notifier
}

func NewService(repo *Repo, supervisions *supervision.Repo, notifier Notifier) *Service {
	return &Service{repo: repo, supervisions: supervisions, notifier: notifier}
}

// MessageEvent is the relay pushed to the counterpart when a message lands.
type MessageEvent struct {
	Type    string   `json:"type"`
	ChatID  uint64   `json:"chatId"`
	Message *Message `json:"message"`
}

// ReadEvent tells the original sender which of their messages were read.
type ReadEvent struct {
	Type       string   `json:"type"`
	ChatID     uint64   `json:"chatId"`
	MessageIDs []uint64 `json:"messageIds"`
	ReaderID   uint64   `json:"readerId"`
}

// CreateForSupervision creates the chat attached to a supervision.
// At most one chat per supervision; the unique index enforces it.
func (s *Service) CreateForSupervision(ctx context.Context, supervisionID uint64) (*Chat, error) {
	c := &Chat{
		SupervisionID: supervisionID,
		LastActivity:  time.Now(),
		Status:        StatusActive,
	}
	if err := s.repo.CreateChat(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SendMessage validates, authorizes, persists and then relays one message.
// The persisted message is returned to the caller as the direct ack; only
// the counterpart is notified through the registry, and only after commit.
func (s *Service) SendMessage(ctx context.Context, senderID, chatID uint64, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	c, err := s.repo.FindChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sup, err := s.supervisions.FindByID(ctx, c.SupervisionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !sup.Participant(senderID) {
		return nil, ErrForbidden
	}

	m := &Message{
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now(),
		IsRead:    false,
	}
	if err := s.repo.AppendMessage(ctx, m); err != nil {
		return nil, err
	}

	s.notifier.SendToUser(sup.Counterpart(senderID), MessageEvent{
		Type:    "chat_message",
		ChatID:  chatID,
		Message: m,
	})
	return m, nil
}

// ChatView is a chat plus its ordered messages.
type ChatView struct {
	Chat     *Chat     `json:"chat"`
	Messages []Message `json:"messages"`
}

// GetChatByID returns the chat for a participant. Any unread messages
// authored by the other participant are flipped to read in one batched
// update, and the original sender is told which ids were read.
func (s *Service) GetChatByID(ctx context.Context, userID, chatID uint64) (*ChatView, error) {
	c, err := s.repo.FindChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sup, err := s.supervisions.FindByID(ctx, c.SupervisionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !sup.Participant(userID) {
		return nil, ErrForbidden
	}

	unread, err := s.repo.UnreadFromOthers(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if len(unread) > 0 {
		ids := make([]uint64, 0, len(unread))
		for _, m := range unread {
			ids = append(ids, m.ID)
		}
		if err := s.repo.MarkMessagesRead(ctx, chatID, ids); err != nil {
			return nil, err
		}
		s.notifier.SendToUser(sup.Counterpart(userID), ReadEvent{
			Type:       "messages_read",
			ChatID:     chatID,
			MessageIDs: ids,
			ReaderID:   userID,
		})
	}

	msgs, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return &ChatView{Chat: c, Messages: msgs}, nil
}

// StudentChat resolves the student's single active supervision and
// returns its chat, marking messages read along the way.
func (s *Service) StudentChat(ctx context.Context, studentID uint64) (*ChatView, error) {
	sup, err := s.supervisions.ActiveForStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c, err := s.repo.FindChatBySupervision(ctx, sup.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetChatByID(ctx, studentID, c.ID)
}

// SupervisorChatEntry is one row of the supervisor's chat list.
type SupervisorChatEntry struct {
	Chat        Chat   `json:"chat"`
	StudentID   uint64 `json:"studentId"`
	StudentName string `json:"studentName"`
}

// SupervisorChats lists chats across all of the supervisor's active
// supervisions, most recently active first.
func (s *Service) SupervisorChats(ctx context.Context, supervisorID uint64) ([]SupervisorChatEntry, error) {
	sups, err := s.supervisions.ActiveForSupervisor(ctx, supervisorID)
	if err != nil {
		return nil, err
	}
	if len(sups) == 0 {
		return nil, ErrNotFound
	}

	ids := make([]uint64, 0, len(sups))
	byID := make(map[uint64]supervision.Supervision, len(sups))
	for _, sv := range sups {
		ids = append(ids, sv.ID)
		byID[sv.ID] = sv
	}

	chats, err := s.repo.ListChatsBySupervisions(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]SupervisorChatEntry, 0, len(chats))
	for _, c := range chats {
		entry := SupervisorChatEntry{Chat: c}
		if sv, ok := byID[c.SupervisionID]; ok {
			entry.StudentID = sv.StudentID
			if sv.Student != nil {
				entry.StudentName = sv.Student.Name
			}
		}
		out = append(out, entry)
	}
	return out, nil
}
