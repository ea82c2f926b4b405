package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/models"
	"github.com/curlben/msuas-server/internal/supervision"
)

type recordingNotifier struct {
	mu     sync.Mutex
	sends  []uint64
	events []any
}

func (n *recordingNotifier) SendToUser(userID uint64, event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, userID)
	n.events = append(n.events, event)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &supervision.Supervision{}, &Chat{}, &Message{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedPair(t *testing.T, db *gorm.DB) (*supervision.Supervision, *Chat) {
	t.Helper()
	student := models.User{Name: "Amina Yusuf", Email: "amina@example.com", NationalID: "S100", Role: models.RoleStudent}
	sup := models.User{Name: "Dr. Okello", Email: "okello@example.com", NationalID: "V200", Role: models.RoleSupervisor}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	if err := db.Create(&sup).Error; err != nil {
		t.Fatalf("seed supervisor: %v", err)
	}

	sv := supervision.Supervision{StudentID: student.ID, SupervisorID: sup.ID, Status: supervision.StatusActive}
	if err := db.Create(&sv).Error; err != nil {
		t.Fatalf("seed supervision: %v", err)
	}
	c := Chat{SupervisionID: sv.ID, LastActivity: time.Now().Add(-time.Hour), Status: StatusActive}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed chat: %v", err)
	}
	return &sv, &c
}

func TestSendMessage_PersistsAndRelaysToCounterpart(t *testing.T) {
	db := openTestDB(t)
	sv, c := seedPair(t, db)

	notifier := &recordingNotifier{}
	svc := NewService(NewRepo(db), supervision.NewRepo(db), notifier)

	before := c.LastActivity

	m, err := svc.SendMessage(context.Background(), sv.StudentID, c.ID, "  hello supervisor  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.ID == 0 {
		t.Fatalf("message not persisted")
	}
	if m.Content != "hello supervisor" {
		t.Fatalf("content not trimmed: %q", m.Content)
	}
	if m.IsRead {
		t.Fatalf("new message must start unread")
	}

	if len(notifier.sends) != 1 || notifier.sends[0] != sv.SupervisorID {
		t.Fatalf("relay targets = %v, want exactly the counterpart %d", notifier.sends, sv.SupervisorID)
	}
	ev, ok := notifier.events[0].(MessageEvent)
	if !ok {
		t.Fatalf("relay event type %T", notifier.events[0])
	}
	if ev.Type != "chat_message" || ev.ChatID != c.ID || ev.Message.ID != m.ID {
		t.Fatalf("unexpected relay event %+v", ev)
	}

	var reloaded Chat
	if err := db.First(&reloaded, c.ID).Error; err != nil {
		t.Fatalf("reload chat: %v", err)
	}
	if !reloaded.LastActivity.After(before) {
		t.Fatalf("lastActivity not bumped")
	}
}

func TestSendMessage_EmptyContentRejected(t *testing.T) {
	db := openTestDB(t)
	sv, c := seedPair(t, db)

	notifier := &recordingNotifier{}
	svc := NewService(NewRepo(db), supervision.NewRepo(db), notifier)

	if _, err := svc.SendMessage(context.Background(), sv.StudentID, c.ID, "   \n\t "); err != ErrEmptyContent {
		t.Fatalf("err = %v, want ErrEmptyContent", err)
	}
	if len(notifier.sends) != 0 {
		t.Fatalf("nothing should be relayed")
	}
}

func TestSendMessage_NonParticipantForbidden(t *testing.T) {
	db := openTestDB(t)
	_, c := seedPair(t, db)

	notifier := &recordingNotifier{}
	svc := NewService(NewRepo(db), supervision.NewRepo(db), notifier)

	if _, err := svc.SendMessage(context.Background(), 9999, c.ID, "hi"); err != ErrForbidden {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	var count int64
	if err := db.Model(&Message{}).Where("chat_id = ?", c.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("forbidden send must not persist, found %d messages", count)
	}
	if len(notifier.sends) != 0 {
		t.Fatalf("forbidden send must not relay")
	}
}

func TestSendMessage_MissingChatNotFound(t *testing.T) {
	db := openTestDB(t)
	sv, _ := seedPair(t, db)

	svc := NewService(NewRepo(db), supervision.NewRepo(db), &recordingNotifier{})

	if _, err := svc.SendMessage(context.Background(), sv.StudentID, 424242, "hi"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSendMessage_ConcurrentSendersAllPersisted(t *testing.T) {
	db := openTestDB(t)
	sv, c := seedPair(t, db)

	svc := NewService(NewRepo(db), supervision.NewRepo(db), &recordingNotifier{})

	const perSide = 10
	var wg sync.WaitGroup
	wg.Add(2)
	for _, sender := range []uint64{sv.StudentID, sv.SupervisorID} {
		go func(id uint64) {
			defer wg.Done()
			for i := 0; i < perSide; i++ {
				if _, err := svc.SendMessage(context.Background(), id, c.ID, fmt.Sprintf("msg %d from %d", i, id)); err != nil {
					t.Errorf("send from %d: %v", id, err)
				}
			}
		}(sender)
	}
	wg.Wait()

	var count int64
	if err := db.Model(&Message{}).Where("chat_id = ?", c.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2*perSide {
		t.Fatalf("persisted %d messages, want %d", count, 2*perSide)
	}
}

func TestGetChatByID_MarksUnreadAndNotifiesSender(t *testing.T) {
	db := openTestDB(t)
	sv, c := seedPair(t, db)

	notifier := &recordingNotifier{}
	svc := NewService(NewRepo(db), supervision.NewRepo(db), notifier)

	repo := NewRepo(db)
	for i := 0; i < 3; i++ {
		m := &Message{ChatID: c.ID, SenderID: sv.SupervisorID, Content: fmt.Sprintf("note %d", i), Timestamp: time.Now()}
		if err := repo.AppendMessage(context.Background(), m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// One of the student's own messages, which reading must not touch.
	own := &Message{ChatID: c.ID, SenderID: sv.StudentID, Content: "mine", Timestamp: time.Now()}
	if err := repo.AppendMessage(context.Background(), own); err != nil {
		t.Fatalf("append own: %v", err)
	}

	view, err := svc.GetChatByID(context.Background(), sv.StudentID, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(view.Messages))
	}

	var unread int64
	if err := db.Model(&Message{}).
		Where("chat_id = ? AND sender_id = ? AND is_read = ?", c.ID, sv.SupervisorID, false).
		Count(&unread).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if unread != 0 {
		t.Fatalf("%d supervisor messages still unread", unread)
	}

	var ownReloaded Message
	if err := db.First(&ownReloaded, own.ID).Error; err != nil {
		t.Fatalf("reload own: %v", err)
	}
	if ownReloaded.IsRead {
		t.Fatalf("reader's own message must stay unread")
	}

	if len(notifier.sends) != 1 || notifier.sends[0] != sv.SupervisorID {
		t.Fatalf("read receipt targets = %v, want %d", notifier.sends, sv.SupervisorID)
	}
	ev, ok := notifier.events[0].(ReadEvent)
	if !ok {
		t.Fatalf("event type %T", notifier.events[0])
	}
	if ev.Type != "messages_read" || len(ev.MessageIDs) != 3 || ev.ReaderID != sv.StudentID {
		t.Fatalf("unexpected read event %+v", ev)
	}

	// A second read finds nothing unread and stays silent.
	notifier.sends = nil
	if _, err := svc.GetChatByID(context.Background(), sv.StudentID, c.ID); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if len(notifier.sends) != 0 {
		t.Fatalf("no receipt expected on a clean read")
	}
}

func TestSupervisorChats_OrderedByActivity(t *testing.T) {
	db := openTestDB(t)

	sup := models.User{Name: "Dr. Okello", Email: "ok2@example.com", NationalID: "V201", Role: models.RoleSupervisor}
	if err := db.Create(&sup).Error; err != nil {
		t.Fatalf("seed supervisor: %v", err)
	}

	now := time.Now()
	var wantFirst uint64
	for i := 0; i < 3; i++ {
		stu := models.User{Name: fmt.Sprintf("Student %d", i), Email: fmt.Sprintf("s%d@example.com", i), NationalID: fmt.Sprintf("S%d", 300+i), Role: models.RoleStudent}
		if err := db.Create(&stu).Error; err != nil {
			t.Fatalf("seed student: %v", err)
		}
		sv := supervision.Supervision{StudentID: stu.ID, SupervisorID: sup.ID, Status: supervision.StatusActive}
		if err := db.Create(&sv).Error; err != nil {
			t.Fatalf("seed supervision: %v", err)
		}
		c := Chat{SupervisionID: sv.ID, LastActivity: now.Add(time.Duration(i) * time.Minute), Status: StatusActive}
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed chat: %v", err)
		}
		if i == 2 {
			wantFirst = c.ID
		}
	}

	svc := NewService(NewRepo(db), supervision.NewRepo(db), &recordingNotifier{})
	entries, err := svc.SupervisorChats(context.Background(), sup.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Chat.ID != wantFirst {
		t.Fatalf("most recently active chat should come first")
	}
	if entries[0].StudentName == "" {
		t.Fatalf("entry missing student name")
	}
}

func TestSupervisorChats_NoneIsNotFound(t *testing.T) {
	db := openTestDB(t)

	svc := NewService(NewRepo(db), supervision.NewRepo(db), &recordingNotifier{})
	if _, err := svc.SupervisorChats(context.Background(), 777); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
