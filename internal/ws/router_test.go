package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/call"
	"github.com/curlben/msuas-server/internal/chat"
	"github.com/curlben/msuas-server/internal/models"
	"github.com/curlben/msuas-server/internal/supervision"
)

type memoryPresence struct {
	statuses map[uint64]string
}

func (m *memoryPresence) SetPresence(ctx context.Context, userID uint64, status string) error {
	if m.statuses == nil {
		m.statuses = make(map[uint64]string)
	}
	m.statuses[userID] = status
	return nil
}

type routerFixture struct {
	router     *Router
	registry   *Registry
	presence   *memoryPresence
	student    uint64
	supervisor uint64
	chatID     uint64
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &supervision.Supervision{}, &chat.Chat{}, &chat.Message{}, &call.Call{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

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
	c := chat.Chat{SupervisionID: sv.ID, LastActivity: time.Now(), Status: chat.StatusActive}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed chat: %v", err)
	}

	registry := NewRegistry()
	supRepo := supervision.NewRepo(db)
	chatSvc := chat.NewService(chat.NewRepo(db), supRepo, registry)
	callSvc := call.NewService(call.NewRepo(db), supRepo, registry)
	presence := &memoryPresence{}

	return &routerFixture{
		router:     NewRouter(registry, chatSvc, callSvc, presence),
		registry:   registry,
		presence:   presence,
		student:    student.ID,
		supervisor: sup.ID,
		chatID:     c.ID,
	}
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("frame not json: %v (%s)", err, data)
	}
	return out
}

func TestHandleFrame_MalformedJSON(t *testing.T) {
	f := newRouterFixture(t)
	conn := &fakeConn{}

	f.router.HandleFrame(context.Background(), f.student, conn, []byte("{not json"))

	ev := decode(t, conn.last())
	if ev["type"] != "error" || ev["code"].(float64) != 10001 {
		t.Fatalf("expected error 10001, got %v", ev)
	}
}

func TestHandleFrame_UnknownType(t *testing.T) {
	f := newRouterFixture(t)
	conn := &fakeConn{}

	f.router.HandleFrame(context.Background(), f.student, conn, []byte(`{"type":"teleport"}`))

	ev := decode(t, conn.last())
	if ev["type"] != "error" || ev["code"].(float64) != 10004 {
		t.Fatalf("expected error 10004, got %v", ev)
	}
}

func TestHandleFrame_ChatMessageAckAndRelay(t *testing.T) {
	f := newRouterFixture(t)

	sender := &fakeConn{}
	peer := &fakeConn{}
	f.registry.Register(f.supervisor, peer)

	frame := fmt.Sprintf(`{"type":"chat_message","chatId":%d,"content":"hello"}`, f.chatID)
	f.router.HandleFrame(context.Background(), f.student, sender, []byte(frame))

	ack := decode(t, sender.last())
	if ack["type"] != "chat_message" {
		t.Fatalf("sender ack = %v", ack)
	}
	msg := ack["message"].(map[string]any)
	if msg["content"] != "hello" || msg["isRead"] != false {
		t.Fatalf("ack message = %v", msg)
	}

	if peer.count() != 1 {
		t.Fatalf("counterpart should get exactly one relay, got %d", peer.count())
	}
	relay := decode(t, peer.last())
	if relay["type"] != "chat_message" {
		t.Fatalf("relay = %v", relay)
	}
}

func TestHandleFrame_ChatMessageUnknownChat(t *testing.T) {
	f := newRouterFixture(t)
	conn := &fakeConn{}

	f.router.HandleFrame(context.Background(), f.student, conn, []byte(`{"type":"chat_message","chatId":424242,"content":"x"}`))

	ev := decode(t, conn.last())
	if ev["code"].(float64) != 40401 {
		t.Fatalf("expected 40401, got %v", ev)
	}
}

func TestHandleFrame_ChatMessageEmptyContent(t *testing.T) {
	f := newRouterFixture(t)
	conn := &fakeConn{}

	frame := fmt.Sprintf(`{"type":"chat_message","chatId":%d,"content":"   "}`, f.chatID)
	f.router.HandleFrame(context.Background(), f.student, conn, []byte(frame))

	ev := decode(t, conn.last())
	if ev["code"].(float64) != 10002 {
		t.Fatalf("expected 10002, got %v", ev)
	}
}

func TestHandleFrame_CallInitiateRingsEveryDevice(t *testing.T) {
	f := newRouterFixture(t)

	caller := &fakeConn{}
	phone := &fakeConn{}
	laptop := &fakeConn{}
	f.registry.Register(f.student, phone)
	f.registry.Register(f.student, laptop)

	frame := fmt.Sprintf(`{"type":"call_initiate","studentId":%d,"callId":"client-made-up"}`, f.student)
	f.router.HandleFrame(context.Background(), f.supervisor, caller, []byte(frame))

	ack := decode(t, caller.last())
	if ack["type"] != "call_initiated" {
		t.Fatalf("caller ack = %v", ack)
	}
	roomID := ack["roomId"].(string)
	if roomID == "client-made-up" {
		t.Fatalf("client-supplied call id must be ignored")
	}
	if ack["callId"].(string) != roomID {
		t.Fatalf("callId and roomId must agree in the ack")
	}

	if phone.count() != 1 || laptop.count() != 1 {
		t.Fatalf("both of the student's devices should ring, got %d and %d", phone.count(), laptop.count())
	}
	ring := decode(t, phone.last())
	if ring["type"] != "incoming_call" || ring["callId"].(string) != roomID {
		t.Fatalf("ring = %v", ring)
	}
}

func TestHandleFrame_CallJoinEndLifecycle(t *testing.T) {
	f := newRouterFixture(t)

	caller := &fakeConn{}
	callee := &fakeConn{}
	f.registry.Register(f.supervisor, caller)
	f.registry.Register(f.student, callee)

	frame := fmt.Sprintf(`{"type":"call_initiate","studentId":%d}`, f.student)
	f.router.HandleFrame(context.Background(), f.supervisor, caller, []byte(frame))
	roomID := decode(t, caller.last())["roomId"].(string)

	join := fmt.Sprintf(`{"type":"call_join","callId":%q}`, roomID)
	f.router.HandleFrame(context.Background(), f.student, callee, []byte(join))

	joined := decode(t, callee.last())
	if joined["type"] != "call_joined" {
		t.Fatalf("join ack = %v", joined)
	}
	notified := decode(t, caller.last())
	if notified["type"] != "user_joined" {
		t.Fatalf("caller should hear user_joined, got %v", notified)
	}

	end := fmt.Sprintf(`{"type":"call_end","callId":%q}`, roomID)
	f.router.HandleFrame(context.Background(), f.supervisor, caller, []byte(end))

	if decode(t, caller.last())["type"] != "call_ended" {
		t.Fatalf("end ack missing")
	}
	if decode(t, callee.last())["type"] != "call_ended" {
		t.Fatalf("callee should hear call_ended")
	}

	// Ending again is still a success frame, with nothing relayed.
	calleeFrames := callee.count()
	f.router.HandleFrame(context.Background(), f.supervisor, caller, []byte(end))
	if decode(t, caller.last())["type"] != "call_ended" {
		t.Fatalf("repeat end should still ack")
	}
	if callee.count() != calleeFrames {
		t.Fatalf("repeat end must not notify the counterpart")
	}
}

func TestHandleFrame_CallRejectMissingRoom(t *testing.T) {
	f := newRouterFixture(t)
	conn := &fakeConn{}

	f.router.HandleFrame(context.Background(), f.student, conn, []byte(`{"type":"call_reject","callId":"call-GONE"}`))

	ev := decode(t, conn.last())
	if ev["code"].(float64) != 40402 {
		t.Fatalf("expected 40402, got %v", ev)
	}
}

func TestHandleFrame_SignalForwardedVerbatim(t *testing.T) {
	f := newRouterFixture(t)

	sender := &fakeConn{}
	recipient := &fakeConn{}
	f.registry.Register(f.student, recipient)

	frame := fmt.Sprintf(`{"type":"webrtc_offer","recipientId":%d,"payload":{"sdp":"v=0","type":"offer"}}`, f.student)
	f.router.HandleFrame(context.Background(), f.supervisor, sender, []byte(frame))

	if sender.count() != 0 {
		t.Fatalf("signaling must not be acked, sender got %d frames", sender.count())
	}
	if recipient.count() != 1 {
		t.Fatalf("recipient should get the offer")
	}
	ev := decode(t, recipient.last())
	if ev["type"] != "webrtc_offer" || ev["senderId"].(float64) != float64(f.supervisor) {
		t.Fatalf("signal = %v", ev)
	}
	payload := ev["payload"].(map[string]any)
	if payload["sdp"] != "v=0" {
		t.Fatalf("payload must pass through untouched, got %v", payload)
	}
}

func TestHandleFrame_SignalToOfflineRecipient(t *testing.T) {
	f := newRouterFixture(t)
	sender := &fakeConn{}

	frame := fmt.Sprintf(`{"type":"webrtc_ice_candidate","recipientId":%d,"payload":{"candidate":"c"}}`, f.student)
	f.router.HandleFrame(context.Background(), f.supervisor, sender, []byte(frame))

	if sender.count() != 0 {
		t.Fatalf("offline recipient is a silent no-op, sender got %d frames", sender.count())
	}
}

func TestHandleFrame_PresenceStoredAndRelayed(t *testing.T) {
	f := newRouterFixture(t)

	sender := &fakeConn{}
	peer := &fakeConn{}
	f.registry.Register(f.supervisor, peer)

	frame := fmt.Sprintf(`{"type":"presence_update","status":"online","recipientId":%d}`, f.supervisor)
	f.router.HandleFrame(context.Background(), f.student, sender, []byte(frame))

	if got := f.presence.statuses[f.student]; got != "online" {
		t.Fatalf("presence not stored, got %q", got)
	}
	ev := decode(t, peer.last())
	if ev["type"] != "presence_update" || ev["status"] != "online" {
		t.Fatalf("relay = %v", ev)
	}
}

func TestHandleFrame_PresenceMissingStatus(t *testing.T) {
	f := newRouterFixture(t)
	conn := &fakeConn{}

	f.router.HandleFrame(context.Background(), f.student, conn, []byte(`{"type":"presence_update"}`))

	ev := decode(t, conn.last())
	if ev["code"].(float64) != 10002 {
		t.Fatalf("expected 10002, got %v", ev)
	}
}
