package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/curlben/msuas-server/internal/call"
	"github.com/curlben/msuas-server/internal/chat"
)

// PresenceStore records a user's last announced presence status.
type PresenceStore interface {
	SetPresence(ctx context.Context, userID uint64, status string) error
}

// Router is the single entry point for inbound realtime frames. It
// parses, dispatches by event type and converts every handler failure
// into a single error event on the originating connection; nothing a
// handler does can tear the connection down.
type Router struct {
	registry *Registry
	chats    *chat.Service
	calls    *call.Service
	presence PresenceStore
}

func NewRouter(registry *Registry, chats *chat.Service, calls *call.Service, presence PresenceStore) *Router {
	return &Router{registry: registry, chats: chats, calls: calls, presence: presence}
}

// HandleFrame processes one inbound frame from userID's connection.
// Direct responses (acks) go to conn; counterpart notifications go
// through the registry inside the services.
func (r *Router) HandleFrame(ctx context.Context, userID uint64, conn Conn, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("ws: handler panic user=%d: %v", userID, rec)
			r.sendError(conn, 50001, "internal error")
		}
	}()

	var ev envelope
	if err := json.Unmarshal(data, &ev); err != nil {
		r.sendError(conn, 10001, "invalid json")
		return
	}

	switch ev.Type {
	case "chat_message":
		r.handleChatMessage(ctx, userID, conn, ev)
	case "call_initiate":
		r.handleCallInitiate(ctx, userID, conn, ev)
	case "call_join":
		r.handleCallJoin(ctx, userID, conn, ev)
	case "call_end":
		r.handleCallEnd(ctx, userID, conn, ev)
	case "call_reject":
		r.handleCallReject(ctx, userID, conn, ev)
	case "webrtc_offer", "webrtc_answer", "webrtc_ice_candidate":
		r.handleSignal(userID, ev)
	case "presence_update":
		r.handlePresence(ctx, userID, conn, ev)
	default:
		r.sendError(conn, 10004, "unknown event type")
	}
}

func (r *Router) handleChatMessage(ctx context.Context, userID uint64, conn Conn, ev envelope) {
	m, err := r.chats.SendMessage(ctx, userID, ev.ChatID, ev.Content)
	if err != nil {
		r.sendChatError(conn, err)
		return
	}
	// Direct ack to the sender; the counterpart was already relayed to
	// by the service after the commit.
	r.send(conn, chat.MessageEvent{Type: "chat_message", ChatID: ev.ChatID, Message: m})
}

func (r *Router) handleCallInitiate(ctx context.Context, userID uint64, conn Conn, ev envelope) {
	// A client-supplied callId is ignored; the server is authoritative
	// for room id generation.
	res, err := r.calls.Initiate(ctx, userID, ev.StudentID, ev.SupervisionID)
	if err != nil {
		r.sendCallError(conn, err)
		return
	}
	r.send(conn, gin.H{
		"type":          "call_initiated",
		"callId":        res.CallID,
		"roomId":        res.RoomID,
		"supervisionId": res.SupervisionID,
		"participants":  res.Participants,
		"initiator":     res.Initiator,
	})
}

func (r *Router) handleCallJoin(ctx context.Context, userID uint64, conn Conn, ev envelope) {
	parts, err := r.calls.Join(ctx, userID, ev.CallID)
	if err != nil {
		r.sendCallError(conn, err)
		return
	}
	r.send(conn, gin.H{
		"type":         "call_joined",
		"callId":       ev.CallID,
		"participants": parts,
	})
}

func (r *Router) handleCallEnd(ctx context.Context, userID uint64, conn Conn, ev envelope) {
	if err := r.calls.End(ctx, userID, ev.CallID); err != nil {
		r.sendCallError(conn, err)
		return
	}
	r.send(conn, gin.H{
		"type":   "call_ended",
		"callId": ev.CallID,
	})
}

func (r *Router) handleCallReject(ctx context.Context, userID uint64, conn Conn, ev envelope) {
	if err := r.calls.Reject(ctx, userID, ev.CallID); err != nil {
		r.sendCallError(conn, err)
		return
	}
	r.send(conn, gin.H{
		"type":   "call_rejected",
		"callId": ev.CallID,
	})
}

// handleSignal forwards an offer/answer/candidate verbatim. No
// persistence, no authorization beyond the verified sender identity;
// an offline recipient is a silent no-op.
func (r *Router) handleSignal(userID uint64, ev envelope) {
	r.registry.SendToUser(ev.RecipientID, SignalEvent{
		Type:      ev.Type,
		SenderID:  userID,
		Payload:   ev.Payload,
		CallID:    ev.CallID,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (r *Router) handlePresence(ctx context.Context, userID uint64, conn Conn, ev envelope) {
	if ev.Status == "" {
		r.sendError(conn, 10002, "status is required")
		return
	}
	if r.presence != nil {
		if err := r.presence.SetPresence(ctx, userID, ev.Status); err != nil {
			log.Printf("ws: presence store user=%d: %v", userID, err)
		}
	}
	if ev.RecipientID != 0 {
		r.registry.SendToUser(ev.RecipientID, PresenceEvent{
			Type:      "presence_update",
			SenderID:  userID,
			Status:    ev.Status,
			Timestamp: time.Now().UnixMilli(),
		})
	}
}

func (r *Router) send(conn Conn, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: marshal response: %v", err)
		return
	}
	// A failed write means the connection is gone; the read loop will
	// notice and unregister.
	_ = conn.Send(data)
}

func (r *Router) sendError(conn Conn, code int, msg string) {
	r.send(conn, ErrorEvent{Type: "error", Code: code, Message: msg})
}

func (r *Router) sendChatError(conn Conn, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyContent):
		r.sendError(conn, 10002, "message content is required")
	case errors.Is(err, chat.ErrNotFound):
		r.sendError(conn, 40401, "chat not found")
	case errors.Is(err, chat.ErrForbidden):
		r.sendError(conn, 40301, "not authorized for this chat")
	default:
		r.sendError(conn, 50001, "failed to send message")
	}
}

func (r *Router) sendCallError(conn Conn, err error) {
	switch {
	case errors.Is(err, call.ErrNotFound):
		r.sendError(conn, 40402, "call not found")
	case errors.Is(err, call.ErrForbidden):
		r.sendError(conn, 40302, "not authorized for this call")
	default:
		r.sendError(conn, 50002, "call operation failed")
	}
}
