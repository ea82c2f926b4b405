package call

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/common"
	"github.com/curlben/msuas-server/internal/supervision"
)

var (
	ErrNotFound  = errors.New("call not found")
	ErrForbidden = errors.New("not authorized for this call")
)

// Notifier pushes an event to every live connection of one user.
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

type PartyInfo struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type Participants struct {
	Supervisor PartyInfo `json:"supervisor"`
	Student    PartyInfo `json:"student"`
}

// IncomingCallEvent rings the callee on every connected device.
type IncomingCallEvent struct {
	Type          string    `json:"type"`
	CallID        string    `json:"callId"`
	SupervisionID uint64    `json:"supervisionId"`
	Caller        PartyInfo `json:"caller"`
}

type UserJoinedEvent struct {
	Type   string `json:"type"`
	CallID string `json:"callId"`
	UserID uint64 `json:"userId"`
}

type CallEndedEvent struct {
	Type    string `json:"type"`
	CallID  string `json:"callId"`
	EndedBy uint64 `json:"endedBy"`
}

type CallRejectedEvent struct {
	Type       string `json:"type"`
	CallID     string `json:"callId"`
	RejectedBy uint64 `json:"rejectedBy"`
}

// InitiateResult is what the caller gets back synchronously.
type InitiateResult struct {
	CallID        string       `json:"callId"`
	RoomID        string       `json:"roomId"`
	SupervisionID uint64       `json:"supervisionId"`
	Participants  Participants `json:"participants"`
	Initiator     string       `json:"initiator"`
}

// newRoomID builds a room token from a ULID: the 48-bit timestamp prefix
// plus 80 random bits make collisions negligible by construction.
func newRoomID() (string, error) {
	id, err := common.NewULID()
	if err != nil {
		return "", err
	}
	return "call-" + id, nil
}

// Initiate verifies an active supervision between the named participants,
// creates the call row and rings the callee.
//
// When supervisionID is given it is authoritative; otherwise the pair
// (studentID, caller-as-supervisor) is looked up, matching the original
// REST entry point where only supervisors dial out.
func (s *Service) Initiate(ctx context.Context, callerID, studentID, supervisionID uint64) (*InitiateResult, error) {
	var sup *supervision.Supervision
	var err error

	if supervisionID != 0 {
		sup, err = s.supervisions.FindByID(ctx, supervisionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if sup.Status != supervision.StatusActive || !sup.Participant(callerID) {
			return nil, ErrNotFound
		}
	} else {
		sup, err = s.supervisions.FindActive(ctx, studentID, callerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	roomID, err := newRoomID()
	if err != nil {
		return nil, fmt.Errorf("generate room id: %w", err)
	}

	c := &Call{
		SupervisionID: sup.ID,
		SupervisorID:  sup.SupervisorID,
		StudentID:     sup.StudentID,
		RoomID:        roomID,
		Status:        StatusInitiated,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	parts, err := s.participants(ctx, c)
	if err != nil {
		return nil, err
	}

	caller := parts.Supervisor
	initiator := "supervisor"
	if callerID == sup.StudentID {
		caller = parts.Student
		initiator = "student"
	}

	s.notifier.SendToUser(sup.Counterpart(callerID), IncomingCallEvent{
		Type:          "incoming_call",
		CallID:        roomID,
		SupervisionID: sup.ID,
		Caller:        caller,
	})

	return &InitiateResult{
		CallID:        roomID,
		RoomID:        roomID,
		SupervisionID: sup.ID,
		Participants:  parts,
		Initiator:     initiator,
	}, nil
}

// Join notifies the other participant that userID entered the room.
// The call row is left as-is: status stays "initiated" and the joined
// flags are untouched, matching observed behavior upstream.
func (s *Service) Join(ctx context.Context, userID uint64, roomID string) (*Participants, error) {
	c, err := s.repo.FindByRoomID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !c.Participant(userID) {
		return nil, ErrForbidden
	}

	s.notifier.SendToUser(c.Counterpart(userID), UserJoinedEvent{
		Type:   "user_joined",
		CallID: roomID,
		UserID: userID,
	})

	parts, err := s.participants(ctx, c)
	if err != nil {
		return nil, err
	}
	return &parts, nil
}

// End tears the call down. A missing room is treated as already ended:
// the caller still gets success and nobody is notified.
func (s *Service) End(ctx context.Context, userID uint64, roomID string) error {
	c, err := s.repo.FindByRoomID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	s.notifier.SendToUser(c.Counterpart(userID), CallEndedEvent{
		Type:    "call_ended",
		CallID:  roomID,
		EndedBy: userID,
	})

	return s.repo.DeleteByRoomID(ctx, roomID)
}

// Reject declines an incoming call and deletes the row.
func (s *Service) Reject(ctx context.Context, userID uint64, roomID string) error {
	c, err := s.repo.FindByRoomID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.notifier.SendToUser(c.Counterpart(userID), CallRejectedEvent{
		Type:       "call_rejected",
		CallID:     roomID,
		RejectedBy: userID,
	})

	return s.repo.DeleteByRoomID(ctx, roomID)
}

func (s *Service) participants(ctx context.Context, c *Call) (Participants, error) {
	var parts Participants
	sup, err := s.repo.FindUser(ctx, c.SupervisorID)
	if err != nil {
		return parts, err
	}
	stu, err := s.repo.FindUser(ctx, c.StudentID)
	if err != nil {
		return parts, err
	}
	parts.Supervisor = PartyInfo{ID: sup.ID, Name: sup.Name}
	parts.Student = PartyInfo{ID: stu.ID, Name: stu.Name}
	return parts, nil
}
