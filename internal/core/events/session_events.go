package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSessionStarted = "session.login"
	EventTypeSessionEnded   = "session.logout"
	EventTypeSessionExpired = "session.expired"
)

// Reasons carried by SessionEndedEvent.
const (
	EndReasonManual     = "manual"
	EndReasonInactivity = "inactivity"
)

type SessionStartedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	RoleID int    `json:"role_id"`
}

func NewSessionStartedEvent(userID string, roleID int) *SessionStartedEvent {
	return &SessionStartedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionStarted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"role_id": roleID,
			},
		},
		UserID: userID,
		RoleID: roleID,
	}
}

type SessionEndedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

func NewSessionEndedEvent(userID, reason string) *SessionEndedEvent {
	return &SessionEndedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionEnded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"reason":  reason,
			},
		},
		UserID: userID,
		Reason: reason,
	}
}

// SessionExpiredEvent fires when the idle deadline passes, before the operator acknowledges the notice.
type SessionExpiredEvent struct {
	BaseEvent
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func NewSessionExpiredEvent(userID, message string) *SessionExpiredEvent {
	return &SessionExpiredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionExpired,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"message": message,
			},
		},
		UserID:  userID,
		Message: message,
	}
}
