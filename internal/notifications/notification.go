package notifications

import (
	"errors"
	"time"
)

type Type string

const (
	TypeProgramCreated        Type = "program_created"
	TypeProgramDeleted        Type = "program_deleted"
	TypeJoinRequest           Type = "join_request"
	TypeParticipationApproved Type = "participation_approved"
	TypeParticipationRejected Type = "participation_rejected"
	TypeProgramOpened         Type = "program_opened"
)

const listLimit = 50

var ErrNotificationNotFound = errors.New("notification not found")

type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	ProgramID *int      `json:"program_id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NewNotification struct {
	UserID    int
	ProgramID *int
	Type      Type
	Title     string
	Message   string
}

// Broadcast is an ephemeral event pushed to every connected client. It is never stored.
type Broadcast struct {
	Type      Type   `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	ProgramID *int   `json:"program_id,omitempty"`
}
