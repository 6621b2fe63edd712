package participants

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusLeft     Status = "left"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var (
	ErrProgramNotFound       = errors.New("program not found")
	ErrProgramNotOpen        = errors.New("program is not open for participation")
	ErrAlreadyPending        = errors.New("join request is already pending")
	ErrAlreadyApproved       = errors.New("already an approved participant")
	ErrRejected              = errors.New("join request was rejected")
	ErrNotCreator            = errors.New("only the program creator can do this")
	ErrNoPendingRequest      = errors.New("no pending join request for this user")
	ErrParticipationNotFound = errors.New("not a participant of this program")
	ErrAlreadyLeft           = errors.New("already left this program")
	ErrCapacityExceeded      = errors.New("program is full")
	ErrInvalidAction         = errors.New("action must be approve or reject")
)

type Participant struct {
	ID         int        `json:"id"`
	ProgramID  int        `json:"program_id"`
	UserID     int        `json:"user_id"`
	UserName   string     `json:"user_name"`
	Status     Status     `json:"status"`
	JoinedAt   time.Time  `json:"joined_at"`
	ApprovedAt *time.Time `json:"approved_at"`
	LeftAt     *time.Time `json:"left_at"`
}

// ProgramInfo is the part of a program the ledger needs to decide transitions.
type ProgramInfo struct {
	ID              int
	CreatorID       int
	Title           string
	IsOpen          bool
	ExpiresAt       *time.Time
	MaxParticipants int
}

func (p ProgramInfo) acceptsParticipants(now time.Time) bool {
	return p.IsOpen && (p.ExpiresAt == nil || p.ExpiresAt.After(now))
}

type Counts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Left     int `json:"left"`
}

type ParticipantList struct {
	ProgramID       int           `json:"program_id"`
	MaxParticipants int           `json:"max_participants"`
	Participants    []Participant `json:"participants"`
	Counts          Counts        `json:"counts"`
}

func countByStatus(participants []Participant) Counts {
	var c Counts
	for _, p := range participants {
		switch p.Status {
		case StatusPending:
			c.Pending++
		case StatusApproved:
			c.Approved++
		case StatusRejected:
			c.Rejected++
		case StatusLeft:
			c.Left++
		}
	}
	return c
}

// ResultEntry is one registration in the creator's results view. Approved
// participants count as completed.
type ResultEntry struct {
	UserID       int       `json:"user_id"`
	UserName     string    `json:"user_name"`
	Status       Status    `json:"status"`
	Completed    bool      `json:"completed"`
	RegisteredAt time.Time `json:"registered_at"`
}

type ProgramResults struct {
	ProgramID          int           `json:"program_id"`
	ProgramTitle       string        `json:"program_title"`
	TotalRegistrations int           `json:"total_registrations"`
	CompletedCount     int           `json:"completed_count"`
	Results            []ResultEntry `json:"results"`
}

func newProgramResults(program ProgramInfo, participants []Participant) ProgramResults {
	res := ProgramResults{
		ProgramID:          program.ID,
		ProgramTitle:       program.Title,
		TotalRegistrations: len(participants),
		Results:            make([]ResultEntry, 0, len(participants)),
	}
	for _, p := range participants {
		completed := p.Status == StatusApproved
		if completed {
			res.CompletedCount++
		}
		res.Results = append(res.Results, ResultEntry{
			UserID:       p.UserID,
			UserName:     p.UserName,
			Status:       p.Status,
			Completed:    completed,
			RegisteredAt: p.JoinedAt,
		})
	}
	return res
}

// checkJoin validates a join against the user's existing row, if any.
// A nil error with a non-nil existing row means the row is re-joined.
func checkJoin(existing *Participant) error {
	if existing == nil {
		return nil
	}
	switch existing.Status {
	case StatusPending:
		return ErrAlreadyPending
	case StatusApproved:
		return ErrAlreadyApproved
	case StatusRejected:
		return ErrRejected
	}
	return nil
}

// decide returns the status a pending row moves to.
func decide(action Action, existing *Participant, approvedCount, maxParticipants int) (Status, error) {
	if existing == nil || existing.Status != StatusPending {
		return "", ErrNoPendingRequest
	}
	switch action {
	case ActionApprove:
		if approvedCount >= maxParticipants {
			return "", ErrCapacityExceeded
		}
		return StatusApproved, nil
	case ActionReject:
		return StatusRejected, nil
	}
	return "", ErrInvalidAction
}

func checkLeave(existing *Participant) error {
	if existing == nil {
		return ErrParticipationNotFound
	}
	switch existing.Status {
	case StatusLeft:
		return ErrAlreadyLeft
	case StatusRejected:
		return ErrRejected
	}
	return nil
}
