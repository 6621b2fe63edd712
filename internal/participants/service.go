package participants

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/apperr"
	"github.com/2beens/wodhub/internal/notifications"
	"github.com/2beens/wodhub/internal/telemetry/metrics"
)

//go:generate mockgen -source=$GOFILE -destination=participants_mocks_test.go -package=participants_test

type participantsRepo interface {
	Join(ctx context.Context, programID, userID int, now time.Time, guard func(program ProgramInfo, existing *Participant) error) (ProgramInfo, *Participant, error)
	Decide(ctx context.Context, programID, userID int, now time.Time, decideFn func(program ProgramInfo, existing *Participant, approvedCount int) (Status, error)) (ProgramInfo, *Participant, error)
	Leave(ctx context.Context, programID, userID int, now time.Time, guard func(existing *Participant) error) (*Participant, error)
	List(ctx context.Context, programID int) (ProgramInfo, []Participant, error)
}

type notifier interface {
	Notify(ctx context.Context, n notifications.NewNotification) (*notifications.Notification, error)
}

type Service struct {
	repo           participantsRepo
	notifier       notifier
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(repo participantsRepo, notifier notifier, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		notifier:       notifier,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

var classifyRules = []apperr.Rule{
	{Kind: apperr.KindNotFound, Sentinels: []error{ErrProgramNotFound, ErrNoPendingRequest, ErrParticipationNotFound}},
	{Kind: apperr.KindForbidden, Sentinels: []error{ErrNotCreator}},
	{Kind: apperr.KindConflict, Sentinels: []error{ErrAlreadyPending, ErrAlreadyApproved}},
	{Kind: apperr.KindInvalidState, Sentinels: []error{ErrProgramNotOpen, ErrRejected, ErrAlreadyLeft}},
	{Kind: apperr.KindCapacityExceeded, Sentinels: []error{ErrCapacityExceeded}},
	{Kind: apperr.KindInvalidInput, Sentinels: []error{ErrInvalidAction}},
}

func classify(err error) error {
	return apperr.Classify(err, classifyRules...)
}

func (s *Service) notify(ctx context.Context, n notifications.NewNotification) {
	if _, err := s.notifier.Notify(ctx, n); err != nil {
		log.Errorf("notify user %d [%s]: %s", n.UserID, n.Type, err)
	}
}

// Join files a join request, or re-files one for a user who left earlier.
func (s *Service) Join(ctx context.Context, programID, userID int) (*Participant, error) {
	now := s.now()
	program, joined, err := s.repo.Join(ctx, programID, userID, now, func(program ProgramInfo, existing *Participant) error {
		if !program.acceptsParticipants(now) {
			return ErrProgramNotOpen
		}
		return checkJoin(existing)
	})
	if err != nil {
		return nil, classify(fmt.Errorf("join program %d: %w", programID, err))
	}

	log.Debugf("user %d requested to join program %d", userID, programID)
	s.notify(ctx, notifications.NewNotification{
		UserID:    program.CreatorID,
		ProgramID: &program.ID,
		Type:      notifications.TypeJoinRequest,
		Title:     "New join request",
		Message:   fmt.Sprintf("%s wants to join '%s'.", joined.UserName, program.Title),
	})

	return joined, nil
}

// Decide approves or rejects a pending join request. Approvals never push the
// approved count past max_participants.
func (s *Service) Decide(ctx context.Context, programID, creatorID, targetUserID int, action Action) (*Participant, error) {
	if action != ActionApprove && action != ActionReject {
		return nil, classify(ErrInvalidAction)
	}

	program, decided, err := s.repo.Decide(ctx, programID, targetUserID, s.now(),
		func(program ProgramInfo, existing *Participant, approvedCount int) (Status, error) {
			if program.CreatorID != creatorID {
				return "", ErrNotCreator
			}
			return decide(action, existing, approvedCount, program.MaxParticipants)
		},
	)
	if err != nil {
		return nil, classify(fmt.Errorf("%s user %d in program %d: %w", action, targetUserID, programID, err))
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterParticipationDecisions.WithLabelValues(string(action)).Inc()
	}

	n := notifications.NewNotification{
		UserID:    targetUserID,
		ProgramID: &program.ID,
		Type:      notifications.TypeParticipationApproved,
		Title:     "Join request approved",
		Message:   fmt.Sprintf("You are now a participant of '%s'.", program.Title),
	}
	if decided.Status == StatusRejected {
		n.Type = notifications.TypeParticipationRejected
		n.Title = "Join request rejected"
		n.Message = fmt.Sprintf("Your request to join '%s' was rejected.", program.Title)
	}
	s.notify(ctx, n)

	return decided, nil
}

func (s *Service) Leave(ctx context.Context, programID, userID int) error {
	_, err := s.repo.Leave(ctx, programID, userID, s.now(), checkLeave)
	if err != nil {
		return classify(fmt.Errorf("leave program %d: %w", programID, err))
	}
	log.Debugf("user %d left program %d", userID, programID)
	return nil
}

// List returns every participation row of the program. Only the creator may list them.
// Results summarizes every registration of a program for its creator.
func (s *Service) Results(ctx context.Context, programID, requesterID int) (*ProgramResults, error) {
	program, participants, err := s.repo.List(ctx, programID)
	if err != nil {
		return nil, classify(fmt.Errorf("results of %d: %w", programID, err))
	}
	if program.CreatorID != requesterID {
		return nil, classify(ErrNotCreator)
	}

	res := newProgramResults(program, participants)
	return &res, nil
}

func (s *Service) List(ctx context.Context, programID, requesterID int) (*ParticipantList, error) {
	program, participants, err := s.repo.List(ctx, programID)
	if err != nil {
		return nil, classify(fmt.Errorf("list participants of %d: %w", programID, err))
	}
	if program.CreatorID != requesterID {
		return nil, classify(ErrNotCreator)
	}
	if participants == nil {
		participants = []Participant{}
	}

	return &ParticipantList{
		ProgramID:       program.ID,
		MaxParticipants: program.MaxParticipants,
		Participants:    participants,
		Counts:          countByStatus(participants),
	}, nil
}
