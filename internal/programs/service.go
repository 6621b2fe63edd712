package programs

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/apperr"
	"github.com/2beens/wodhub/internal/notifications"
	"github.com/2beens/wodhub/internal/telemetry/metrics"
)

//go:generate mockgen -source=$GOFILE -destination=programs_mocks_test.go -package=programs_test

type programsRepo interface {
	Create(ctx context.Context, p *Program, now time.Time, guard func(CreatorCounts) error) (*Program, error)
	Publish(ctx context.Context, programID int, now, expiresAt time.Time, guard func(p *Program, counts CreatorCounts) error) (*Program, error)
	Update(ctx context.Context, programID int, fn func(current *Program) (*Program, bool, error)) (*Program, error)
	Delete(ctx context.Context, programID int, guard func(p *Program) error) (*Program, error)
	Get(ctx context.Context, programID, callerID int) (*Program, error)
	ListOpen(ctx context.Context, now time.Time, callerID int) ([]Program, error)
	ListByCreator(ctx context.Context, creatorID int) ([]Program, error)
}

type notifier interface {
	Notify(ctx context.Context, n notifications.NewNotification) (*notifications.Notification, error)
	Broadcast(ctx context.Context, b notifications.Broadcast)
}

type Service struct {
	repo           programsRepo
	notifier       notifier
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(repo programsRepo, notifier notifier, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		notifier:       notifier,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// classify attaches an apperr kind to the package sentinels. Unknown errors stay internal.
var classifyRules = []apperr.Rule{
	{Kind: apperr.KindNotFound, Sentinels: []error{ErrProgramNotFound, ErrCreatorNotFound}},
	{Kind: apperr.KindForbidden, Sentinels: []error{ErrNotCreator}},
	{Kind: apperr.KindInvalidState, Sentinels: []error{ErrAlreadyOpen, ErrProgramOpen}},
	{Kind: apperr.KindQuotaExceeded, Sentinels: []error{ErrTotalQuotaExceeded, ErrOpenQuotaExceeded}},
	{Kind: apperr.KindInvalidInput, Sentinels: []error{
		ErrTitleTooShort,
		ErrInvalidMaxParticipants,
		ErrInvalidWorkoutType,
		ErrInvalidDifficulty,
		ErrImmutableWorkoutType,
		ErrImmutableDifficulty,
		ErrInvalidSpec,
		ErrUnknownExercise,
	}},
}

func classify(err error) error {
	return apperr.Classify(err, classifyRules...)
}

func (s *Service) notify(ctx context.Context, n notifications.NewNotification) {
	if _, err := s.notifier.Notify(ctx, n); err != nil {
		log.Errorf("notify user %d [%s]: %s", n.UserID, n.Type, err)
	}
}

func (s *Service) Create(ctx context.Context, creatorID int, req CreateRequest) (*Program, error) {
	p, err := newProgram(creatorID, req)
	if err != nil {
		return nil, classify(err)
	}

	created, err := s.repo.Create(ctx, p, s.now(), checkCreateQuota)
	if err != nil {
		return nil, classify(fmt.Errorf("create program: %w", err))
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterProgramsCreated.Inc()
	}
	log.Debugf("program %d created by user %d", created.ID, creatorID)

	s.notify(ctx, notifications.NewNotification{
		UserID:    creatorID,
		ProgramID: &created.ID,
		Type:      notifications.TypeProgramCreated,
		Title:     "Program created",
		Message:   fmt.Sprintf("Your program '%s' was created.", created.Title),
	})

	return created, nil
}

func (s *Service) Publish(ctx context.Context, programID, requesterID int) (*Program, error) {
	now := s.now()
	published, err := s.repo.Publish(ctx, programID, now, now.Add(OpenDuration), func(p *Program, counts CreatorCounts) error {
		if p.CreatorID != requesterID {
			return ErrNotCreator
		}
		// an expired program is renewed for another window, under the same quota
		if p.IsActive(now) {
			return ErrAlreadyOpen
		}
		return checkPublishQuota(counts)
	})
	if err != nil {
		return nil, classify(fmt.Errorf("publish program %d: %w", programID, err))
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterProgramsPublished.Inc()
	}

	s.notifier.Broadcast(ctx, notifications.Broadcast{
		Type:      notifications.TypeProgramOpened,
		Title:     "New program",
		Message:   fmt.Sprintf("'%s' is now open for participants.", published.Title),
		ProgramID: &published.ID,
	})

	return published, nil
}

func (s *Service) Update(ctx context.Context, programID, requesterID int, req UpdateRequest) (*Program, error) {
	updated, err := s.repo.Update(ctx, programID, func(current *Program) (*Program, bool, error) {
		if current.CreatorID != requesterID {
			return nil, false, ErrNotCreator
		}
		if current.IsOpen {
			return nil, false, ErrProgramOpen
		}
		return applyUpdate(current, req)
	})
	if err != nil {
		return nil, classify(fmt.Errorf("update program %d: %w", programID, err))
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, programID, requesterID int) error {
	deleted, err := s.repo.Delete(ctx, programID, func(p *Program) error {
		if p.CreatorID != requesterID {
			return ErrNotCreator
		}
		return nil
	})
	if err != nil {
		return classify(fmt.Errorf("delete program %d: %w", programID, err))
	}

	log.Debugf("program %d deleted by user %d", programID, requesterID)

	// the program row is gone, so the notification carries no program reference
	s.notify(ctx, notifications.NewNotification{
		UserID:  requesterID,
		Type:    notifications.TypeProgramDeleted,
		Title:   "Program deleted",
		Message: fmt.Sprintf("Your program '%s' was deleted.", deleted.Title),
	})
	return nil
}

// ListOpen returns the programs accepting participants. callerID is 0 for anonymous callers.
func (s *Service) ListOpen(ctx context.Context, callerID int) ([]Program, error) {
	programs, err := s.repo.ListOpen(ctx, s.now(), callerID)
	if err != nil {
		return nil, fmt.Errorf("list open programs: %w", err)
	}
	if programs == nil {
		programs = []Program{}
	}
	return programs, nil
}

// Get returns the program. Closed programs are visible to their creator only.
func (s *Service) Get(ctx context.Context, programID, callerID int) (*Program, error) {
	p, err := s.repo.Get(ctx, programID, callerID)
	if err != nil {
		return nil, classify(fmt.Errorf("get program %d: %w", programID, err))
	}
	if !p.IsOpen && p.CreatorID != callerID {
		return nil, apperr.New(apperr.KindNotFound, ErrProgramNotFound)
	}
	return p, nil
}

func (s *Service) ListMine(ctx context.Context, creatorID int) ([]Program, error) {
	programs, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list programs of %d: %w", creatorID, err)
	}
	if programs == nil {
		programs = []Program{}
	}
	return programs, nil
}

func (s *Service) WodStatus(ctx context.Context, userID int) (*WodStatus, error) {
	programs, err := s.repo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("wod status of %d: %w", userID, err)
	}
	status := computeWodStatus(programs, s.now())
	return &status, nil
}
