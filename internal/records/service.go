package records

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/apperr"
	"github.com/2beens/wodhub/internal/telemetry/metrics"
)

//go:generate mockgen -source=$GOFILE -destination=records_mocks_test.go -package=records_test

type recordsRepo interface {
	ProgramTitle(ctx context.Context, programID int) (string, error)
	Insert(ctx context.Context, rec Record) (*Record, error)
	Update(ctx context.Context, id int, fn func(rec *Record) (*Record, error)) (*Record, error)
	Delete(ctx context.Context, id int, guard func(rec *Record) error) error
	ListPublic(ctx context.Context, programID int) ([]Record, error)
	ListByUser(ctx context.Context, userID int) ([]Record, error)
	UpsertGoal(ctx context.Context, goal Goal, now time.Time) (*Goal, bool, error)
	ListGoals(ctx context.Context, userID int) ([]Goal, error)
	DeleteGoal(ctx context.Context, id int, guard func(goal *Goal) error) error
}

type participation interface {
	IsApproved(ctx context.Context, programID, userID int) (bool, error)
}

type Service struct {
	repo           recordsRepo
	participation  participation
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(repo recordsRepo, participation participation, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		participation:  participation,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

var classifyRules = []apperr.Rule{
	{Kind: apperr.KindNotFound, Sentinels: []error{ErrProgramNotFound, ErrRecordNotFound, ErrGoalNotFound}},
	{Kind: apperr.KindForbidden, Sentinels: []error{ErrNotParticipant, ErrNotRecordOwner, ErrNotGoalOwner}},
	{Kind: apperr.KindInvalidInput, Sentinels: []error{
		ErrInvalidCompletionTime,
		ErrNotesTooLong,
		ErrInvalidTargetTime,
		ErrInvalidProgramID,
	}},
}

func classify(err error) error {
	return apperr.Classify(err, classifyRules...)
}

// requireApproved loads the program title and checks the user is an approved participant.
func (s *Service) requireApproved(ctx context.Context, programID, userID int) (string, error) {
	title, err := s.repo.ProgramTitle(ctx, programID)
	if err != nil {
		return "", err
	}
	approved, err := s.participation.IsApproved(ctx, programID, userID)
	if err != nil {
		return "", fmt.Errorf("check participation: %w", err)
	}
	if !approved {
		return "", ErrNotParticipant
	}
	return title, nil
}

// Record stores a completed workout of an approved participant.
func (s *Service) Record(ctx context.Context, programID, userID int, req NewRecord) (*Record, error) {
	title, err := s.requireApproved(ctx, programID, userID)
	if err != nil {
		return nil, classify(fmt.Errorf("record workout in program %d: %w", programID, err))
	}

	rec, err := newRecord(programID, userID, req, s.now())
	if err != nil {
		return nil, classify(err)
	}

	stored, err := s.repo.Insert(ctx, rec)
	if err != nil {
		return nil, classify(fmt.Errorf("record workout in program %d: %w", programID, err))
	}
	stored.ProgramTitle = title

	if s.metricsManager != nil {
		s.metricsManager.CounterWorkoutRecords.Inc()
	}
	log.Debugf("user %d recorded %ds in program %d", userID, stored.CompletionTime, programID)

	return stored, nil
}

func (s *Service) Update(ctx context.Context, recordID, requesterID int, upd RecordUpdate) (*Record, error) {
	updated, err := s.repo.Update(ctx, recordID, func(rec *Record) (*Record, error) {
		if rec.UserID != requesterID {
			return nil, ErrNotRecordOwner
		}
		return applyUpdate(rec, upd)
	})
	if err != nil {
		return nil, classify(fmt.Errorf("update record %d: %w", recordID, err))
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, recordID, requesterID int) error {
	err := s.repo.Delete(ctx, recordID, func(rec *Record) error {
		if rec.UserID != requesterID {
			return ErrNotRecordOwner
		}
		return nil
	})
	if err != nil {
		return classify(fmt.Errorf("delete record %d: %w", recordID, err))
	}
	log.Debugf("user %d deleted record %d", requesterID, recordID)
	return nil
}

// ListPublic returns the program's leaderboard of public records.
func (s *Service) ListPublic(ctx context.Context, programID int) (*ProgramRecords, error) {
	title, err := s.repo.ProgramTitle(ctx, programID)
	if err != nil {
		return nil, classify(fmt.Errorf("list records of %d: %w", programID, err))
	}
	records, err := s.repo.ListPublic(ctx, programID)
	if err != nil {
		return nil, classify(fmt.Errorf("list records of %d: %w", programID, err))
	}
	if records == nil {
		records = []Record{}
	}
	return &ProgramRecords{
		ProgramID:    programID,
		ProgramTitle: title,
		Records:      records,
		TotalCount:   len(records),
	}, nil
}

func (s *Service) ListMine(ctx context.Context, userID int) ([]Record, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list records of user %d: %w", userID, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *Service) PersonalStats(ctx context.Context, userID int) (*PersonalStats, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("stats of user %d: %w", userID, err)
	}
	stats := computeStats(records)
	return &stats, nil
}

// SetGoal creates or replaces the caller's target time for a program. The bool
// result reports whether the goal is new.
func (s *Service) SetGoal(ctx context.Context, userID int, req GoalRequest) (*Goal, bool, error) {
	if req.ProgramID <= 0 {
		return nil, false, classify(ErrInvalidProgramID)
	}
	if req.TargetTime <= 0 {
		return nil, false, classify(ErrInvalidTargetTime)
	}

	title, err := s.requireApproved(ctx, req.ProgramID, userID)
	if err != nil {
		return nil, false, classify(fmt.Errorf("set goal for program %d: %w", req.ProgramID, err))
	}

	goal, created, err := s.repo.UpsertGoal(ctx, Goal{
		UserID:     userID,
		ProgramID:  req.ProgramID,
		TargetTime: req.TargetTime,
	}, s.now())
	if err != nil {
		return nil, false, classify(fmt.Errorf("set goal for program %d: %w", req.ProgramID, err))
	}
	goal.ProgramTitle = title

	return goal, created, nil
}

func (s *Service) ListGoals(ctx context.Context, userID int) ([]Goal, error) {
	goals, err := s.repo.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals of user %d: %w", userID, err)
	}
	if goals == nil {
		goals = []Goal{}
	}
	return goals, nil
}

func (s *Service) DeleteGoal(ctx context.Context, goalID, requesterID int) error {
	err := s.repo.DeleteGoal(ctx, goalID, func(goal *Goal) error {
		if goal.UserID != requesterID {
			return ErrNotGoalOwner
		}
		return nil
	})
	if err != nil {
		return classify(fmt.Errorf("delete goal %d: %w", goalID, err))
	}
	return nil
}
