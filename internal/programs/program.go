package programs

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type WorkoutType string

const (
	WorkoutTimeBased WorkoutType = "time_based"
	WorkoutRepBased  WorkoutType = "rep_based"
	WorkoutWOD       WorkoutType = "wod"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

const (
	MaxTotalPrograms = 5
	MaxOpenPrograms  = 3

	DefaultMaxParticipants = 20
	MaxParticipantsLimit   = 200
	OpenDuration           = 7 * 24 * time.Hour
	ExpiringSoonWindow     = 3 * 24 * time.Hour

	minTitleLength = 3
)

var (
	ErrProgramNotFound        = errors.New("program not found")
	ErrCreatorNotFound        = errors.New("creator not found")
	ErrNotCreator             = errors.New("only the program creator can do this")
	ErrAlreadyOpen            = errors.New("program is already open")
	ErrProgramOpen            = errors.New("open programs cannot be modified")
	ErrTotalQuotaExceeded     = fmt.Errorf("a creator can own at most %d programs", MaxTotalPrograms)
	ErrOpenQuotaExceeded      = fmt.Errorf("a creator can have at most %d open programs", MaxOpenPrograms)
	ErrTitleTooShort          = errors.New("title must be at least 3 characters")
	ErrInvalidMaxParticipants = fmt.Errorf("max_participants must be between 1 and %d", MaxParticipantsLimit)
	ErrInvalidWorkoutType     = errors.New("invalid workout_type")
	ErrInvalidDifficulty      = errors.New("invalid difficulty")
	ErrImmutableWorkoutType   = errors.New("workout_type cannot be changed")
	ErrImmutableDifficulty    = errors.New("difficulty cannot be changed")
	ErrUnknownExercise        = errors.New("exercise spec references an unknown exercise")
)

type Program struct {
	ID              int          `json:"id"`
	CreatorID       int          `json:"creator_id"`
	CreatorName     string       `json:"creator_name"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	WorkoutType     WorkoutType  `json:"workout_type"`
	TargetValue     string       `json:"target_value"`
	Difficulty      Difficulty   `json:"difficulty"`
	MaxParticipants int          `json:"max_participants"`
	IsOpen          bool         `json:"is_open"`
	CreatedAt       time.Time    `json:"created_at"`
	ExpiresAt       *time.Time   `json:"expires_at"`
	ApprovedCount   int          `json:"participants"`
	PendingCount    int          `json:"pending_count"`
	Spec            ExerciseSpec `json:"-"`

	// CallerStatus is the participation status of the user asking, if any.
	CallerStatus string `json:"-"`
}

// IsExpired reports whether the program was open and its window has passed.
func (p *Program) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// IsActive reports whether the program is open and accepting participants.
func (p *Program) IsActive(now time.Time) bool {
	return p.IsOpen && !p.IsExpired(now)
}

// DaysUntilExpiry returns the whole days left until expiry, rounded up, or nil
// when the program never expires. Expired programs report 0.
func (p *Program) DaysUntilExpiry(now time.Time) *int {
	if p.ExpiresAt == nil {
		return nil
	}
	left := p.ExpiresAt.Sub(now)
	days := 0
	if left > 0 {
		days = int(math.Ceil(left.Hours() / 24))
	}
	return &days
}

type CreateRequest struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	WorkoutType     WorkoutType `json:"workout_type"`
	Difficulty      Difficulty  `json:"difficulty"`
	TargetValue     string      `json:"target_value"`
	MaxParticipants int         `json:"max_participants"`
	ExerciseSpec    *SpecJSON   `json:"exercise_spec"`
}

type UpdateRequest struct {
	Title           *string      `json:"title"`
	Description     *string      `json:"description"`
	WorkoutType     *WorkoutType `json:"workout_type"`
	Difficulty      *Difficulty  `json:"difficulty"`
	TargetValue     *string      `json:"target_value"`
	MaxParticipants *int         `json:"max_participants"`
	ExerciseSpec    *SpecJSON    `json:"exercise_spec"`
}

func validWorkoutType(t WorkoutType) bool {
	switch t {
	case WorkoutTimeBased, WorkoutRepBased, WorkoutWOD:
		return true
	}
	return false
}

func validDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if len([]rune(title)) < minTitleLength {
		return "", ErrTitleTooShort
	}
	return title, nil
}

func validateMaxParticipants(n int) error {
	if n < 1 || n > MaxParticipantsLimit {
		return ErrInvalidMaxParticipants
	}
	return nil
}

// newProgram validates req and builds the program it describes, applying defaults.
func newProgram(creatorID int, req CreateRequest) (*Program, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}

	if req.MaxParticipants == 0 {
		req.MaxParticipants = DefaultMaxParticipants
	}
	if err := validateMaxParticipants(req.MaxParticipants); err != nil {
		return nil, err
	}

	if req.WorkoutType == "" {
		req.WorkoutType = WorkoutTimeBased
	}
	if !validWorkoutType(req.WorkoutType) {
		return nil, ErrInvalidWorkoutType
	}

	if req.Difficulty == "" {
		req.Difficulty = DifficultyBeginner
	}
	if !validDifficulty(req.Difficulty) {
		return nil, ErrInvalidDifficulty
	}

	p := &Program{
		CreatorID:       creatorID,
		Title:           title,
		Description:     strings.TrimSpace(req.Description),
		WorkoutType:     req.WorkoutType,
		TargetValue:     strings.TrimSpace(req.TargetValue),
		Difficulty:      req.Difficulty,
		MaxParticipants: req.MaxParticipants,
	}

	if req.ExerciseSpec != nil {
		spec, err := req.ExerciseSpec.Decode()
		if err != nil {
			return nil, err
		}
		if spec != nil {
			if err := spec.Validate(); err != nil {
				return nil, err
			}
		}
		p.Spec = spec
	}

	return p, nil
}

// applyUpdate validates req against the current program and returns the updated copy.
// The second result reports whether the exercise spec is replaced.
func applyUpdate(current *Program, req UpdateRequest) (*Program, bool, error) {
	updated := *current

	if req.WorkoutType != nil && *req.WorkoutType != current.WorkoutType {
		return nil, false, ErrImmutableWorkoutType
	}
	if req.Difficulty != nil && *req.Difficulty != current.Difficulty {
		return nil, false, ErrImmutableDifficulty
	}

	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return nil, false, err
		}
		updated.Title = title
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.TargetValue != nil {
		updated.TargetValue = strings.TrimSpace(*req.TargetValue)
	}
	if req.MaxParticipants != nil {
		if err := validateMaxParticipants(*req.MaxParticipants); err != nil {
			return nil, false, err
		}
		updated.MaxParticipants = *req.MaxParticipants
	}

	if req.ExerciseSpec == nil {
		return &updated, false, nil
	}

	spec, err := req.ExerciseSpec.Decode()
	if err != nil {
		return nil, false, err
	}
	if spec != nil {
		if err := spec.Validate(); err != nil {
			return nil, false, err
		}
	}
	updated.Spec = spec
	return &updated, true, nil
}

// CreatorCounts is the quota-relevant state of a creator, read under the creator lock.
type CreatorCounts struct {
	Total int
	Open  int // open and not expired
}

func checkCreateQuota(c CreatorCounts) error {
	if c.Total >= MaxTotalPrograms {
		return ErrTotalQuotaExceeded
	}
	return nil
}

func checkPublishQuota(c CreatorCounts) error {
	if c.Open >= MaxOpenPrograms {
		return ErrOpenQuotaExceeded
	}
	return nil
}
