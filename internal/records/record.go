package records

import (
	"errors"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/2beens/wodhub/pkg"
)

const (
	maxNotesLength = 1000
	// recent_improvement compares the newest improvementWindow records with the ones before them
	improvementWindow = 5
)

var (
	ErrProgramNotFound       = errors.New("program not found")
	ErrNotParticipant        = errors.New("only approved participants can do that")
	ErrRecordNotFound        = errors.New("record not found")
	ErrNotRecordOwner        = errors.New("record belongs to another user")
	ErrGoalNotFound          = errors.New("goal not found")
	ErrNotGoalOwner          = errors.New("goal belongs to another user")
	ErrInvalidCompletionTime = errors.New("completion_time must be a positive number of seconds")
	ErrNotesTooLong          = errors.New("notes must be at most 1000 characters")
	ErrInvalidTargetTime     = errors.New("target_time must be a positive number of seconds")
	ErrInvalidProgramID      = errors.New("program_id is required")
)

type Record struct {
	ID             int       `json:"id"`
	ProgramID      int       `json:"program_id"`
	ProgramTitle   string    `json:"program_title,omitempty"`
	UserID         int       `json:"user_id"`
	UserName       string    `json:"user_name,omitempty"`
	CompletionTime int       `json:"completion_time"`
	Notes          string    `json:"notes"`
	IsPublic       bool      `json:"is_public"`
	CompletedAt    time.Time `json:"completed_at"`
}

type NewRecord struct {
	CompletionTime int    `json:"completion_time"`
	Notes          string `json:"notes"`
	IsPublic       *bool  `json:"is_public"`
}

// RecordUpdate holds the fields a PUT may change. Nil fields stay as they are.
type RecordUpdate struct {
	CompletionTime *int    `json:"completion_time"`
	Notes          *string `json:"notes"`
	IsPublic       *bool   `json:"is_public"`
}

type ProgramRecords struct {
	ProgramID    int      `json:"program_id"`
	ProgramTitle string   `json:"program_title"`
	Records      []Record `json:"records"`
	TotalCount   int      `json:"total_count"`
}

type Goal struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	ProgramID    int       `json:"program_id"`
	ProgramTitle string    `json:"program_title"`
	TargetTime   int       `json:"target_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type GoalRequest struct {
	ProgramID  int `json:"program_id"`
	TargetTime int `json:"target_time"`
}

type ProgramStats struct {
	Count        int     `json:"count"`
	AverageTime  float64 `json:"average_time"`
	BestTime     int     `json:"best_time"`
	ProgramTitle string  `json:"program_title"`
}

type PersonalStats struct {
	TotalWorkouts     int                  `json:"total_workouts"`
	AverageTime       float64              `json:"average_time"`
	BestTime          int                  `json:"best_time"`
	ProgramsCompleted int                  `json:"programs_completed"`
	RecentImprovement float64              `json:"recent_improvement"`
	ProgramStats      map[int]ProgramStats `json:"program_stats"`
}

func validateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

func newRecord(programID, userID int, req NewRecord, now time.Time) (Record, error) {
	if req.CompletionTime <= 0 {
		return Record{}, ErrInvalidCompletionTime
	}
	if err := validateNotes(req.Notes); err != nil {
		return Record{}, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	return Record{
		ProgramID:      programID,
		UserID:         userID,
		CompletionTime: req.CompletionTime,
		Notes:          req.Notes,
		IsPublic:       isPublic,
		CompletedAt:    now,
	}, nil
}

func applyUpdate(rec *Record, upd RecordUpdate) (*Record, error) {
	updated := *rec
	if upd.CompletionTime != nil {
		if *upd.CompletionTime <= 0 {
			return nil, ErrInvalidCompletionTime
		}
		updated.CompletionTime = *upd.CompletionTime
	}
	if upd.Notes != nil {
		if err := validateNotes(*upd.Notes); err != nil {
			return nil, err
		}
		updated.Notes = *upd.Notes
	}
	if upd.IsPublic != nil {
		updated.IsPublic = *upd.IsPublic
	}
	return &updated, nil
}

func average(times []int) float64 {
	if len(times) == 0 {
		return 0
	}
	sum := 0
	for _, t := range times {
		sum += t
	}
	return float64(sum) / float64(len(times))
}

func best(times []int) int {
	if len(times) == 0 {
		return 0
	}
	m := times[0]
	for _, t := range times[1:] {
		m = min(m, t)
	}
	return m
}

// computeStats aggregates a user's records. Records may come in any order.
func computeStats(records []Record) PersonalStats {
	stats := PersonalStats{
		ProgramStats: map[int]ProgramStats{},
	}
	if len(records) == 0 {
		return stats
	}

	all := make([]int, 0, len(records))
	byProgram := map[int][]int{}
	titles := map[int]string{}
	for _, r := range records {
		all = append(all, r.CompletionTime)
		byProgram[r.ProgramID] = append(byProgram[r.ProgramID], r.CompletionTime)
		titles[r.ProgramID] = r.ProgramTitle
	}

	stats.TotalWorkouts = len(records)
	stats.AverageTime = pkg.Round1(average(all))
	stats.BestTime = best(all)
	stats.ProgramsCompleted = len(byProgram)

	for programID, times := range byProgram {
		stats.ProgramStats[programID] = ProgramStats{
			Count:        len(times),
			AverageTime:  pkg.Round1(average(times)),
			BestTime:     best(times),
			ProgramTitle: titles[programID],
		}
	}

	if len(records) >= 2*improvementWindow {
		ordered := make([]Record, len(records))
		copy(ordered, records)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].CompletedAt.Before(ordered[j].CompletedAt)
		})

		n := len(ordered)
		var recent, previous []int
		for _, r := range ordered[n-improvementWindow:] {
			recent = append(recent, r.CompletionTime)
		}
		for _, r := range ordered[n-2*improvementWindow : n-improvementWindow] {
			previous = append(previous, r.CompletionTime)
		}
		prevAvg := average(previous)
		stats.RecentImprovement = pkg.Round1((prevAvg - average(recent)) / prevAvg * 100)
	}

	return stats
}
