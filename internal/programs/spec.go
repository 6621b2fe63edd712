package programs

import (
	"errors"
	"fmt"
	"sort"
)

type PatternType string

const (
	PatternRoundBased PatternType = "round_based"
	PatternTimeCap    PatternType = "time_cap"
)

type Progression string

const (
	ProgressionFixed    Progression = "fixed"
	ProgressionIncrease Progression = "increase"
	ProgressionDecrease Progression = "decrease"
)

const (
	specKindNone    = "none"
	specKindFlat    = "flat"
	specKindPattern = "pattern"

	maxRounds = 100
)

var ErrInvalidSpec = errors.New("invalid exercise spec")

// ExerciseSpec describes what a program consists of. It is either a FlatList
// or a RoundPattern; a program without exercises has a nil spec.
type ExerciseSpec interface {
	Kind() string
	Validate() error
	isExerciseSpec()
}

type FlatItem struct {
	ExerciseID   int    `json:"exercise_id"`
	ExerciseName string `json:"exercise_name,omitempty"`
	TargetValue  string `json:"target_value"`
	Order        int    `json:"order"`
}

type FlatList struct {
	Items []FlatItem
}

func (FlatList) Kind() string { return specKindFlat }

func (f FlatList) Validate() error {
	if len(f.Items) == 0 {
		return fmt.Errorf("%w: flat list needs at least one exercise", ErrInvalidSpec)
	}
	for _, it := range f.Items {
		if it.ExerciseID <= 0 {
			return fmt.Errorf("%w: exercise_id must be positive", ErrInvalidSpec)
		}
	}
	return nil
}

func (FlatList) isExerciseSpec() {}

type ExerciseSet struct {
	ExerciseID       int         `json:"exercise_id"`
	ExerciseName     string      `json:"exercise_name,omitempty"`
	BaseReps         int         `json:"base_reps"`
	Progression      Progression `json:"progression_type"`
	ProgressionValue int         `json:"progression_value"`
	Order            int         `json:"order"`
}

type RoundPattern struct {
	Type            PatternType
	TotalRounds     int
	TimeCapPerRound *int // minutes
	Description     string
	Sets            []ExerciseSet
}

func (RoundPattern) Kind() string { return specKindPattern }

func (p RoundPattern) Validate() error {
	switch p.Type {
	case PatternRoundBased:
	case PatternTimeCap:
		if p.TimeCapPerRound == nil || *p.TimeCapPerRound <= 0 {
			return fmt.Errorf("%w: time_cap pattern needs a positive time_cap_per_round", ErrInvalidSpec)
		}
	default:
		return fmt.Errorf("%w: unknown pattern type %q", ErrInvalidSpec, p.Type)
	}
	if p.TotalRounds < 1 || p.TotalRounds > maxRounds {
		return fmt.Errorf("%w: total_rounds must be between 1 and %d", ErrInvalidSpec, maxRounds)
	}
	if p.TimeCapPerRound != nil && *p.TimeCapPerRound <= 0 {
		return fmt.Errorf("%w: time_cap_per_round must be positive", ErrInvalidSpec)
	}
	if len(p.Sets) == 0 {
		return fmt.Errorf("%w: pattern needs at least one exercise set", ErrInvalidSpec)
	}
	for _, s := range p.Sets {
		if s.ExerciseID <= 0 {
			return fmt.Errorf("%w: exercise_id must be positive", ErrInvalidSpec)
		}
		if s.BaseReps < 1 {
			return fmt.Errorf("%w: base_reps must be at least 1", ErrInvalidSpec)
		}
		if s.ProgressionValue < 0 {
			return fmt.Errorf("%w: progression_value must not be negative", ErrInvalidSpec)
		}
		switch s.Progression {
		case ProgressionFixed, ProgressionIncrease, ProgressionDecrease:
		default:
			return fmt.Errorf("%w: unknown progression type %q", ErrInvalidSpec, s.Progression)
		}
	}
	return nil
}

func (RoundPattern) isExerciseSpec() {}

// RepsFor returns the target reps of set in the given 1-based round.
// Decreasing sets never drop below one rep.
func (p RoundPattern) RepsFor(set ExerciseSet, round int) int {
	if round < 1 {
		round = 1
	}
	step := set.ProgressionValue * (round - 1)
	switch set.Progression {
	case ProgressionIncrease:
		return set.BaseReps + step
	case ProgressionDecrease:
		return max(set.BaseReps-step, 1)
	default:
		return set.BaseReps
	}
}

type PlannedSet struct {
	ExerciseID   int    `json:"exercise_id"`
	ExerciseName string `json:"exercise_name,omitempty"`
	Reps         int    `json:"reps"`
}

type RoundPlan struct {
	Round     int          `json:"round"`
	Exercises []PlannedSet `json:"exercises"`
}

// Plan expands the pattern into the target of every set for every round.
func (p RoundPattern) Plan() []RoundPlan {
	sets := sortedSets(p.Sets)
	plan := make([]RoundPlan, 0, p.TotalRounds)
	for round := 1; round <= p.TotalRounds; round++ {
		rp := RoundPlan{Round: round, Exercises: make([]PlannedSet, 0, len(sets))}
		for _, s := range sets {
			rp.Exercises = append(rp.Exercises, PlannedSet{
				ExerciseID:   s.ExerciseID,
				ExerciseName: s.ExerciseName,
				Reps:         p.RepsFor(s, round),
			})
		}
		plan = append(plan, rp)
	}
	return plan
}

func sortedSets(sets []ExerciseSet) []ExerciseSet {
	sorted := make([]ExerciseSet, len(sets))
	copy(sorted, sets)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}

// SpecJSON is the wire form of an ExerciseSpec.
type SpecJSON struct {
	Kind            string        `json:"kind"`
	Exercises       []FlatItem    `json:"exercises,omitempty"`
	PatternType     PatternType   `json:"pattern_type,omitempty"`
	TotalRounds     int           `json:"total_rounds,omitempty"`
	TimeCapPerRound *int          `json:"time_cap_per_round,omitempty"`
	Description     string        `json:"description,omitempty"`
	Sets            []ExerciseSet `json:"sets,omitempty"`
}

func EncodeSpec(spec ExerciseSpec) SpecJSON {
	switch s := spec.(type) {
	case FlatList:
		return SpecJSON{Kind: specKindFlat, Exercises: s.Items}
	case RoundPattern:
		return SpecJSON{
			Kind:            specKindPattern,
			PatternType:     s.Type,
			TotalRounds:     s.TotalRounds,
			TimeCapPerRound: s.TimeCapPerRound,
			Description:     s.Description,
			Sets:            sortedSets(s.Sets),
		}
	default:
		return SpecJSON{Kind: specKindNone}
	}
}

// Decode turns the wire form into an ExerciseSpec. A nil spec means "no exercises".
func (j SpecJSON) Decode() (ExerciseSpec, error) {
	switch j.Kind {
	case "", specKindNone:
		return nil, nil
	case specKindFlat:
		items := make([]FlatItem, len(j.Exercises))
		copy(items, j.Exercises)
		if !anyOrdered(items, func(it FlatItem) int { return it.Order }) {
			for i := range items {
				items[i].Order = i
			}
		}
		return FlatList{Items: items}, nil
	case specKindPattern:
		sets := make([]ExerciseSet, len(j.Sets))
		copy(sets, j.Sets)
		ordered := anyOrdered(sets, func(s ExerciseSet) int { return s.Order })
		for i := range sets {
			if sets[i].Progression == "" {
				sets[i].Progression = ProgressionFixed
			}
			if !ordered {
				sets[i].Order = i
			}
		}
		return RoundPattern{
			Type:            j.PatternType,
			TotalRounds:     j.TotalRounds,
			TimeCapPerRound: j.TimeCapPerRound,
			Description:     j.Description,
			Sets:            sets,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, j.Kind)
	}
}

// anyOrdered reports whether the client set an explicit order on any element.
// Positions are only used as the order when none did.
func anyOrdered[T any](elems []T, order func(T) int) bool {
	for _, e := range elems {
		if order(e) != 0 {
			return true
		}
	}
	return false
}

// FlatItems lists the exercises of any spec in order. Pattern sets are listed
// with their base reps as the target.
func FlatItems(spec ExerciseSpec) []FlatItem {
	switch s := spec.(type) {
	case FlatList:
		items := make([]FlatItem, len(s.Items))
		copy(items, s.Items)
		sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
		return items
	case RoundPattern:
		sets := sortedSets(s.Sets)
		items := make([]FlatItem, 0, len(sets))
		for _, set := range sets {
			items = append(items, FlatItem{
				ExerciseID:   set.ExerciseID,
				ExerciseName: set.ExerciseName,
				TargetValue:  fmt.Sprintf("%d reps", set.BaseReps),
				Order:        set.Order,
			})
		}
		return items
	default:
		return []FlatItem{}
	}
}
