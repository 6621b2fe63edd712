//go:build integration_test || all_tests

package test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/2beens/wodhub/internal/programs"
	"github.com/2beens/wodhub/internal/records"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestRecordsRequireApproval() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, outsider := s.newUser(ctx), s.newUser(ctx)
	program := s.createOpenProgram(ctx, a, "Record WOD", 3)
	recordsPath := fmt.Sprintf("/programs/%d/records", program.ID)

	athlete := s.newUser(ctx)
	s.join(ctx, athlete, program.ID)
	s.approve(ctx, a, program.ID, athlete.ID)

	var created records.Record
	status := s.call(ctx, athlete.Token, http.MethodPost, recordsPath, records.NewRecord{
		CompletionTime: 605,
		Notes:          "felt strong",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 605, created.CompletionTime)
	assert.True(t, created.IsPublic)

	var public records.ProgramRecords
	status = s.call(ctx, outsider.Token, http.MethodGet, recordsPath, nil, &public)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, public.Records, 1)
	assert.Equal(t, created.ID, public.Records[0].ID)
	assert.Equal(t, "Record WOD", public.ProgramTitle)

	status, code := s.callErr(ctx, outsider.Token, http.MethodPost, recordsPath, records.NewRecord{CompletionTime: 500})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", code)

	status, code = s.callErr(ctx, athlete.Token, http.MethodPost, recordsPath, records.NewRecord{CompletionTime: 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_input", code)

	hidden := false
	var private records.Record
	status = s.call(ctx, athlete.Token, http.MethodPut, fmt.Sprintf("/records/%d", created.ID),
		records.RecordUpdate{IsPublic: &hidden}, &private)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, private.IsPublic)

	status = s.call(ctx, outsider.Token, http.MethodGet, recordsPath, nil, &public)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, public.Records)

	var stats records.PersonalStats
	status = s.call(ctx, athlete.Token, http.MethodGet, "/users/records/stats", nil, &stats)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, stats.TotalWorkouts)
	assert.Equal(t, 605, stats.BestTime)
	assert.Zero(t, stats.RecentImprovement)
}

func (s *IntegrationTestSuite) TestDeleteProgramCascades() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	creator, athlete := s.newUser(ctx), s.newUser(ctx)
	ids := s.exerciseIDs(ctx, 2)

	var program programs.Program
	status := s.call(ctx, creator.Token, http.MethodPost, "/programs", programs.CreateRequest{
		Title:           "Short lived WOD",
		MaxParticipants: 4,
		ExerciseSpec: &programs.SpecJSON{
			Kind:        "pattern",
			PatternType: programs.PatternRoundBased,
			TotalRounds: 5,
			Sets: []programs.ExerciseSet{
				{ExerciseID: ids[0], BaseReps: 10, Progression: programs.ProgressionIncrease, ProgressionValue: 2},
				{ExerciseID: ids[1], BaseReps: 15},
			},
		},
	}, &program)
	require.Equal(t, http.StatusCreated, status)
	status = s.call(ctx, creator.Token, http.MethodPost, fmt.Sprintf("/programs/%d/open", program.ID), nil, nil)
	require.Equal(t, http.StatusOK, status)

	var patterns int
	require.NoError(t, s.dbPool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_patterns WHERE program_id = $1`, program.ID).Scan(&patterns))
	require.Equal(t, 1, patterns)

	s.join(ctx, athlete, program.ID)
	s.approve(ctx, creator, program.ID, athlete.ID)

	status = s.call(ctx, athlete.Token, http.MethodPost, fmt.Sprintf("/programs/%d/records", program.ID),
		records.NewRecord{CompletionTime: 420}, nil)
	require.Equal(t, http.StatusCreated, status)
	status = s.call(ctx, athlete.Token, http.MethodPost, "/users/goals",
		records.GoalRequest{ProgramID: program.ID, TargetTime: 400}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, code := s.callErr(ctx, athlete.Token, http.MethodDelete, fmt.Sprintf("/programs/%d", program.ID), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", code)

	status = s.call(ctx, creator.Token, http.MethodDelete, fmt.Sprintf("/programs/%d", program.ID), nil, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.callErr(ctx, creator.Token, http.MethodGet, fmt.Sprintf("/programs/%d", program.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)

	for _, table := range []string{
		"program_participants", "workout_records", "personal_goals", "notifications",
		"workout_patterns", "program_exercises",
	} {
		var n int
		require.NoError(t, s.dbPool.QueryRow(ctx,
			fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE program_id = $1`, pq.QuoteIdentifier(table)), program.ID,
		).Scan(&n))
		assert.Zero(t, n, table)
	}

	var orphanSets int
	require.NoError(t, s.dbPool.QueryRow(ctx, `
		SELECT COUNT(*) FROM exercise_sets es
		LEFT JOIN workout_patterns wp ON wp.id = es.pattern_id
		WHERE wp.id IS NULL`,
	).Scan(&orphanSets))
	assert.Zero(t, orphanSets)
}

func (s *IntegrationTestSuite) TestCreatorQuotas() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	creator := s.newUser(ctx)
	for i := 0; i < 3; i++ {
		s.createOpenProgram(ctx, creator, fmt.Sprintf("Open WOD %d", i), 10)
	}

	var draft struct {
		ID int `json:"id"`
	}
	status := s.call(ctx, creator.Token, http.MethodPost, "/programs",
		map[string]any{"title": "Draft WOD 1"}, &draft)
	require.Equal(t, http.StatusCreated, status)

	status, code := s.callErr(ctx, creator.Token, http.MethodPost, fmt.Sprintf("/programs/%d/open", draft.ID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "quota_exceeded", code)

	status = s.call(ctx, creator.Token, http.MethodPost, "/programs", map[string]any{"title": "Draft WOD 2"}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, code = s.callErr(ctx, creator.Token, http.MethodPost, "/programs", map[string]any{"title": "One too many"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "quota_exceeded", code)

	var wod programs.WodStatus
	status = s.call(ctx, creator.Token, http.MethodGet, "/user/wod-status", nil, &wod)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, wod.TotalWods)
	assert.Equal(t, 3, wod.PublicWods)
	assert.False(t, wod.CanCreateWod)
	assert.False(t, wod.CanCreatePublicWod)
}
