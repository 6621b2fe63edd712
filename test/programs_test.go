//go:build integration_test || all_tests

package test

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/wodhub/internal/catalog"
	"github.com/2beens/wodhub/internal/programs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) exerciseIDs(ctx context.Context, n int) []int {
	t := s.T()

	var exercises []catalog.Exercise
	status := s.call(ctx, "", http.MethodGet, "/exercises", nil, &exercises)
	require.Equal(t, http.StatusOK, status)
	require.GreaterOrEqual(t, len(exercises), n)

	ids := make([]int, 0, n)
	for _, e := range exercises[:n] {
		ids = append(ids, e.ID)
	}
	return ids
}

func (s *IntegrationTestSuite) expire(ctx context.Context, programID int) {
	_, err := s.dbPool.Exec(ctx,
		`UPDATE programs SET expires_at = now() - interval '1 minute' WHERE id = $1`, programID)
	require.NoError(s.T(), err)
}

func listed(views []programs.View, programID int) bool {
	for _, v := range views {
		if v.ID == programID {
			return true
		}
	}
	return false
}

func (s *IntegrationTestSuite) TestExpiredProgramIsHidden() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	creator, athlete := s.newUser(ctx), s.newUser(ctx)
	program := s.createOpenProgram(ctx, creator, "Fading WOD", 5)

	var views []programs.View
	status := s.call(ctx, athlete.Token, http.MethodGet, "/programs", nil, &views)
	require.Equal(t, http.StatusOK, status)
	require.True(t, listed(views, program.ID))

	s.expire(ctx, program.ID)

	views = nil
	status = s.call(ctx, athlete.Token, http.MethodGet, "/programs", nil, &views)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, listed(views, program.ID))

	status, code := s.callErr(ctx, athlete.Token, http.MethodPost, fmt.Sprintf("/programs/%d/join", program.ID), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_state", code)

	var wod programs.WodStatus
	status = s.call(ctx, creator.Token, http.MethodGet, "/user/wod-status", nil, &wod)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, wod.PublicWods)
	assert.Equal(t, 1, wod.ExpiredWods)
}

func (s *IntegrationTestSuite) TestRepublishExpiredProgram() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	creator, athlete := s.newUser(ctx), s.newUser(ctx)
	program := s.createOpenProgram(ctx, creator, "Second round WOD", 5)

	status, code := s.callErr(ctx, creator.Token, http.MethodPost, fmt.Sprintf("/programs/%d/open", program.ID), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_state", code)

	s.expire(ctx, program.ID)

	var renewed programs.View
	status = s.call(ctx, creator.Token, http.MethodPost, fmt.Sprintf("/programs/%d/open", program.ID), nil, &renewed)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, renewed.IsOpen)
	assert.False(t, renewed.IsExpired)
	require.NotNil(t, renewed.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(programs.OpenDuration), *renewed.ExpiresAt, time.Minute)

	s.join(ctx, athlete, program.ID)
}

func (s *IntegrationTestSuite) TestCreatorSeesDraftExercises() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	creator, outsider := s.newUser(ctx), s.newUser(ctx)
	ids := s.exerciseIDs(ctx, 2)

	var draft programs.View
	status := s.call(ctx, creator.Token, http.MethodPost, "/programs", programs.CreateRequest{
		Title:       "Unpublished chipper",
		WorkoutType: programs.WorkoutTimeBased,
		Difficulty:  programs.DifficultyBeginner,
		ExerciseSpec: &programs.SpecJSON{
			Kind: "flat",
			Exercises: []programs.FlatItem{
				{ExerciseID: ids[0], TargetValue: "50"},
				{ExerciseID: ids[1], TargetValue: "40"},
			},
		},
	}, &draft)
	require.Equal(t, http.StatusCreated, status)
	require.False(t, draft.IsOpen)

	exercisesPath := fmt.Sprintf("/programs/%d/exercises", draft.ID)
	var listing struct {
		ProgramID int                 `json:"program_id"`
		Exercises []programs.FlatItem `json:"exercises"`
	}
	status = s.call(ctx, creator.Token, http.MethodGet, exercisesPath, nil, &listing)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, listing.Exercises, 2)
	assert.Equal(t, ids[0], listing.Exercises[0].ExerciseID)

	status, code := s.callErr(ctx, outsider.Token, http.MethodGet, exercisesPath, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", code)

	status, _ = s.callErr(ctx, "", http.MethodGet, exercisesPath, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
