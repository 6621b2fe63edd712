//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/2beens/wodhub/internal/participants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestCapacityAndRejoin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, b, c, d := s.newUser(ctx), s.newUser(ctx), s.newUser(ctx), s.newUser(ctx)
	program := s.createOpenProgram(ctx, a, "Morning WOD", 2)

	s.join(ctx, b, program.ID)
	s.join(ctx, c, program.ID)

	s.approve(ctx, a, program.ID, b.ID)
	assert.Equal(t, 1, s.roster(ctx, a, program.ID).Counts.Approved)
	s.approve(ctx, a, program.ID, c.ID)
	assert.Equal(t, 2, s.roster(ctx, a, program.ID).Counts.Approved)

	s.join(ctx, d, program.ID)
	status, code := s.callErr(ctx, a.Token, http.MethodPut, s.decidePath(program.ID, d.ID),
		participants.DecisionRequest{Action: participants.ActionApprove})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "capacity_exceeded", code)

	roster := s.roster(ctx, a, program.ID)
	assert.Equal(t, participants.StatusPending, statusOf(roster, d.ID))
	assert.Equal(t, 2, roster.Counts.Approved)

	// B leaves, freeing a seat for D
	status = s.call(ctx, b.Token, http.MethodDelete, fmt.Sprintf("/programs/%d/leave", program.ID), nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, participants.StatusLeft, statusOf(s.roster(ctx, a, program.ID), b.ID))

	s.approve(ctx, a, program.ID, d.ID)
	roster = s.roster(ctx, a, program.ID)
	assert.Equal(t, 2, roster.Counts.Approved)
	assert.Equal(t, 1, roster.Counts.Left)

	rejoined := s.join(ctx, b, program.ID)
	assert.Equal(t, participants.StatusPending, rejoined.Status)

	roster = s.roster(ctx, a, program.ID)
	assert.Len(t, roster.Participants, 3)
	assert.Equal(t, participants.StatusPending, statusOf(roster, b.ID))

	var rows int
	require.NoError(t, s.dbPool.QueryRow(ctx,
		`SELECT COUNT(*) FROM program_participants WHERE program_id = $1 AND user_id = $2`,
		program.ID, b.ID,
	).Scan(&rows))
	assert.Equal(t, 1, rows)

	var results participants.ProgramResults
	status = s.call(ctx, a.Token, http.MethodGet, fmt.Sprintf("/programs/%d/results", program.ID), nil, &results)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Morning WOD", results.ProgramTitle)
	assert.Equal(t, 3, results.TotalRegistrations)
	assert.Equal(t, 2, results.CompletedCount)

	status, code = s.callErr(ctx, b.Token, http.MethodGet, fmt.Sprintf("/programs/%d/results", program.ID), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", code)
}

func (s *IntegrationTestSuite) TestJoinConflicts() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, b := s.newUser(ctx), s.newUser(ctx)
	program := s.createOpenProgram(ctx, a, "Conflicting joins", 5)

	s.join(ctx, b, program.ID)
	status, code := s.callErr(ctx, b.Token, http.MethodPost, fmt.Sprintf("/programs/%d/join", program.ID), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", code)

	status, _ = s.callErr(ctx, a.Token, http.MethodPut, s.decidePath(program.ID, b.ID),
		participants.DecisionRequest{Action: participants.ActionReject})
	require.Equal(t, http.StatusOK, status)

	status, code = s.callErr(ctx, b.Token, http.MethodPost, fmt.Sprintf("/programs/%d/join", program.ID), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_state", code)
	assert.Equal(t, participants.StatusRejected, statusOf(s.roster(ctx, a, program.ID), b.ID))
}

func (s *IntegrationTestSuite) TestConcurrentApprovalsRespectCapacity() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const capacity = 2
	creator := s.newUser(ctx)
	program := s.createOpenProgram(ctx, creator, "Crowded WOD", capacity)

	var joiners []apiUser
	for i := 0; i < 6; i++ {
		u := s.newUser(ctx)
		s.join(ctx, u, program.ID)
		joiners = append(joiners, u)
	}

	body, err := json.Marshal(participants.DecisionRequest{Action: participants.ActionApprove})
	require.NoError(t, err)

	statuses := make([]int, len(joiners))
	errs := make([]error, len(joiners))
	var wg sync.WaitGroup
	for i, u := range joiners {
		wg.Add(1)
		go func(i int, u apiUser) {
			defer wg.Done()
			req, err := http.NewRequestWithContext(ctx, http.MethodPut,
				serverEndpoint+s.decidePath(program.ID, u.ID), bytes.NewReader(body))
			if err != nil {
				errs[i] = err
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+creator.Token)
			resp, err := s.httpClient.Do(req)
			if err != nil {
				errs[i] = err
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i, u)
	}
	wg.Wait()

	approved, rejected := 0, 0
	for i := range joiners {
		require.NoError(t, errs[i])
		switch statuses[i] {
		case http.StatusOK:
			approved++
		case http.StatusConflict:
			rejected++
		default:
			t.Fatalf("unexpected status %d", statuses[i])
		}
	}
	assert.Equal(t, capacity, approved)
	assert.Equal(t, len(joiners)-capacity, rejected)

	roster := s.roster(ctx, creator, program.ID)
	assert.Equal(t, capacity, roster.Counts.Approved)
	assert.Equal(t, len(joiners)-capacity, roster.Counts.Pending)
}
