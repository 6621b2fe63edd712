package programs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/wodhub/internal/db"
	"github.com/2beens/wodhub/internal/telemetry/tracing"
	"github.com/2beens/wodhub/pkg"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// $1 is the id of the caller whose participation status is attached (0 for none).
const programSelect = `
	SELECT p.id, p.creator_id, u.name, p.title, p.description, p.workout_type, p.target_value,
		p.difficulty, p.max_participants, p.is_open, p.created_at, p.expires_at,
		COUNT(pp.id) FILTER (WHERE pp.status = 'approved'),
		COUNT(pp.id) FILTER (WHERE pp.status = 'pending'),
		COALESCE(MAX(me.status), '')
	FROM programs p
	JOIN users u ON u.id = p.creator_id
	LEFT JOIN program_participants pp ON pp.program_id = p.id
	LEFT JOIN program_participants me ON me.program_id = p.id AND me.user_id = $1
`

const programGroupBy = ` GROUP BY p.id, u.name `

func scanPrograms(rows pgx.Rows) ([]Program, error) {
	defer rows.Close()

	var programs []Program
	for rows.Next() {
		var p Program
		if err := rows.Scan(
			&p.ID, &p.CreatorID, &p.CreatorName, &p.Title, &p.Description, &p.WorkoutType, &p.TargetValue,
			&p.Difficulty, &p.MaxParticipants, &p.IsOpen, &p.CreatedAt, &p.ExpiresAt,
			&p.ApprovedCount, &p.PendingCount, &p.CallerStatus,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		programs = append(programs, p)
	}

	return programs, rows.Err()
}

// lockProgram selects the program row FOR UPDATE.
func lockProgram(ctx context.Context, tx pgx.Tx, programID int) (*Program, error) {
	var p Program
	err := tx.QueryRow(
		ctx,
		`SELECT id, creator_id, title, description, workout_type, target_value,
				difficulty, max_participants, is_open, created_at, expires_at
			FROM programs WHERE id = $1 FOR UPDATE`,
		programID,
	).Scan(
		&p.ID, &p.CreatorID, &p.Title, &p.Description, &p.WorkoutType, &p.TargetValue,
		&p.Difficulty, &p.MaxParticipants, &p.IsOpen, &p.CreatedAt, &p.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("lock program: %w", err)
	}
	return &p, nil
}

// lockCreator serializes quota checks of one creator.
func lockCreator(ctx context.Context, tx pgx.Tx, creatorID int, now time.Time) (CreatorCounts, error) {
	var id int
	if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, creatorID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CreatorCounts{}, ErrCreatorNotFound
		}
		return CreatorCounts{}, fmt.Errorf("lock creator: %w", err)
	}

	var counts CreatorCounts
	if err := tx.QueryRow(
		ctx,
		`SELECT COUNT(*),
				COUNT(*) FILTER (WHERE is_open AND (expires_at IS NULL OR expires_at > $2))
			FROM programs WHERE creator_id = $1`,
		creatorID, now,
	).Scan(&counts.Total, &counts.Open); err != nil {
		return CreatorCounts{}, fmt.Errorf("count creator programs: %w", err)
	}
	return counts, nil
}

func insertSpec(ctx context.Context, tx pgx.Tx, programID int, spec ExerciseSpec) error {
	switch s := spec.(type) {
	case nil:
		return nil
	case FlatList:
		for _, it := range s.Items {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO program_exercises (program_id, exercise_id, target_value, order_index)
					VALUES ($1, $2, $3, $4)`,
				programID, it.ExerciseID, it.TargetValue, it.Order,
			); err != nil {
				return specInsertErr(err)
			}
		}
	case RoundPattern:
		var patternID int
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO workout_patterns (program_id, pattern_type, total_rounds, time_cap_per_round, description)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			programID, s.Type, s.TotalRounds, s.TimeCapPerRound, s.Description,
		).Scan(&patternID); err != nil {
			return specInsertErr(err)
		}
		for _, set := range s.Sets {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO exercise_sets
					(pattern_id, exercise_id, base_reps, progression_type, progression_value, order_index)
					VALUES ($1, $2, $3, $4, $5, $6)`,
				patternID, set.ExerciseID, set.BaseReps, set.Progression, set.ProgressionValue, set.Order,
			); err != nil {
				return specInsertErr(err)
			}
		}
	default:
		return fmt.Errorf("unsupported exercise spec %T", spec)
	}
	return nil
}

func specInsertErr(err error) error {
	if pkg.IsForeignKeyViolation(err, "program_exercises_exercise_id_fkey", "exercise_sets_exercise_id_fkey") {
		return ErrUnknownExercise
	}
	return fmt.Errorf("insert exercise spec: %w", err)
}

func deleteSpec(ctx context.Context, tx pgx.Tx, programID int) error {
	for _, q := range []string{
		`DELETE FROM exercise_sets WHERE pattern_id IN (SELECT id FROM workout_patterns WHERE program_id = $1)`,
		`DELETE FROM workout_patterns WHERE program_id = $1`,
		`DELETE FROM program_exercises WHERE program_id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, programID); err != nil {
			return fmt.Errorf("delete exercise spec: %w", err)
		}
	}
	return nil
}

// Create inserts p and its exercise spec. guard runs under the creator lock and
// can veto the insert based on the creator's current program counts.
func (r *Repo) Create(ctx context.Context, p *Program, now time.Time, guard func(CreatorCounts) error) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var programID int
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		counts, err := lockCreator(ctx, tx, p.CreatorID, now)
		if err != nil {
			return err
		}
		if err := guard(counts); err != nil {
			return err
		}

		if err := tx.QueryRow(
			ctx,
			`INSERT INTO programs
				(creator_id, title, description, workout_type, target_value, difficulty, max_participants, is_open, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
				RETURNING id`,
			p.CreatorID, p.Title, p.Description, p.WorkoutType, p.TargetValue, p.Difficulty, p.MaxParticipants, now,
		).Scan(&programID); err != nil {
			return fmt.Errorf("insert program: %w", err)
		}

		return insertSpec(ctx, tx, programID, p.Spec)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("program.id", programID))
	return r.Get(ctx, programID, p.CreatorID)
}

// Publish opens the program until expiresAt. guard runs with both the creator
// and the program rows locked.
func (r *Repo) Publish(
	ctx context.Context,
	programID int,
	now, expiresAt time.Time,
	guard func(p *Program, counts CreatorCounts) error,
) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.publish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	var creatorID int
	if err := r.db.QueryRow(ctx, `SELECT creator_id FROM programs WHERE id = $1`, programID).Scan(&creatorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("get program creator: %w", err)
	}

	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		// creator first, then program: same order as Create
		counts, err := lockCreator(ctx, tx, creatorID, now)
		if err != nil {
			return err
		}
		p, err := lockProgram(ctx, tx, programID)
		if err != nil {
			return err
		}
		if err := guard(p, counts); err != nil {
			return err
		}

		_, err = tx.Exec(
			ctx,
			`UPDATE programs SET is_open = TRUE, expires_at = $1 WHERE id = $2`,
			expiresAt, programID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, programID, creatorID)
}

// Update locks the program and passes it to fn, which returns the new field values
// and whether the exercise spec is replaced.
func (r *Repo) Update(
	ctx context.Context,
	programID int,
	fn func(current *Program) (*Program, bool, error),
) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	var creatorID int
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		current, err := lockProgram(ctx, tx, programID)
		if err != nil {
			return err
		}
		creatorID = current.CreatorID

		updated, replaceSpec, err := fn(current)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(
			ctx,
			`UPDATE programs SET title = $1, description = $2, target_value = $3, max_participants = $4
				WHERE id = $5`,
			updated.Title, updated.Description, updated.TargetValue, updated.MaxParticipants, programID,
		); err != nil {
			return fmt.Errorf("update program: %w", err)
		}

		if !replaceSpec {
			return nil
		}
		if err := deleteSpec(ctx, tx, programID); err != nil {
			return err
		}
		return insertSpec(ctx, tx, programID, updated.Spec)
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, programID, creatorID)
}

// Delete removes the program and everything that references it.
func (r *Repo) Delete(ctx context.Context, programID int, guard func(p *Program) error) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	var deleted *Program
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		p, err := lockProgram(ctx, tx, programID)
		if err != nil {
			return err
		}
		if err := guard(p); err != nil {
			return err
		}

		if err := deleteSpec(ctx, tx, programID); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM program_participants WHERE program_id = $1`,
			`DELETE FROM workout_records WHERE program_id = $1`,
			`DELETE FROM personal_goals WHERE program_id = $1`,
			`DELETE FROM notifications WHERE program_id = $1`,
			`DELETE FROM programs WHERE id = $1`,
		} {
			if _, err := tx.Exec(ctx, q, programID); err != nil {
				return fmt.Errorf("delete program cascade: %w", err)
			}
		}

		deleted = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// Get returns the program with counts, the caller's participation status and the exercise spec.
func (r *Repo) Get(ctx context.Context, programID, callerID int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	rows, err := r.db.Query(ctx, programSelect+` WHERE p.id = $2 `+programGroupBy, callerID, programID)
	if err != nil {
		return nil, err
	}
	programs, err := scanPrograms(rows)
	if err != nil {
		return nil, err
	}
	if len(programs) == 0 {
		return nil, ErrProgramNotFound
	}

	if err := loadSpecs(ctx, r.db, programs); err != nil {
		return nil, err
	}
	return &programs[0], nil
}

// ListOpen returns open, non-expired programs, newest first.
func (r *Repo) ListOpen(ctx context.Context, now time.Time, callerID int) (_ []Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.list_open")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		programSelect+
			` WHERE p.is_open AND (p.expires_at IS NULL OR p.expires_at > $2) `+
			programGroupBy+
			` ORDER BY p.created_at DESC, p.id DESC`,
		callerID, now,
	)
	if err != nil {
		return nil, err
	}
	programs, err := scanPrograms(rows)
	if err != nil {
		return nil, err
	}

	return programs, loadSpecs(ctx, r.db, programs)
}

// ListByCreator returns every program of the creator, newest first.
func (r *Repo) ListByCreator(ctx context.Context, creatorID int) (_ []Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.list_by_creator")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("creator.id", creatorID))

	rows, err := r.db.Query(
		ctx,
		programSelect+` WHERE p.creator_id = $2 `+programGroupBy+` ORDER BY p.created_at DESC, p.id DESC`,
		creatorID, creatorID,
	)
	if err != nil {
		return nil, err
	}
	programs, err := scanPrograms(rows)
	if err != nil {
		return nil, err
	}

	return programs, loadSpecs(ctx, r.db, programs)
}

// loadSpecs attaches the exercise spec to each program.
func loadSpecs(ctx context.Context, q querier, programs []Program) error {
	if len(programs) == 0 {
		return nil
	}

	ids := make([]int, 0, len(programs))
	byID := make(map[int]*Program, len(programs))
	for i := range programs {
		ids = append(ids, programs[i].ID)
		byID[programs[i].ID] = &programs[i]
	}

	flat := map[int][]FlatItem{}
	rows, err := q.Query(
		ctx,
		`SELECT pe.program_id, pe.exercise_id, e.name, pe.target_value, pe.order_index
			FROM program_exercises pe
			JOIN exercises e ON e.id = pe.exercise_id
			WHERE pe.program_id = ANY($1)
			ORDER BY pe.program_id, pe.order_index, pe.id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query flat exercises: %w", err)
	}
	for rows.Next() {
		var programID int
		var it FlatItem
		if err := rows.Scan(&programID, &it.ExerciseID, &it.ExerciseName, &it.TargetValue, &it.Order); err != nil {
			rows.Close()
			return fmt.Errorf("scan flat exercise: %w", err)
		}
		flat[programID] = append(flat[programID], it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for programID, items := range flat {
		byID[programID].Spec = FlatList{Items: items}
	}

	patterns := map[int]*RoundPattern{} // by pattern id
	patternProgram := map[int]int{}
	rows, err = q.Query(
		ctx,
		`SELECT id, program_id, pattern_type, total_rounds, time_cap_per_round, description
			FROM workout_patterns WHERE program_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query patterns: %w", err)
	}
	for rows.Next() {
		var patternID, programID int
		var rp RoundPattern
		if err := rows.Scan(&patternID, &programID, &rp.Type, &rp.TotalRounds, &rp.TimeCapPerRound, &rp.Description); err != nil {
			rows.Close()
			return fmt.Errorf("scan pattern: %w", err)
		}
		patterns[patternID] = &rp
		patternProgram[patternID] = programID
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(patterns) == 0 {
		return nil
	}

	patternIDs := make([]int, 0, len(patterns))
	for id := range patterns {
		patternIDs = append(patternIDs, id)
	}
	rows, err = q.Query(
		ctx,
		`SELECT es.pattern_id, es.exercise_id, e.name, es.base_reps, es.progression_type,
				es.progression_value, es.order_index
			FROM exercise_sets es
			JOIN exercises e ON e.id = es.exercise_id
			WHERE es.pattern_id = ANY($1)
			ORDER BY es.pattern_id, es.order_index, es.id`,
		patternIDs,
	)
	if err != nil {
		return fmt.Errorf("query exercise sets: %w", err)
	}
	for rows.Next() {
		var patternID int
		var s ExerciseSet
		if err := rows.Scan(
			&patternID, &s.ExerciseID, &s.ExerciseName, &s.BaseReps, &s.Progression, &s.ProgressionValue, &s.Order,
		); err != nil {
			rows.Close()
			return fmt.Errorf("scan exercise set: %w", err)
		}
		patterns[patternID].Sets = append(patterns[patternID].Sets, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for patternID, rp := range patterns {
		byID[patternProgram[patternID]].Spec = *rp
	}
	return nil
}
