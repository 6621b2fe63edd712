package records

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
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{
		db: pool,
	}
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	defer rows.Close()
	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.ProgramID, &rec.ProgramTitle, &rec.UserID, &rec.UserName,
			&rec.CompletionTime, &rec.Notes, &rec.IsPublic, &rec.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

const recordSelect = `
	SELECT wr.id, wr.program_id, p.title, wr.user_id, u.name,
		wr.completion_time, wr.notes, wr.is_public, wr.completed_at
	FROM workout_records wr
	JOIN programs p ON p.id = wr.program_id
	JOIN users u ON u.id = wr.user_id`

// ProgramTitle returns the title of the program, or ErrProgramNotFound.
func (r *Repo) ProgramTitle(ctx context.Context, programID int) (title string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.program_title")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx, `SELECT title FROM programs WHERE id = $1`, programID).Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrProgramNotFound
	}
	return title, err
}

func (r *Repo) Insert(ctx context.Context, rec Record) (_ *Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program-id", rec.ProgramID))

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_records (program_id, user_id, completion_time, notes, is_public, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
		rec.ProgramID, rec.UserID, rec.CompletionTime, rec.Notes, rec.IsPublic, rec.CompletedAt,
	).Scan(&rec.ID)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return &rec, nil
}

func lockRecord(ctx context.Context, tx pgx.Tx, id int) (*Record, error) {
	var rec Record
	err := tx.QueryRow(
		ctx,
		`SELECT id, program_id, user_id, completion_time, notes, is_public, completed_at
			FROM workout_records WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&rec.ID, &rec.ProgramID, &rec.UserID, &rec.CompletionTime, &rec.Notes, &rec.IsPublic, &rec.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("lock record: %w", err)
	}
	return &rec, nil
}

// Update locks the record and stores whatever fn returns.
func (r *Repo) Update(ctx context.Context, id int, fn func(rec *Record) (*Record, error)) (updated *Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		rec, err := lockRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		if updated, err = fn(rec); err != nil {
			return err
		}
		_, err = tx.Exec(
			ctx,
			`UPDATE workout_records SET completion_time = $2, notes = $3, is_public = $4 WHERE id = $1`,
			id, updated.CompletionTime, updated.Notes, updated.IsPublic,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repo) Delete(ctx context.Context, id int, guard func(rec *Record) error) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		rec, err := lockRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := guard(rec); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM workout_records WHERE id = $1`, id)
		return err
	})
}

// ListPublic returns the public records of a program, fastest first.
func (r *Repo) ListPublic(ctx context.Context, programID int) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.list_public")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		recordSelect+`
		WHERE wr.program_id = $1 AND wr.is_public
		ORDER BY wr.completion_time ASC, wr.id ASC`,
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("list public records: %w", err)
	}
	return scanRecords(rows)
}

// ListByUser returns all records of the user, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID int) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.list_by_user")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		recordSelect+`
		WHERE wr.user_id = $1
		ORDER BY wr.completed_at DESC, wr.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user records: %w", err)
	}
	return scanRecords(rows)
}

// UpsertGoal creates or replaces the user's goal for the program. created reports
// whether a new row was inserted.
func (r *Repo) UpsertGoal(ctx context.Context, goal Goal, now time.Time) (_ *Goal, created bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.upsert_goal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	// xmax is 0 only for rows this statement inserted
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO personal_goals (user_id, program_id, target_time, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (user_id, program_id)
			DO UPDATE SET target_time = EXCLUDED.target_time, updated_at = EXCLUDED.updated_at
			RETURNING id, created_at, updated_at, (xmax = 0)`,
		goal.UserID, goal.ProgramID, goal.TargetTime, now,
	).Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt, &created)
	if err != nil {
		return nil, false, fmt.Errorf("upsert goal: %w", err)
	}
	return &goal, created, nil
}

func (r *Repo) ListGoals(ctx context.Context, userID int) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.list_goals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT g.id, g.user_id, g.program_id, p.title, g.target_time, g.created_at, g.updated_at
			FROM personal_goals g
			JOIN programs p ON p.id = g.program_id
			WHERE g.user_id = $1
			ORDER BY g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]Goal, 0)
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.ProgramID, &g.ProgramTitle, &g.TargetTime, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *Repo) DeleteGoal(ctx context.Context, id int, guard func(goal *Goal) error) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.delete_goal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var g Goal
		err := tx.QueryRow(
			ctx,
			`SELECT id, user_id, program_id, target_time FROM personal_goals WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&g.ID, &g.UserID, &g.ProgramID, &g.TargetTime)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrGoalNotFound
			}
			return fmt.Errorf("lock goal: %w", err)
		}
		if err := guard(&g); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM personal_goals WHERE id = $1`, id)
		return err
	})
}
