package participants

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

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getProgram(ctx context.Context, q rowQuerier, programID int, lockClause string) (ProgramInfo, error) {
	var p ProgramInfo
	err := q.QueryRow(
		ctx,
		`SELECT id, creator_id, title, is_open, expires_at, max_participants
			FROM programs WHERE id = $1 `+lockClause,
		programID,
	).Scan(&p.ID, &p.CreatorID, &p.Title, &p.IsOpen, &p.ExpiresAt, &p.MaxParticipants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProgramInfo{}, ErrProgramNotFound
		}
		return ProgramInfo{}, fmt.Errorf("get program: %w", err)
	}
	return p, nil
}

// lockParticipant returns the participation row FOR UPDATE, or nil if the user never joined.
func lockParticipant(ctx context.Context, tx pgx.Tx, programID, userID int) (*Participant, error) {
	var p Participant
	err := tx.QueryRow(
		ctx,
		`SELECT pp.id, pp.program_id, pp.user_id, u.name, pp.status, pp.joined_at, pp.approved_at, pp.left_at
			FROM program_participants pp
			JOIN users u ON u.id = pp.user_id
			WHERE pp.program_id = $1 AND pp.user_id = $2
			FOR UPDATE OF pp`,
		programID, userID,
	).Scan(&p.ID, &p.ProgramID, &p.UserID, &p.UserName, &p.Status, &p.JoinedAt, &p.ApprovedAt, &p.LeftAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock participant: %w", err)
	}
	return &p, nil
}

// Join inserts a pending row, or moves an existing row back to pending when guard allows it.
func (r *Repo) Join(
	ctx context.Context,
	programID, userID int,
	now time.Time,
	guard func(program ProgramInfo, existing *Participant) error,
) (_ ProgramInfo, _ *Participant, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.participants.join")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID), attribute.Int("user.id", userID))

	var program ProgramInfo
	var joined Participant
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		// shared lock keeps the program from being closed or deleted mid-join
		info, err := getProgram(ctx, tx, programID, "FOR SHARE")
		if err != nil {
			return err
		}
		program = info
		existing, err := lockParticipant(ctx, tx, programID, userID)
		if err != nil {
			return err
		}
		if err := guard(program, existing); err != nil {
			return err
		}

		if existing == nil {
			err = tx.QueryRow(
				ctx,
				`INSERT INTO program_participants (program_id, user_id, status, joined_at)
					VALUES ($1, $2, 'pending', $3)
					RETURNING id, program_id, user_id, status, joined_at, approved_at, left_at`,
				programID, userID, now,
			).Scan(&joined.ID, &joined.ProgramID, &joined.UserID, &joined.Status, &joined.JoinedAt, &joined.ApprovedAt, &joined.LeftAt)
			if pkg.IsUniqueViolation(err, "program_participants_program_id_user_id_key") {
				return ErrAlreadyPending
			}
		} else {
			err = tx.QueryRow(
				ctx,
				`UPDATE program_participants
					SET status = 'pending', joined_at = $1, approved_at = NULL, left_at = NULL
					WHERE id = $2
					RETURNING id, program_id, user_id, status, joined_at, approved_at, left_at`,
				now, existing.ID,
			).Scan(&joined.ID, &joined.ProgramID, &joined.UserID, &joined.Status, &joined.JoinedAt, &joined.ApprovedAt, &joined.LeftAt)
		}
		if err != nil {
			return fmt.Errorf("write participant: %w", err)
		}

		return tx.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, userID).Scan(&joined.UserName)
	})
	if err != nil {
		return ProgramInfo{}, nil, err
	}

	return program, &joined, nil
}

// Decide runs the capacity gate: the program row is locked before the participant
// row, and the approved count is read under that lock.
func (r *Repo) Decide(
	ctx context.Context,
	programID, userID int,
	now time.Time,
	decideFn func(program ProgramInfo, existing *Participant, approvedCount int) (Status, error),
) (_ ProgramInfo, _ *Participant, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.participants.decide")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID), attribute.Int("user.id", userID))

	var program ProgramInfo
	var decided *Participant
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		info, err := getProgram(ctx, tx, programID, "FOR UPDATE")
		if err != nil {
			return err
		}
		program = info
		existing, err := lockParticipant(ctx, tx, programID, userID)
		if err != nil {
			return err
		}

		var approvedCount int
		if err := tx.QueryRow(
			ctx,
			`SELECT COUNT(*) FROM program_participants WHERE program_id = $1 AND status = 'approved'`,
			programID,
		).Scan(&approvedCount); err != nil {
			return fmt.Errorf("count approved: %w", err)
		}

		status, err := decideFn(program, existing, approvedCount)
		if err != nil {
			return err
		}

		var approvedAt *time.Time
		if status == StatusApproved {
			approvedAt = &now
		}
		if _, err := tx.Exec(
			ctx,
			`UPDATE program_participants SET status = $1, approved_at = $2 WHERE id = $3`,
			status, approvedAt, existing.ID,
		); err != nil {
			return fmt.Errorf("update participant: %w", err)
		}

		existing.Status = status
		existing.ApprovedAt = approvedAt
		decided = existing
		return nil
	})
	if err != nil {
		return ProgramInfo{}, nil, err
	}

	return program, decided, nil
}

func (r *Repo) Leave(
	ctx context.Context,
	programID, userID int,
	now time.Time,
	guard func(existing *Participant) error,
) (_ *Participant, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.participants.leave")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID), attribute.Int("user.id", userID))

	var left *Participant
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		existing, err := lockParticipant(ctx, tx, programID, userID)
		if err != nil {
			return err
		}
		if err := guard(existing); err != nil {
			return err
		}

		if _, err := tx.Exec(
			ctx,
			`UPDATE program_participants SET status = 'left', left_at = $1 WHERE id = $2`,
			now, existing.ID,
		); err != nil {
			return fmt.Errorf("update participant: %w", err)
		}

		existing.Status = StatusLeft
		existing.LeftAt = &now
		left = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return left, nil
}

// List returns the program and all its participation rows, oldest join first.
func (r *Repo) List(ctx context.Context, programID int) (_ ProgramInfo, _ []Participant, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.participants.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	program, err := getProgram(ctx, r.db, programID, "")
	if err != nil {
		return ProgramInfo{}, nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT pp.id, pp.program_id, pp.user_id, u.name, pp.status, pp.joined_at, pp.approved_at, pp.left_at
			FROM program_participants pp
			JOIN users u ON u.id = pp.user_id
			WHERE pp.program_id = $1
			ORDER BY pp.joined_at, pp.id`,
		programID,
	)
	if err != nil {
		return ProgramInfo{}, nil, err
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.ProgramID, &p.UserID, &p.UserName, &p.Status, &p.JoinedAt, &p.ApprovedAt, &p.LeftAt); err != nil {
			return ProgramInfo{}, nil, fmt.Errorf("rows scan: %w", err)
		}
		participants = append(participants, p)
	}

	return program, participants, rows.Err()
}

// IsApproved reports whether the user is an approved participant of the program.
func (r *Repo) IsApproved(ctx context.Context, programID, userID int) (approved bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.participants.is_approved")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`SELECT EXISTS (
			SELECT 1 FROM program_participants
			WHERE program_id = $1 AND user_id = $2 AND status = 'approved'
		)`,
		programID, userID,
	).Scan(&approved)
	return approved, err
}
