package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/wodhub/internal/telemetry/tracing"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Insert(ctx context.Context, n NewNotification, now time.Time) (_ *Notification, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notifications.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", n.UserID), attribute.String("notification.type", string(n.Type)))

	created := Notification{
		UserID:    n.UserID,
		ProgramID: n.ProgramID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: now,
	}
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO notifications (user_id, program_id, type, title, message, is_read, created_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6)
			RETURNING id`,
		n.UserID, n.ProgramID, n.Type, n.Title, n.Message, now,
	).Scan(&created.ID); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	return &created, nil
}

// ListByUser returns the newest notifications of the user first.
func (r *Repo) ListByUser(ctx context.Context, userID, limit int) (_ []Notification, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notifications.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, program_id, type, title, message, is_read, created_at
			FROM notifications
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.ProgramID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		list = append(list, n)
	}

	return list, rows.Err()
}

func (r *Repo) CountUnread(ctx context.Context, userID int) (count int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notifications.count_unread")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`,
		userID,
	).Scan(&count)
	return count, err
}

// MarkRead reports whether a notification with the id exists for the user.
// Marking an already read notification succeeds.
func (r *Repo) MarkRead(ctx context.Context, userID, id int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notifications.mark_read")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) MarkAllRead(ctx context.Context, userID int) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notifications.mark_all_read")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`,
		userID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
