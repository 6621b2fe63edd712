package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
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

func (r *Repo) ListCategories(ctx context.Context) (_ []Category, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.list_categories")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, description, is_active, created_at
			FROM exercise_categories
			WHERE is_active = TRUE
			ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// ListExercises returns active exercises, optionally only the ones of categoryID.
func (r *Repo) ListExercises(ctx context.Context, categoryID *int) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.list_exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	if categoryID != nil {
		span.SetAttributes(attribute.Int("category.id", *categoryID))
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT e.id, e.category_id, c.name, e.name, e.description, e.is_active, e.created_at
			FROM exercises e
			JOIN exercise_categories c ON c.id = e.category_id
			WHERE e.is_active = TRUE AND ($1::INTEGER IS NULL OR e.category_id = $1)
			ORDER BY e.category_id, e.id`,
		categoryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(
			&e.ID, &e.CategoryID, &e.CategoryName, &e.Name, &e.Description, &e.IsActive, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, e)
	}

	return exercises, rows.Err()
}

func (r *Repo) CategoryExists(ctx context.Context, id int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.category_exists")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var exists bool
	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM exercise_categories WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Seed inserts the given catalog in one transaction, but only if no category exists yet.
// It reports whether anything was inserted.
func (r *Repo) Seed(ctx context.Context, categories []SeedCategory) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.seed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// serialize concurrent seeders
	if _, err = tx.Exec(ctx, `LOCK TABLE exercise_categories IN EXCLUSIVE MODE`); err != nil {
		return false, fmt.Errorf("lock categories: %w", err)
	}

	var count int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM exercise_categories`).Scan(&count); err != nil {
		return false, fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return false, tx.Rollback(ctx)
	}

	for _, c := range categories {
		var categoryID int
		if err = tx.QueryRow(
			ctx,
			`INSERT INTO exercise_categories (name, description) VALUES ($1, $2) RETURNING id`,
			c.Name, c.Description,
		).Scan(&categoryID); err != nil {
			return false, fmt.Errorf("insert category %s: %w", c.Name, err)
		}

		for _, e := range c.Exercises {
			if _, err = tx.Exec(
				ctx,
				`INSERT INTO exercises (category_id, name, description) VALUES ($1, $2, $3)`,
				categoryID, e.Name, e.Description,
			); err != nil {
				return false, fmt.Errorf("insert exercise %s: %w", e.Name, err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}
	return true, nil
}
