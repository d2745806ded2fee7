package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BuzzLyutic/mongotask-api/internal/model"
)

// PostgresTaskRepo keeps tasks in a single table keyed by the hex form of an
// ObjectID, so ids look the same whichever backend is configured.
type PostgresTaskRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresTaskRepo(pool *pgxpool.Pool) *PostgresTaskRepo {
	return &PostgresTaskRepo{
		pool: pool,
	}
}

func (r *PostgresTaskRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id    TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT ''
		)
	`)
	return err
}

func (r *PostgresTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title FROM tasks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *PostgresTaskRepo) Create(ctx context.Context, title string) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, title)
		VALUES ($1, $2)
		RETURNING id, title
	`, primitive.NewObjectID().Hex(), title)

	t, err := scanTask(row)
	return t, r.mapError(err)
}

func (r *PostgresTaskRepo) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2
		WHERE id = $1
		RETURNING id, title
	`, id.Hex(), title)

	t, err := scanTask(row)
	return t, r.mapError(err)
}

func (r *PostgresTaskRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id.Hex())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *PostgresTaskRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresTaskRepo) mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}
	return err
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t     model.Task
		rawID string
	)
	if err := row.Scan(&rawID, &t.Title); err != nil {
		return t, err
	}

	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return t, err
	}
	t.ID = id
	return t, nil
}
