package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const userColumns = "id, email, coalesce(display_name, ''), created_at, updated_at"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `select count(*) from users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *Repo) List(ctx context.Context, offset, limit int) ([]*User, error) {
	if limit < 0 {
		limit = 0
	}
	// limit 0 means unbounded; nullif turns it into LIMIT NULL.
	const q = `
select ` + userColumns + `
from users
order by id
offset $1 limit nullif($2, 0);
`
	rows, err := r.db.Query(ctx, q, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]*User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) ByID(ctx context.Context, id int64) (*User, error) {
	const q = `select ` + userColumns + ` from users where id = $1;`
	return scanUser(r.db.QueryRow(ctx, q, id))
}

func (r *Repo) ByIDs(ctx context.Context, ids []int64) ([]*User, error) {
	const q = `select ` + userColumns + ` from users where id = any($1) order by id;`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("users by ids: %w", err)
	}
	defer rows.Close()

	out := make([]*User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, email, displayName string) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("email required")
	}

	const q = `
insert into users (email, display_name)
values ($1, nullif($2, ''))
returning ` + userColumns + `;
`
	return scanUser(r.db.QueryRow(ctx, q, email, displayName))
}

func (r *Repo) Update(ctx context.Context, id int64, email, displayName string) (*User, error) {
	const q = `
update users
set email = $2, display_name = nullif($3, ''), updated_at = now()
where id = $1
returning ` + userColumns + `;
`
	return scanUser(r.db.QueryRow(ctx, q, id, email, displayName))
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
