package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
	"github.com/modelhub-io/go-modelapi-backend/internal/projects/domain"
)

// ProjectRepository provides persistence operations for projects. All list
// and lookup methods accept an optional owner filter (0 = unscoped) which
// backs tenant-scoped stores.
type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = "id, public_id, name, owner_id, created_at, updated_at"

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID, &p.PublicID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Count(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`select count(*) from projects where ($1 = 0 or owner_id = $1)`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (r *ProjectRepository) List(ctx context.Context, ownerID int64, offset, limit int) ([]*domain.Project, error) {
	if limit < 0 {
		limit = 0
	}
	// limit 0 means unbounded; nullif turns it into LIMIT NULL.
	const q = `
select ` + projectColumns + `
from projects
where ($1 = 0 or owner_id = $1)
order by id
offset $2 limit nullif($3, 0);
`
	rows, err := r.db.Query(ctx, q, ownerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) ByID(ctx context.Context, ownerID, id int64) (*domain.Project, error) {
	const q = `select ` + projectColumns + ` from projects where id = $2 and ($1 = 0 or owner_id = $1);`
	return scanProject(r.db.QueryRow(ctx, q, ownerID, id))
}

func (r *ProjectRepository) ByIDs(ctx context.Context, ownerID int64, ids []int64) ([]*domain.Project, error) {
	const q = `
select ` + projectColumns + `
from projects
where id = any($2) and ($1 = 0 or owner_id = $1)
order by id;
`
	rows, err := r.db.Query(ctx, q, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("projects by ids: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Project, 0, len(ids))
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a new project for the given owner. The public ID is always
// generated server-side.
func (r *ProjectRepository) Create(ctx context.Context, ownerID int64, name string) (*domain.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}
	if ownerID == 0 {
		return nil, fmt.Errorf("owner required")
	}

	const q = `
insert into projects (public_id, name, owner_id)
values ($1, $2, $3)
returning ` + projectColumns + `;
`
	return scanProject(r.db.QueryRow(ctx, q, uuid.NewString(), name, ownerID))
}

func (r *ProjectRepository) Rename(ctx context.Context, ownerID, id int64, newName string) (*domain.Project, error) {
	if newName == "" {
		return nil, fmt.Errorf("name required")
	}

	const q = `
update projects
set name = $3, updated_at = now()
where id = $2 and ($1 = 0 or owner_id = $1)
returning ` + projectColumns + `;
`
	return scanProject(r.db.QueryRow(ctx, q, ownerID, id, newName))
}

func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.db.Exec(ctx,
		`delete from projects where id = $2 and ($1 = 0 or owner_id = $1)`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
