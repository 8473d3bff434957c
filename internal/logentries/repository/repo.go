package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/modelhub-io/go-modelapi-backend/internal/logentries/domain"
	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

// LogEntryRepository persists log entries. Read methods take an ownerID that
// restricts results to entries whose project belongs to that owner; zero
// means no restriction. Listings come back newest-reported first.
type LogEntryRepository struct {
	db *sql.DB
}

func NewLogEntryRepository(db *sql.DB) *LogEntryRepository {
	return &LogEntryRepository{db: db}
}

const logEntryColumns = `e.id, e.account_id, e.project_id, e.title, e.message, e.source, e.reported, e.created_at, e.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLogEntry(row rowScanner) (*domain.LogEntry, error) {
	var e domain.LogEntry
	err := row.Scan(&e.ID, &e.AccountID, &e.ProjectID, &e.Title, &e.Message, &e.Source, &e.Reported, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("scan log entry: %w", err)
	}
	return &e, nil
}

func (r *LogEntryRepository) Count(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		select count(*)
		from log_entries e
		join projects p on p.id = e.project_id
		where ($1 = 0 or p.owner_id = $1)`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count log entries: %w", err)
	}
	return n, nil
}

func (r *LogEntryRepository) List(ctx context.Context, ownerID int64, offset, limit int) ([]*domain.LogEntry, error) {
	if limit < 0 {
		limit = 0
	}
	// limit 0 means unbounded; nullif turns it into LIMIT NULL.
	rows, err := r.db.QueryContext(ctx, `
		select `+logEntryColumns+`
		from log_entries e
		join projects p on p.id = e.project_id
		where ($1 = 0 or p.owner_id = $1)
		order by e.reported desc, e.id desc
		offset $2 limit nullif($3, 0)`, ownerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()

	var out []*domain.LogEntry
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	return out, nil
}

func (r *LogEntryRepository) ByID(ctx context.Context, ownerID, id int64) (*domain.LogEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		select `+logEntryColumns+`
		from log_entries e
		join projects p on p.id = e.project_id
		where e.id = $2 and ($1 = 0 or p.owner_id = $1)`, ownerID, id)
	return scanLogEntry(row)
}

func (r *LogEntryRepository) ByIDs(ctx context.Context, ownerID int64, ids []int64) ([]*domain.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		select `+logEntryColumns+`
		from log_entries e
		join projects p on p.id = e.project_id
		where e.id = any($2) and ($1 = 0 or p.owner_id = $1)
		order by e.reported desc, e.id desc`, ownerID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get log entries: %w", err)
	}
	defer rows.Close()

	var out []*domain.LogEntry
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get log entries: %w", err)
	}
	return out, nil
}

func (r *LogEntryRepository) Create(ctx context.Context, e *domain.LogEntry) (*domain.LogEntry, error) {
	reported := e.Reported
	if reported.IsZero() {
		reported = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		insert into log_entries (account_id, project_id, title, message, source, reported)
		values ($1, $2, $3, $4, $5, $6)
		returning id, account_id, project_id, title, message, source, reported, created_at, updated_at`,
		e.AccountID, e.ProjectID, e.Title, e.Message, e.Source, reported)
	return scanLogEntry(row)
}

func (r *LogEntryRepository) Update(ctx context.Context, ownerID int64, e *domain.LogEntry) (*domain.LogEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		update log_entries e set
			account_id = $3, project_id = $4, title = $5, message = $6,
			source = $7, reported = $8, updated_at = now()
		from projects p
		where e.id = $2 and p.id = e.project_id and ($1 = 0 or p.owner_id = $1)
		returning `+logEntryColumns,
		ownerID, e.ID, e.AccountID, e.ProjectID, e.Title, e.Message, e.Source, e.Reported)
	return scanLogEntry(row)
}

func (r *LogEntryRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		delete from log_entries e
		using projects p
		where e.id = $2 and p.id = e.project_id and ($1 = 0 or p.owner_id = $1)`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete log entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete log entry: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// PruneOlderThan removes entries reported before the cutoff and reports how
// many rows went away. The retention worker calls this on a schedule.
func (r *LogEntryRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `delete from log_entries where reported < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune log entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune log entries: %w", err)
	}
	return n, nil
}
