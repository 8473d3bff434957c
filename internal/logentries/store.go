package logentries

import (
	"context"
	"strconv"
	"time"

	"github.com/modelhub-io/go-modelapi-backend/internal/logentries/domain"
	"github.com/modelhub-io/go-modelapi-backend/internal/logentries/repository"
	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

// Store adapts the log entry repository to model.Store. Tenant views narrow
// results to entries whose project is owned by that tenant.
type Store struct {
	repo    *repository.LogEntryRepository
	ownerID int64
}

func NewStore(repo *repository.LogEntryRepository) *Store {
	return &Store{repo: repo}
}

func (s *Store) Meta() *model.Meta { return domain.Meta }

func (s *Store) ForTenant(tenant string) model.Store {
	ownerID, err := strconv.ParseInt(tenant, 10, 64)
	if err != nil || ownerID <= 0 {
		ownerID = -1
	}
	return &Store{repo: s.repo, ownerID: ownerID}
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx, s.ownerID)
}

func (s *Store) List(ctx context.Context, offset, limit int) ([]model.Instance, error) {
	rows, err := s.repo.List(ctx, s.ownerID, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.Instance, len(rows))
	for i, e := range rows {
		out[i] = e
	}
	return out, nil
}

func (s *Store) ByPK(ctx context.Context, pk int64) (model.Instance, error) {
	e, err := s.repo.ByID(ctx, s.ownerID, pk)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) ByPKs(ctx context.Context, pks []int64) ([]model.Instance, error) {
	rows, err := s.repo.ByIDs(ctx, s.ownerID, pks)
	if err != nil {
		return nil, err
	}
	out := make([]model.Instance, len(rows))
	for i, e := range rows {
		out[i] = e
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, values model.Values) (model.Instance, error) {
	e, err := s.repo.Create(ctx, entryFromValues(0, values))
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) Update(ctx context.Context, pk int64, values model.Values) (model.Instance, error) {
	e := entryFromValues(pk, values)
	if e.Reported.IsZero() {
		// reported is optional on edit; keep the stored timestamp rather
		// than writing the zero time.
		current, err := s.repo.ByID(ctx, s.ownerID, pk)
		if err != nil {
			return nil, err
		}
		e.Reported = current.Reported
	}
	out, err := s.repo.Update(ctx, s.ownerID, e)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, pk int64) error {
	return s.repo.Delete(ctx, s.ownerID, pk)
}

func entryFromValues(pk int64, values model.Values) *domain.LogEntry {
	e := &domain.LogEntry{ID: pk}
	e.AccountID, _ = values["account"].(int64)
	e.ProjectID, _ = values["project"].(int64)
	e.Title, _ = values["title"].(string)
	e.Message, _ = values["message"].(string)
	e.Source, _ = values["source"].(string)
	if t, ok := values["reported"].(time.Time); ok {
		e.Reported = t
	}
	return e
}
