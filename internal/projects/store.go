package projects

import (
	"context"
	"strconv"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
	"github.com/modelhub-io/go-modelapi-backend/internal/projects/domain"
	"github.com/modelhub-io/go-modelapi-backend/internal/projects/repository"
)

// Store adapts the project repository to model.Store. A zero ownerID means
// unscoped; ForTenant produces an owner-restricted view, which is what makes
// the "owner" reference field effectively filterable by tenant.
type Store struct {
	repo    *repository.ProjectRepository
	ownerID int64
}

func NewStore(repo *repository.ProjectRepository) *Store {
	return &Store{repo: repo}
}

func (s *Store) Meta() *model.Meta { return domain.Meta }

// ForTenant restricts the store to projects of one owner. The tenant is the
// owner's user pk in decimal form; unparsable tenants yield an empty view.
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
	for i, p := range rows {
		out[i] = p
	}
	return out, nil
}

func (s *Store) ByPK(ctx context.Context, pk int64) (model.Instance, error) {
	p, err := s.repo.ByID(ctx, s.ownerID, pk)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ByPKs(ctx context.Context, pks []int64) ([]model.Instance, error) {
	rows, err := s.repo.ByIDs(ctx, s.ownerID, pks)
	if err != nil {
		return nil, err
	}
	out := make([]model.Instance, len(rows))
	for i, p := range rows {
		out[i] = p
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, values model.Values) (model.Instance, error) {
	name, _ := values["name"].(string)
	owner, _ := values["owner"].(int64)
	p, err := s.repo.Create(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) Update(ctx context.Context, pk int64, values model.Values) (model.Instance, error) {
	name, _ := values["name"].(string)
	p, err := s.repo.Rename(ctx, s.ownerID, pk, name)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) Delete(ctx context.Context, pk int64) error {
	return s.repo.Delete(ctx, s.ownerID, pk)
}
