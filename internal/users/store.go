package users

import (
	"context"
	"fmt"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

// Store adapts the user repository to the model.Store contract so users can
// be exposed through the generic API and CRUD layers.
type Store struct {
	repo *Repo
}

func NewStore(repo *Repo) *Store {
	return &Store{repo: repo}
}

func (s *Store) Meta() *model.Meta { return Meta }

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Store) List(ctx context.Context, offset, limit int) ([]model.Instance, error) {
	rows, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.Instance, len(rows))
	for i, u := range rows {
		out[i] = u
	}
	return out, nil
}

func (s *Store) ByPK(ctx context.Context, pk int64) (model.Instance, error) {
	u, err := s.repo.ByID(ctx, pk)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) ByPKs(ctx context.Context, pks []int64) ([]model.Instance, error) {
	rows, err := s.repo.ByIDs(ctx, pks)
	if err != nil {
		return nil, err
	}
	out := make([]model.Instance, len(rows))
	for i, u := range rows {
		out[i] = u
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, values model.Values) (model.Instance, error) {
	email, _ := values["email"].(string)
	displayName, _ := values["display_name"].(string)
	u, err := s.repo.Create(ctx, email, displayName)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) Update(ctx context.Context, pk int64, values model.Values) (model.Instance, error) {
	current, err := s.repo.ByID(ctx, pk)
	if err != nil {
		return nil, err
	}
	email := current.Email
	displayName := current.DisplayName
	if v, ok := values["email"].(string); ok {
		email = v
	}
	if v, ok := values["display_name"].(string); ok {
		displayName = v
	}
	if email == "" {
		return nil, fmt.Errorf("email required")
	}
	u, err := s.repo.Update(ctx, pk, email, displayName)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) Delete(ctx context.Context, pk int64) error {
	return s.repo.Delete(ctx, pk)
}
