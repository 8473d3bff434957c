package domain

import (
	"errors"
	"time"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
	"github.com/modelhub-io/go-modelapi-backend/internal/users"
)

var ErrProjectNotFound = errors.New("project not found")

// Project groups the log entries of one owner. It is intentionally
// storage-agnostic and used across repository, API and CRUD layers.
type Project struct {
	ID        int64     `json:"id"`
	PublicID  string    `json:"public_id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Project) PK() int64     { return p.ID }
func (p *Project) Label() string { return p.Name }

func (p *Project) Get(field string) any {
	switch field {
	case "public_id":
		return p.PublicID
	case "name":
		return p.Name
	case "owner":
		return p.OwnerID
	case "created":
		return p.CreatedAt
	case "modified":
		return p.UpdatedAt
	}
	return nil
}

// Meta describes the project model. The owner reference is the tenancy
// anchor: a project is visible to exactly its owner when stores are
// tenant-scoped.
var Meta = &model.Meta{
	Name:              "project",
	VerboseName:       "project",
	VerboseNamePlural: "projects",
	Fields: []model.Field{
		{Name: "name", Kind: model.Text, Required: true, MaxLength: 100},
		{Name: "owner", Kind: model.Ref, Ref: users.Meta, Required: true},
		{Name: "public_id", Kind: model.Text, MaxLength: 40},
		{Name: "created", Kind: model.Time},
		{Name: "modified", Kind: model.Time},
	},
}
