package model

import (
	"context"
	"errors"
)

// Kind enumerates the value kinds a field can hold.
type Kind int

const (
	Text Kind = iota
	Int
	Bool
	Time
	Choice
	Ref
)

// ChoicePair maps a stored code to its human-readable label.
type ChoicePair struct {
	Code  string
	Label string
}

// Field describes a single model field. TenantScoped marks reference fields
// whose candidate rows must be restricted to the current tenant when the
// field is validated through a form.
type Field struct {
	Name         string
	Kind         Kind
	Required     bool
	MaxLength    int
	Choices      []ChoicePair
	Ref          *Meta
	TenantScoped bool
}

// ChoiceLabel returns the label for a choice code, or "-" when unknown.
func (f Field) ChoiceLabel(code string) string {
	for _, c := range f.Choices {
		if c.Code == code {
			return c.Label
		}
	}
	return "-"
}

// Meta describes one model type. Metas are built once at startup and treated
// as immutable afterwards.
type Meta struct {
	Name              string
	VerboseName       string
	VerboseNamePlural string
	Fields            []Field
}

// FieldByName returns the named field, or nil.
func (m *Meta) FieldByName(name string) *Field {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i]
		}
	}
	return nil
}

// Instance is a single persisted row of some model.
//
// Get returns the field value by name: Text as string, Int as int64, Bool as
// bool, Time as time.Time, Choice as its code string, Ref as the referenced
// primary key (int64, 0 when null).
type Instance interface {
	PK() int64
	Label() string
	Get(field string) any
}

// Values carries field name to value mappings into Create and Update.
type Values map[string]any

var ErrNotFound = errors.New("object not found")

// Store is the queryset provider for one model: every read the API and CRUD
// layers perform goes through it, every write too. Implementations decide
// ordering; List must be stable across calls, and a limit <= 0 means no
// limit: List returns every row from offset on.
type Store interface {
	Meta() *Meta
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, offset, limit int) ([]Instance, error)
	ByPK(ctx context.Context, pk int64) (Instance, error)
	ByPKs(ctx context.Context, pks []int64) ([]Instance, error)
	Create(ctx context.Context, values Values) (Instance, error)
	Update(ctx context.Context, pk int64, values Values) (Instance, error)
	Delete(ctx context.Context, pk int64) error
}

// TenantScoper is an optional Store capability: a store that can narrow its
// rows to a single tenant. Stores without it are shared across tenants.
type TenantScoper interface {
	ForTenant(tenant string) Store
}

// Resolver maps a Meta to the Store serving it. The API registry implements
// this; tests can supply their own.
type Resolver interface {
	StoreFor(meta *Meta) Store
}
