package users

import (
	"time"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

// User is an account that owns projects and reports log entries.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) PK() int64 { return u.ID }

func (u *User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

func (u *User) Get(field string) any {
	switch field {
	case "email":
		return u.Email
	case "display_name":
		return u.DisplayName
	case "created":
		return u.CreatedAt
	case "modified":
		return u.UpdatedAt
	}
	return nil
}

// Meta describes the user model for the API and form layers.
var Meta = &model.Meta{
	Name:              "user",
	VerboseName:       "user",
	VerboseNamePlural: "users",
	Fields: []model.Field{
		{Name: "email", Kind: model.Text, Required: true, MaxLength: 254},
		{Name: "display_name", Kind: model.Text, MaxLength: 150},
		{Name: "created", Kind: model.Time},
		{Name: "modified", Kind: model.Time},
	},
}
