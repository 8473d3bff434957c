package domain

import (
	"errors"
	"time"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
	projectdomain "github.com/modelhub-io/go-modelapi-backend/internal/projects/domain"
	"github.com/modelhub-io/go-modelapi-backend/internal/users"
)

var ErrLogEntryNotFound = errors.New("log entry not found")

// Source codes for incoming log entries. The code is what gets stored; the
// label is what serializers show as the pretty value.
const (
	SourceWeb = "WEB"
	SourceEML = "EML"
	SourceSMS = "SMS"
	SourceMMS = "MMS"
)

// LogEntry is one reported event, tied to the account that reported it and
// the project it belongs to. Listings order by reported descending, newest
// first.
type LogEntry struct {
	ID        int64
	AccountID int64
	ProjectID int64
	Title     string
	Message   string
	Source    string
	Reported  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *LogEntry) PK() int64 { return e.ID }

func (e *LogEntry) Label() string { return e.Title }

func (e *LogEntry) Get(field string) any {
	switch field {
	case "account":
		return e.AccountID
	case "project":
		return e.ProjectID
	case "title":
		return e.Title
	case "message":
		return e.Message
	case "source":
		return e.Source
	case "reported":
		return e.Reported
	case "created":
		return e.CreatedAt
	case "modified":
		return e.UpdatedAt
	}
	return nil
}

var Meta = &model.Meta{
	Name:              "logentry",
	VerboseName:       "log entry",
	VerboseNamePlural: "log entries",
	Fields: []model.Field{
		{Name: "account", Kind: model.Ref, Ref: users.Meta, Required: true},
		{Name: "project", Kind: model.Ref, Ref: projectdomain.Meta, Required: true, TenantScoped: true},
		{Name: "title", Kind: model.Text, Required: true, MaxLength: 150},
		{Name: "message", Kind: model.Text, Required: true},
		{Name: "source", Kind: model.Choice, Required: true, Choices: []model.ChoicePair{
			{Code: SourceWeb, Label: "Online"},
			{Code: SourceEML, Label: "Email"},
			{Code: SourceSMS, Label: "SMS"},
			{Code: SourceMMS, Label: "MMS"},
		}},
		{Name: "reported", Kind: model.Time},
		{Name: "created", Kind: model.Time},
		{Name: "modified", Kind: model.Time},
	},
}
