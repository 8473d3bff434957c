// Package forms binds decoded request bodies to model descriptors and
// validates them before anything is persisted. It replaces the host
// framework's model-form machinery with explicit composition: a form knows
// its Meta, a store resolver for reference lookups and an optional tenant.
package forms

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

const (
	msgRequired      = "This field is required."
	msgWholeNumber   = "Enter a whole number."
	msgValidDateTime = "Enter a valid date/time."
	msgValidValue    = "Enter a valid value."
	msgInvalidRef    = "Select a valid choice. That choice is not one of the available choices."
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Form is a create/update model form. Zero instance binding only: every
// validated form produces values for a fresh Create or a targeted Update,
// the form itself never loads rows.
type Form struct {
	// Tenant restricts reference fields carrying the TenantScoped tag to
	// rows of this tenant. Empty means no restriction.
	Tenant string

	// Errors maps field names to their error messages after Validate.
	Errors map[string][]string

	meta     *model.Meta
	resolver model.Resolver
	values   map[string]any
	cleaned  model.Values
}

// New creates a form for the given model. resolver supplies the stores used
// to check reference fields; it may be nil, which skips existence checks.
func New(meta *model.Meta, resolver model.Resolver) *Form {
	return &Form{
		meta:     meta,
		resolver: resolver,
		Errors:   map[string][]string{},
	}
}

// Bind attaches decoded body values. Unknown keys are ignored.
func (f *Form) Bind(values map[string]any) {
	f.values = values
}

// Cleaned returns the typed values of a successfully validated form.
func (f *Form) Cleaned() model.Values {
	return f.cleaned
}

func (f *Form) addError(field, msg string) {
	f.Errors[field] = append(f.Errors[field], msg)
}

// Validate checks every field of the meta against the bound values and
// reports whether the form is valid. Field errors accumulate in Errors.
func (f *Form) Validate(ctx context.Context) bool {
	f.Errors = map[string][]string{}
	f.cleaned = model.Values{}

	for _, field := range f.meta.Fields {
		raw, present := f.values[field.Name]
		if !present || isEmpty(raw) {
			if field.Required {
				f.addError(field.Name, msgRequired)
			}
			continue
		}

		switch field.Kind {
		case model.Text:
			f.cleanText(field, raw)
		case model.Int:
			f.cleanInt(field, raw)
		case model.Bool:
			f.cleanBool(field, raw)
		case model.Time:
			f.cleanTime(field, raw)
		case model.Choice:
			f.cleanChoice(field, raw)
		case model.Ref:
			f.cleanRef(ctx, field, raw)
		}
	}

	return len(f.Errors) == 0
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func (f *Form) cleanText(field model.Field, raw any) {
	s, ok := raw.(string)
	if !ok {
		s = fmt.Sprintf("%v", raw)
	}
	if field.MaxLength > 0 && len([]rune(s)) > field.MaxLength {
		f.addError(field.Name, fmt.Sprintf(
			"Ensure this value has at most %d characters (it has %d).",
			field.MaxLength, len([]rune(s))))
		return
	}
	f.cleaned[field.Name] = s
}

func (f *Form) cleanInt(field model.Field, raw any) {
	n, err := parseInt(raw)
	if err != nil {
		f.addError(field.Name, msgWholeNumber)
		return
	}
	f.cleaned[field.Name] = n
}

func (f *Form) cleanBool(field model.Field, raw any) {
	switch v := raw.(type) {
	case bool:
		f.cleaned[field.Name] = v
		return
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "on", "yes":
			f.cleaned[field.Name] = true
			return
		case "false", "0", "off", "no":
			f.cleaned[field.Name] = false
			return
		}
	}
	f.addError(field.Name, msgValidValue)
}

func (f *Form) cleanTime(field model.Field, raw any) {
	switch v := raw.(type) {
	case time.Time:
		f.cleaned[field.Name] = v
		return
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				f.cleaned[field.Name] = t
				return
			}
		}
	}
	f.addError(field.Name, msgValidDateTime)
}

func (f *Form) cleanChoice(field model.Field, raw any) {
	code := fmt.Sprintf("%v", raw)
	for _, c := range field.Choices {
		if c.Code == code {
			f.cleaned[field.Name] = code
			return
		}
	}
	f.addError(field.Name, fmt.Sprintf(
		"Select a valid choice. %s is not one of the available choices.", code))
}

// cleanRef validates that the referenced row exists. Fields tagged as
// tenant-scoped resolve through a tenant-restricted store, so a pk outside
// the tenant fails exactly like a missing row.
func (f *Form) cleanRef(ctx context.Context, field model.Field, raw any) {
	pk, err := parseInt(raw)
	if err != nil || pk <= 0 {
		f.addError(field.Name, msgInvalidRef)
		return
	}

	var store model.Store
	if f.resolver != nil {
		store = f.resolver.StoreFor(field.Ref)
	}
	if store != nil {
		if field.TenantScoped && f.Tenant != "" {
			if scoper, ok := store.(model.TenantScoper); ok {
				store = scoper.ForTenant(f.Tenant)
			}
		}
		if _, err := store.ByPK(ctx, pk); err != nil {
			f.addError(field.Name, msgInvalidRef)
			return
		}
	}

	f.cleaned[field.Name] = pk
}

func parseInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("not a whole number: %v", v)
		}
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}
	return 0, fmt.Errorf("not a number: %v", raw)
}
