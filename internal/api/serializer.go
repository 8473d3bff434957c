package api

import (
	"context"
	"fmt"
	"time"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

// Serialize converts one instance into a Document. Fixed keys: __pk__,
// __str__, __uri__ and __pretty__ (labels for choice fields). Reference
// fields serialize as the referenced detail URI; with depth > 0 the
// reference is expanded into a nested Document instead. Expansion stops
// after one level.
//
// References to models without a canonical resource in this API are omitted.
func (a *API) Serialize(ctx context.Context, meta *model.Meta, inst model.Instance, depth int) Document {
	uri, _ := a.Reverse(meta.Name, "detail", inst.PK())

	pretty := Document{}
	doc := Document{
		"__pk__":     inst.PK(),
		"__str__":    inst.Label(),
		"__uri__":    uri,
		"__pretty__": pretty,
	}

	for _, f := range meta.Fields {
		switch f.Kind {
		case model.Ref:
			pk := toInt64(inst.Get(f.Name))
			if pk == 0 {
				doc[f.Name] = nil
				continue
			}
			refRes, ok := a.canonical[f.Ref.Name]
			if !ok {
				continue
			}
			refURI, err := a.Reverse(f.Ref.Name, "detail", pk)
			if err != nil {
				continue
			}
			doc[f.Name] = refURI
			if depth > 0 {
				if refInst, err := refRes.store.ByPK(ctx, pk); err == nil {
					doc[f.Name] = a.Serialize(ctx, refRes.meta, refInst, depth-1)
				}
			}

		case model.Choice:
			v := inst.Get(f.Name)
			if v == nil {
				doc[f.Name] = nil
				pretty[f.Name] = nil
				continue
			}
			code := fmt.Sprintf("%v", v)
			doc[f.Name] = code
			pretty[f.Name] = f.ChoiceLabel(code)

		case model.Time:
			if t, ok := inst.Get(f.Name).(time.Time); ok && !t.IsZero() {
				doc[f.Name] = t
			} else {
				doc[f.Name] = nil
			}

		default:
			doc[f.Name] = inst.Get(f.Name)
		}
	}

	return doc
}

// SerializeCollection builds the paginated list document of a resource:
// an "objects" sequence plus a "meta" map with limit, offset, total and
// next/previous links (null when out of range). Offset defaults to 0, limit
// to the configured page size, clamped to the total count.
func (a *API) SerializeCollection(ctx context.Context, res *Resource, offset, limit int) (Document, error) {
	total, err := res.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = a.pageSize
	}
	if limit > total {
		limit = total
	}

	var instances []model.Instance
	if limit > 0 && offset < total {
		instances, err = res.store.List(ctx, offset, limit)
		if err != nil {
			return nil, err
		}
	}

	objects := make([]any, 0, len(instances))
	for _, inst := range instances {
		objects = append(objects, a.Serialize(ctx, res.meta, inst, 0))
	}

	listURI, _ := a.Reverse(res.meta.Name, "list")

	var next, previous any
	if limit > 0 && offset+limit < total {
		next = fmt.Sprintf("%s?limit=%d&offset=%d", listURI, limit, offset+limit)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		previous = fmt.Sprintf("%s?limit=%d&offset=%d", listURI, limit, prev)
	}

	return Document{
		"objects": objects,
		"meta": Document{
			"limit":    limit,
			"offset":   offset,
			"total":    total,
			"next":     next,
			"previous": previous,
		},
	}, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case nil:
		return 0
	}
	return 0
}
