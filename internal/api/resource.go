package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/modelhub-io/go-modelapi-backend/internal/forms"
	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

// Resource is one registered (model, endpoint name) pair. It dispatches the
// collection endpoint (list + create), the detail endpoint and the
// semicolon-delimited set endpoint.
type Resource struct {
	api       *API
	name      string
	store     model.Store
	meta      *model.Meta
	allowPost bool
}

func (r *Resource) Name() string { return r.name }

func (r *Resource) allowHeader() string {
	if r.allowPost {
		return "GET, HEAD, OPTIONS, POST"
	}
	return "GET, HEAD, OPTIONS"
}

// handleCollection serves GET (paginated list), POST (create, when enabled)
// and OPTIONS on the collection endpoint.
func (r *Resource) handleCollection(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Header("Allow", r.allowHeader())
		c.Header("Content-Length", "0")
		c.Status(http.StatusOK)
		return

	case http.MethodGet, http.MethodHead:
		r.list(c)
		return

	case http.MethodPost:
		if r.allowPost {
			r.create(c)
			return
		}
	}

	format, _ := SelectFormat(c.Request)
	c.Header("Allow", r.allowHeader())
	RenderError(c, format, MethodNotAllowed())
}

func (r *Resource) list(c *gin.Context) {
	format, apiErr := SelectFormat(c.Request)
	if apiErr != nil {
		RenderError(c, "", apiErr)
		return
	}

	offset := intParam(c, "offset", 0)
	limit := intParam(c, "limit", 0)

	doc, err := r.api.SerializeCollection(c.Request.Context(), r, offset, limit)
	if err != nil {
		RenderError(c, format, NewError(http.StatusInternalServerError, "Failed to load objects"))
		return
	}
	Render(c, http.StatusOK, format, doc)
}

// create validates the decoded body through a create-only model form and
// persists it. 201 responses carry no body, only the Location of the new
// detail endpoint.
func (r *Resource) create(c *gin.Context) {
	format, apiErr := SelectFormat(c.Request)
	if apiErr != nil {
		RenderError(c, "", apiErr)
		return
	}

	values, apiErr := DecodeBody(c.Request)
	if apiErr != nil {
		RenderError(c, format, apiErr)
		return
	}

	form := forms.New(r.meta, r.api)
	form.Bind(values)
	if !form.Validate(c.Request.Context()) {
		RenderError(c, format, ValidationFailed(form.Errors))
		return
	}

	inst, err := r.store.Create(c.Request.Context(), form.Cleaned())
	if err != nil {
		RenderError(c, format, NewError(http.StatusInternalServerError, "Failed to save object"))
		return
	}

	location, _ := r.api.Reverse(r.meta.Name, "detail", inst.PK())
	c.Header("Location", location)
	c.Header("Content-Length", "0")
	c.Status(http.StatusCreated)
}

// handleItem serves the detail endpoint (single pk) and the set endpoint
// (pk1;pk2;...). Set lookups are all-or-nothing: one missing member fails
// the whole request.
func (r *Resource) handleItem(c *gin.Context) {
	const allow = "GET, HEAD, OPTIONS"

	switch c.Request.Method {
	case http.MethodOptions:
		c.Header("Allow", allow)
		c.Header("Content-Length", "0")
		c.Status(http.StatusOK)
		return
	case http.MethodGet, http.MethodHead:
	default:
		format, _ := SelectFormat(c.Request)
		c.Header("Allow", allow)
		RenderError(c, format, MethodNotAllowed())
		return
	}

	format, apiErr := SelectFormat(c.Request)
	if apiErr != nil {
		RenderError(c, "", apiErr)
		return
	}

	key := c.Param("key")
	if strings.Contains(key, ";") {
		r.set(c, format, key)
		return
	}
	r.detail(c, format, key)
}

func (r *Resource) detail(c *gin.Context, format Format, key string) {
	notFound := NotFound(fmt.Sprintf("No %s matches the given query.", r.meta.VerboseName))

	pk, err := strconv.ParseInt(key, 10, 64)
	if err != nil || pk <= 0 {
		RenderError(c, format, notFound)
		return
	}

	inst, err := r.store.ByPK(c.Request.Context(), pk)
	if err != nil {
		RenderError(c, format, notFound)
		return
	}

	depth := 0
	if c.Query("full") == "1" {
		depth = 1
	}
	Render(c, http.StatusOK, format, r.api.Serialize(c.Request.Context(), r.meta, inst, depth))
}

// set resolves a semicolon-delimited pk list. The response carries the
// objects only, never pagination meta.
func (r *Resource) set(c *gin.Context, format Format, key string) {
	someMissing := NotFound("Some objects do not exist.")

	seen := map[int64]bool{}
	var pks []int64
	for _, part := range strings.Split(key, ";") {
		if part == "" {
			continue
		}
		pk, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			RenderError(c, format, someMissing)
			return
		}
		if !seen[pk] {
			seen[pk] = true
			pks = append(pks, pk)
		}
	}
	if len(pks) == 0 {
		RenderError(c, format, someMissing)
		return
	}

	instances, err := r.store.ByPKs(c.Request.Context(), pks)
	if err != nil {
		RenderError(c, format, NewError(http.StatusInternalServerError, "Failed to load objects"))
		return
	}
	if len(instances) != len(pks) {
		RenderError(c, format, someMissing)
		return
	}

	objects := make([]any, 0, len(instances))
	for _, inst := range instances {
		objects = append(objects, r.api.Serialize(c.Request.Context(), r.meta, inst, 0))
	}
	Render(c, http.StatusOK, format, Document{"objects": objects})
}

func intParam(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
