package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

// API is the process-wide resource registry for one API version. Resources
// are registered once at startup and the registry is read-only afterwards.
type API struct {
	name     string
	prefix   string
	pageSize int

	resources []*Resource
	byName    map[string]*Resource
	canonical map[string]*Resource // meta name -> canonical resource
}

// DefaultPageSize is the collection page size used when the caller does not
// configure one.
const DefaultPageSize = 20

// New creates an API registry. name is the version label ("v1"), prefix the
// mount path without trailing slash ("/api/v1").
func New(name, prefix string, pageSize int) *API {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &API{
		name:      name,
		prefix:    strings.TrimSuffix(prefix, "/"),
		pageSize:  pageSize,
		byName:    map[string]*Resource{},
		canonical: map[string]*Resource{},
	}
}

func (a *API) Name() string { return a.name }

// ResourceOptions customizes a single registration.
type ResourceOptions struct {
	// Name overrides the endpoint name; defaults to the model meta name.
	Name string
	// AllowPost enables create requests on the collection endpoint.
	AllowPost bool
}

// Register adds a resource for the given store. The first registration of a
// model becomes its canonical location; registering the same endpoint name
// twice is an error.
func (a *API) Register(store model.Store, opts ResourceOptions) (*Resource, error) {
	meta := store.Meta()
	name := opts.Name
	if name == "" {
		name = meta.Name
	}
	if _, exists := a.byName[name]; exists {
		return nil, fmt.Errorf("resource %q already registered", name)
	}

	res := &Resource{
		api:       a,
		name:      name,
		store:     store,
		meta:      meta,
		allowPost: opts.AllowPost,
	}
	a.resources = append(a.resources, res)
	a.byName[name] = res
	if _, exists := a.canonical[meta.Name]; !exists {
		a.canonical[meta.Name] = res
	}
	return res, nil
}

// StoreFor resolves the store serving a model meta, or nil when the model is
// not registered. Satisfies model.Resolver for form validation.
func (a *API) StoreFor(meta *model.Meta) model.Store {
	if meta == nil {
		return nil
	}
	if res, ok := a.canonical[meta.Name]; ok {
		return res.store
	}
	return nil
}

// Reverse produces the canonical URI of an API endpoint for a registered
// model: action is "list", "detail" or "set". detail requires exactly one
// primary key, set at least one.
func (a *API) Reverse(metaName, action string, pks ...int64) (string, error) {
	res, ok := a.canonical[metaName]
	if !ok {
		return "", fmt.Errorf("no resource registered for model %q", metaName)
	}

	base := a.prefix + "/" + res.name + "/"
	switch action {
	case "list":
		return base, nil
	case "detail":
		if len(pks) != 1 {
			return "", fmt.Errorf("reverse %q detail: exactly one primary key required", metaName)
		}
		return base + strconv.FormatInt(pks[0], 10) + "/", nil
	case "set":
		if len(pks) == 0 {
			return "", fmt.Errorf("reverse %q set: at least one primary key required", metaName)
		}
		parts := make([]string, len(pks))
		for i, pk := range pks {
			parts[i] = strconv.FormatInt(pk, 10)
		}
		return base + strings.Join(parts, ";") + "/", nil
	}
	return "", fmt.Errorf("reverse %q: unknown action %q", metaName, action)
}

// RootURI is the URI of the API overview document.
func (a *API) RootURI() string { return a.prefix + "/" }

// Mount attaches the API routes to a gin router. Method dispatch happens
// inside the handlers so that every endpoint can answer OPTIONS and reject
// unsupported methods with a proper Allow header.
func (a *API) Mount(r gin.IRouter) {
	r.Any(a.prefix+"/", a.root)
	for _, res := range a.resources {
		base := a.prefix + "/" + res.name
		r.Any(base+"/", res.handleCollection)
		r.Any(base+"/:key/", res.handleItem)
	}
}

// root serves the API overview: every registered resource with its URI, plus
// one direct entry per canonical resource.
func (a *API) root(c *gin.Context) {
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

	doc := Document{
		"__str__": a.name,
		"__uri__": a.RootURI(),
	}
	list := make([]any, 0, len(a.resources))
	for _, res := range a.resources {
		entry := Document{
			"__str__": res.name,
			"__uri__": a.prefix + "/" + res.name + "/",
		}
		list = append(list, entry)
		if a.canonical[res.meta.Name] == res {
			doc[res.meta.Name] = entry
		}
	}
	doc["resources"] = list

	Render(c, http.StatusOK, format, doc)
}
