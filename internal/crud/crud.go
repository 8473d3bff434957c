// Package crud provides reusable model-backed endpoints: list, detail, add,
// edit, delete, batch actions and child forms. The former view-mixin
// hierarchy is replaced by one explicit Config per model: a store, a store
// resolver for form references and a set of permission predicates.
package crud

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

// Config wires one model into the CRUD endpoints.
type Config struct {
	Store    model.Store
	Resolver model.Resolver

	// PageSize for the list endpoint; 0 means model pagination is disabled
	// and the list returns everything.
	PageSize int

	// TenantFrom extracts the requesting tenant; used to scope reference
	// fields in forms. Nil means no tenant scoping.
	TenantFrom func(c *gin.Context) string

	// Permission predicates. Nil AllowAdd/AllowEdit default to permit,
	// nil AllowDelete defaults to deny.
	AllowAdd    func(c *gin.Context) bool
	AllowEdit   func(c *gin.Context, inst model.Instance) bool
	AllowDelete func(c *gin.Context, inst model.Instance) bool
}

// Handler serves the CRUD endpoints of one model.
type Handler struct {
	cfg  Config
	meta *model.Meta
}

func New(cfg Config) *Handler {
	return &Handler{cfg: cfg, meta: cfg.Store.Meta()}
}

// Register attaches the endpoints to a router group:
//
//	GET    ""            list (paginated by ?page=)
//	POST   ""            batch actions (towel-style list POST)
//	POST   "/add"        create
//	GET    "/:pk"        detail
//	POST   "/:pk/edit"   update
//	POST   "/:pk/delete" delete
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.batch)
	rg.POST("/add", h.add)
	rg.GET("/:pk", h.detail)
	rg.POST("/:pk/edit", h.edit)
	rg.POST("/:pk/delete", h.delete)
}

func (h *Handler) tenant(c *gin.Context) string {
	if h.cfg.TenantFrom == nil {
		return ""
	}
	return h.cfg.TenantFrom(c)
}

func (h *Handler) allowAdd(c *gin.Context) bool {
	return h.cfg.AllowAdd == nil || h.cfg.AllowAdd(c)
}

func (h *Handler) allowEdit(c *gin.Context, inst model.Instance) bool {
	return h.cfg.AllowEdit == nil || h.cfg.AllowEdit(c, inst)
}

func (h *Handler) allowDelete(c *gin.Context, inst model.Instance) bool {
	return h.cfg.AllowDelete != nil && h.cfg.AllowDelete(c, inst)
}

// present flattens an instance for CRUD responses.
func (h *Handler) present(inst model.Instance) gin.H {
	out := gin.H{
		"pk":  inst.PK(),
		"str": inst.Label(),
	}
	for _, f := range h.meta.Fields {
		v := inst.Get(f.Name)
		if t, ok := v.(time.Time); ok {
			if t.IsZero() {
				v = nil
			} else {
				v = t.Format(time.RFC3339)
			}
		}
		out[f.Name] = v
	}
	return out
}

func (h *Handler) list(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.cfg.Store.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load objects"})
		return
	}

	offset, limit := 0, 0
	page, pages := 1, 1
	if h.cfg.PageSize > 0 {
		pages = (total + h.cfg.PageSize - 1) / h.cfg.PageSize
		if pages < 1 {
			pages = 1
		}
		if p, err := strconv.Atoi(c.Query("page")); err == nil && p >= 1 {
			page = p
		}
		if page > pages {
			page = pages
		}
		offset = (page - 1) * h.cfg.PageSize
		limit = h.cfg.PageSize
	}

	instances, err := h.cfg.Store.List(ctx, offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load objects"})
		return
	}

	objects := make([]gin.H, 0, len(instances))
	for _, inst := range instances {
		objects = append(objects, h.present(inst))
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"objects": objects,
		"page":    page,
		"pages":   pages,
		"total":   total,
	})
}

func (h *Handler) detail(c *gin.Context) {
	inst, ok := h.object(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "object": h.present(inst)})
}

// object loads the instance addressed by the :pk parameter, answering 404
// itself when it cannot.
func (h *Handler) object(c *gin.Context) (model.Instance, bool) {
	pk, err := strconv.ParseInt(c.Param("pk"), 10, 64)
	if err != nil || pk <= 0 {
		h.notFound(c)
		return nil, false
	}
	inst, err := h.cfg.Store.ByPK(c.Request.Context(), pk)
	if err != nil {
		h.notFound(c)
		return nil, false
	}
	return inst, true
}

func (h *Handler) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"ok":    false,
		"error": fmt.Sprintf("No %s matches the given query.", h.meta.VerboseName),
	})
}
