package crud

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

// RegisterChild mounts inline-form endpoints managing children bound to a
// parent object:
//
//	POST {parent group}/:pk/{child resource}/add
//	POST {parent group}/:pk/{child resource}/:childpk/edit
//
// The parent must exist (404 otherwise) and its pk is forced into the
// child's parentField after validation, so clients cannot re-home the child.
func (h *Handler) RegisterChild(parentRG *gin.RouterGroup, parentStore model.Store, parentField, name string) {
	parentRG.POST("/:pk/"+name+"/add", h.childAdd(parentStore, parentField))
	parentRG.POST("/:pk/"+name+"/:childpk/edit", h.childEdit(parentStore, parentField))
}

// parentObject loads the parent addressed by the :pk parameter, answering 404
// with the parent's verbose name when it cannot.
func parentObject(c *gin.Context, parentStore model.Store) (model.Instance, bool) {
	parentMeta := parentStore.Meta()
	pk, err := strconv.ParseInt(c.Param("pk"), 10, 64)
	if err != nil || pk <= 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"ok":    false,
			"error": fmt.Sprintf("No %s matches the given query.", parentMeta.VerboseName),
		})
		return nil, false
	}
	parent, err := parentStore.ByPK(c.Request.Context(), pk)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"ok":    false,
			"error": fmt.Sprintf("No %s matches the given query.", parentMeta.VerboseName),
		})
		return nil, false
	}
	return parent, true
}

func (h *Handler) childAdd(parentStore model.Store, parentField string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.allowAdd(c) {
			c.JSON(http.StatusForbidden, gin.H{
				"ok":    false,
				"error": fmt.Sprintf("You are not allowed to add %s.", h.meta.VerboseNamePlural),
			})
			return
		}

		parent, ok := parentObject(c, parentStore)
		if !ok {
			return
		}

		form, ok := h.bindForm(c, map[string]any{parentField: parent.PK()})
		if !ok {
			return
		}

		inst, err := h.cfg.Store.Create(c.Request.Context(), form.Cleaned())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to save object"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"ok":     true,
			"object": h.present(inst),
			"messages": []string{
				fmt.Sprintf("The %s has been successfully saved.", h.meta.VerboseName),
			},
		})
	}
}

// childEdit updates a child in place. The child must belong to the addressed
// parent; a child of another parent answers 404 as if it did not exist.
func (h *Handler) childEdit(parentStore model.Store, parentField string) gin.HandlerFunc {
	return func(c *gin.Context) {
		parent, ok := parentObject(c, parentStore)
		if !ok {
			return
		}

		childPK, err := strconv.ParseInt(c.Param("childpk"), 10, 64)
		if err != nil || childPK <= 0 {
			h.notFound(c)
			return
		}
		child, err := h.cfg.Store.ByPK(c.Request.Context(), childPK)
		if err != nil {
			h.notFound(c)
			return
		}
		if pk, ok := child.Get(parentField).(int64); !ok || pk != parent.PK() {
			h.notFound(c)
			return
		}

		if !h.allowEdit(c, child) {
			c.JSON(http.StatusForbidden, gin.H{
				"ok":    false,
				"error": fmt.Sprintf("You are not allowed to edit this %s.", h.meta.VerboseName),
			})
			return
		}

		form, ok := h.bindForm(c, map[string]any{parentField: parent.PK()})
		if !ok {
			return
		}

		updated, err := h.cfg.Store.Update(c.Request.Context(), child.PK(), form.Cleaned())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to save object"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":     true,
			"object": h.present(updated),
			"messages": []string{
				fmt.Sprintf("The %s has been successfully saved.", h.meta.VerboseName),
			},
		})
	}
}
