package crud

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/modelhub-io/go-modelapi-backend/internal/api"
	"github.com/modelhub-io/go-modelapi-backend/internal/forms"
)

// bindForm decodes the request body and runs it through a model form. extra
// values (e.g. a forced parent reference) are applied after decoding, so
// they cannot be overridden by the client.
func (h *Handler) bindForm(c *gin.Context, extra map[string]any) (*forms.Form, bool) {
	values, apiErr := api.DecodeBody(c.Request)
	if apiErr != nil {
		c.JSON(apiErr.Status, gin.H{"ok": false, "error": apiErr.Message})
		return nil, false
	}
	for k, v := range extra {
		values[k] = v
	}

	form := forms.New(h.meta, h.cfg.Resolver)
	form.Tenant = h.tenant(c)
	form.Bind(values)
	if !form.Validate(c.Request.Context()) {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "Validation failed",
			"form":  form.Errors,
		})
		return nil, false
	}
	return form, true
}

func (h *Handler) add(c *gin.Context) {
	if !h.allowAdd(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"ok":    false,
			"error": fmt.Sprintf("You are not allowed to add %s.", h.meta.VerboseNamePlural),
		})
		return
	}

	form, ok := h.bindForm(c, nil)
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

func (h *Handler) edit(c *gin.Context) {
	inst, ok := h.object(c)
	if !ok {
		return
	}
	if !h.allowEdit(c, inst) {
		c.JSON(http.StatusForbidden, gin.H{
			"ok":    false,
			"error": fmt.Sprintf("You are not allowed to edit this %s.", h.meta.VerboseName),
		})
		return
	}

	form, ok := h.bindForm(c, nil)
	if !ok {
		return
	}

	updated, err := h.cfg.Store.Update(c.Request.Context(), inst.PK(), form.Cleaned())
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

func (h *Handler) delete(c *gin.Context) {
	inst, ok := h.object(c)
	if !ok {
		return
	}
	if !h.allowDelete(c, inst) {
		c.JSON(http.StatusForbidden, gin.H{
			"ok":    false,
			"error": fmt.Sprintf("You are not allowed to delete this %s.", h.meta.VerboseName),
		})
		return
	}

	if err := h.cfg.Store.Delete(c.Request.Context(), inst.PK()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to delete object"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"messages": []string{
			fmt.Sprintf("The %s has been successfully deleted.", h.meta.VerboseName),
		},
	})
}
