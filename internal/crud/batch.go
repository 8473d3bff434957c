package crud

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/modelhub-io/go-modelapi-backend/internal/api"
	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

// batch handles actions posted to the list endpoint. The only built-in
// action is delete_selected: without confirm it returns the deletable
// selection for a confirmation round-trip, with confirm it deletes the
// items one by one.
//
// Deliberately NOT transactional: each delete commits on its own, so a
// mid-batch failure leaves the earlier deletions in place and the response
// reports the outcome per item.
func (h *Handler) batch(c *gin.Context) {
	values, apiErr := api.DecodeBody(c.Request)
	if apiErr != nil {
		c.JSON(apiErr.Status, gin.H{"ok": false, "error": apiErr.Message})
		return
	}

	action, _ := values["action"].(string)
	if action != "delete_selected" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown batch action"})
		return
	}

	pks := parsePKs(values["pks"])
	if len(pks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "no objects selected"})
		return
	}

	instances, err := h.cfg.Store.ByPKs(c.Request.Context(), pks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load objects"})
		return
	}

	var deletable []model.Instance
	excluded := 0
	for _, inst := range instances {
		if h.allowDelete(c, inst) {
			deletable = append(deletable, inst)
		} else {
			excluded++
		}
	}

	if len(deletable) == 0 {
		c.JSON(http.StatusForbidden, gin.H{
			"ok":    false,
			"error": "You are not allowed to delete any object in the selection.",
		})
		return
	}

	messages := []string{}
	if excluded > 0 {
		messages = append(messages,
			"Deletion of some objects not allowed. Those have been excluded from the selection already.")
	}

	if !isTruthy(values["confirm"]) {
		objects := make([]gin.H, 0, len(deletable))
		for _, inst := range deletable {
			objects = append(objects, h.present(inst))
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":               true,
			"confirm_required": true,
			"action":           action,
			"objects":          objects,
			"messages":         messages,
		})
		return
	}

	deleted := make([]int64, 0, len(deletable))
	failed := make([]int64, 0)
	for _, inst := range deletable {
		if err := h.cfg.Store.Delete(c.Request.Context(), inst.PK()); err != nil {
			failed = append(failed, inst.PK())
			continue
		}
		deleted = append(deleted, inst.PK())
	}

	if len(failed) > 0 {
		messages = append(messages, "Some objects could not be deleted.")
		c.JSON(http.StatusOK, gin.H{
			"ok":       false,
			"deleted":  deleted,
			"failed":   failed,
			"messages": messages,
		})
		return
	}

	messages = append(messages, "Deletion successful.")
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"deleted":  deleted,
		"messages": messages,
	})
}

// parsePKs accepts a JSON array, a single number or a comma/semicolon
// separated string of primary keys. Duplicates collapse, order is kept.
func parsePKs(raw any) []int64 {
	var parts []any
	switch v := raw.(type) {
	case []any:
		parts = v
	case string:
		for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' }) {
			parts = append(parts, s)
		}
	case float64, int64, int:
		parts = []any{v}
	default:
		return nil
	}

	seen := map[int64]bool{}
	var pks []int64
	for _, p := range parts {
		var pk int64
		switch n := p.(type) {
		case float64:
			pk = int64(n)
		case int64:
			pk = n
		case int:
			pk = int64(n)
		case string:
			parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
			if err != nil {
				continue
			}
			pk = parsed
		default:
			continue
		}
		if pk > 0 && !seen[pk] {
			seen[pk] = true
			pks = append(pks, pk)
		}
	}
	return pks
}

func isTruthy(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "1", "true", "on", "yes":
			return true
		}
	case float64:
		return v != 0
	}
	return false
}
