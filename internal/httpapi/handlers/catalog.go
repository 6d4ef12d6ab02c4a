package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mall-console/internal/common"
)

// Categories returns the cached category list, or the tree with view=tree.
func (h *Handler) Categories(c *gin.Context) {
	ctx := c.Request.Context()
	switch c.DefaultQuery("view", "list") {
	case "tree":
		tree, err := h.App.Categories.LoadTree(ctx)
		if err != nil {
			failErr(c, err)
			return
		}
		common.OK(c, tree)
	case "list":
		list, err := h.App.Categories.LoadList(ctx)
		if err != nil {
			failErr(c, err)
			return
		}
		common.OK(c, list)
	default:
		common.Fail(c, http.StatusBadRequest, 10007, "view must be list or tree")
	}
}

func (h *Handler) CategoryPath(c *gin.Context) {
	if _, err := h.App.Categories.LoadList(c.Request.Context()); err != nil {
		failErr(c, err)
		return
	}
	id := c.Param("id")
	common.OK(c, gin.H{
		"id":   id,
		"name": h.App.Categories.Name(id),
		"path": h.App.Categories.PathString(id),
	})
}

func (h *Handler) Units(c *gin.Context) {
	units, err := h.App.Units.LoadList(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, units)
}
