package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/techsolutions/pos/internal/domain/shared"
)

// pathID parses the :id path parameter. On failure it writes a 400 and
// returns false.
func (h *BaseHandler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid ID format")
		return 0, false
	}
	return id, true
}

// pageOf fills in the repository defaults for unset paging parameters
func pageOf(page, pageSize int) (int, int) {
	defaults := shared.DefaultFilter()
	if page <= 0 {
		page = defaults.Page
	}
	if pageSize <= 0 {
		pageSize = defaults.PageSize
	}
	return page, pageSize
}
