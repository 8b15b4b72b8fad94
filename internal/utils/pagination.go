package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/minitrello-api/internal/constants"
)

// PageQuery is one window of a listing plus an optional search term
type PageQuery struct {
	Page   int
	Limit  int
	Offset int
	Search string
}

// PageMeta is returned next to every paged listing
type PageMeta struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// ParsePageQuery reads page, limit and q. An oversized limit is clamped to maxLimit rather than reset.
func ParsePageQuery(c *gin.Context, maxLimit int) PageQuery {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	switch {
	case err != nil || limit < 1:
		limit = constants.DefaultPageSize
	case limit > maxLimit:
		limit = maxLimit
	}

	return PageQuery{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
		Search: strings.TrimSpace(c.Query("q")),
	}
}

// Meta describes the window q selected out of total rows
func (q PageQuery) Meta(total int64) PageMeta {
	return PageMeta{
		Page:    q.Page,
		Limit:   q.Limit,
		Total:   total,
		HasMore: int64(q.Offset+q.Limit) < total,
	}
}
