package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePageQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
		search string
	}{
		{"defaults", "", 1, 20, 0, ""},
		{"explicit", "page=3&limit=10", 3, 10, 20, ""},
		{"limit clamped", "limit=1000", 1, 50, 0, ""},
		{"negative page", "page=-2", 1, 20, 0, ""},
		{"garbage limit", "limit=abc", 1, 20, 0, ""},
		{"search trimmed", "q=%20ali%20", 1, 20, 0, "ali"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/api/users?"+tt.query, nil)

			q := ParsePageQuery(c, 50)
			assert.Equal(t, tt.page, q.Page)
			assert.Equal(t, tt.limit, q.Limit)
			assert.Equal(t, tt.offset, q.Offset)
			assert.Equal(t, tt.search, q.Search)
		})
	}
}

func TestPageQuery_Meta(t *testing.T) {
	q := PageQuery{Page: 2, Limit: 10, Offset: 10}

	assert.True(t, q.Meta(21).HasMore)
	assert.False(t, q.Meta(20).HasMore)
	assert.Equal(t, int64(20), q.Meta(20).Total)
}
