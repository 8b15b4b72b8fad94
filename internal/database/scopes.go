package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/minitrello-api/internal/utils"
)

// Window limits a query to the rows selected by q
func Window(q utils.PageQuery) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset).Limit(q.Limit)
	}
}

// MatchAny keeps rows where any of columns contains term, ignoring case. An empty term matches everything.
func MatchAny(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, column := range columns {
			clauses[i] = "LOWER(" + column + ") LIKE ? ESCAPE '!'"
			args[i] = pattern
		}
		return db.Where(strings.Join(clauses, " OR "), args...)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
