package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type sqlDialect string

const (
	dialectSQLite   sqlDialect = "sqlite"
	dialectPostgres sqlDialect = "postgres"
	dialectMySQL    sqlDialect = "mysql"

	likeEscapeChar = "!"
)

// dialectOf 识别连接方言，未知方言按 sqlite 处理
func dialectOf(db *gorm.DB) sqlDialect {
	if db == nil || db.Dialector == nil {
		return dialectSQLite
	}
	return parseDialect(db.Dialector.Name())
}

func parseDialect(name string) sqlDialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx":
		return dialectPostgres
	case "mysql", "mariadb":
		return dialectMySQL
	default:
		return dialectSQLite
	}
}

// jsonText JSON 列中顶层字段的文本值
func (d sqlDialect) jsonText(column, key string) string {
	switch d {
	case dialectPostgres:
		return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
	case dialectMySQL:
		return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(%s, '$.%s'))", column, key)
	default:
		return fmt.Sprintf("json_extract(%s, '$.%s')", column, key)
	}
}

// likeOperator postgres 使用 ILIKE 做大小写不敏感匹配
func (d sqlDialect) likeOperator() string {
	if d == dialectPostgres {
		return "ILIKE"
	}
	return "LIKE"
}

// keywordSearch 多列模糊匹配条件及参数，关键字中的 % 与 _ 按字面匹配
func keywordSearch(db *gorm.DB, keyword string, columns ...string) (string, []interface{}) {
	return dialectOf(db).keywordSearch(keyword, columns...)
}

func (d sqlDialect) keywordSearch(keyword string, columns ...string) (string, []interface{}) {
	pattern := "%" + escapeLike(strings.TrimSpace(keyword)) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ? ESCAPE '%s'", column, d.likeOperator(), likeEscapeChar))
		args = append(args, pattern)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

var likeEscaper = strings.NewReplacer(
	likeEscapeChar, likeEscapeChar+likeEscapeChar,
	"%", likeEscapeChar+"%",
	"_", likeEscapeChar+"_",
)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
