package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// firstOrNil 按主键顺序取第一条记录，不存在时返回 nil, nil。
// 未命中不输出 record not found 日志
func firstOrNil[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	result := query.
		Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey}}).
		Limit(1).
		Find(&row, conds...)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

// lockForUpdate SELECT ... FOR UPDATE，sqlite 下忽略
func lockForUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
