package repository

import "gorm.io/gorm"

// maxPageSize 单页上限，列表接口无论传入多少都不会超过
const maxPageSize = 200

// pageWindow 规范化页码与页大小，pageSize<=0 表示不分页
func pageWindow(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		return 0, 0
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}

// applyPagination 按页截取查询结果
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	limit, offset := pageWindow(page, pageSize)
	if query == nil || limit == 0 {
		return query
	}
	return query.Limit(limit).Offset(offset)
}
