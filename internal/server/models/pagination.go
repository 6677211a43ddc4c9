package models

import (
	"math"
)

// DefaultPageSize is the number of questions shown on each page of the index.
const DefaultPageSize = 20

type Pagination struct {
	Page       int
	Limit      int
	TotalCount int
	PageCount  int
}

// NewPagination returns a Pagination for page, using DefaultPageSize. Pages
// start at 1; lower values select the first page.
func NewPagination(page int) Pagination {
	if page < 1 {
		page = 1
	}
	return Pagination{Page: page, Limit: DefaultPageSize}
}

func (p *Pagination) SetTotalCount(count int) {
	p.TotalCount = count
	if p.Limit > 0 {
		p.PageCount = int(math.Ceil(float64(count) / float64(p.Limit)))
	}
}

func (p Pagination) HasPrevious() bool {
	return p.Page > 1
}

func (p Pagination) HasNext() bool {
	return p.Page < p.PageCount
}
