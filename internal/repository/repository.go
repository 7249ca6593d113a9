package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxPage keeps (Page-1)*Limit far from int overflow.
const maxPage = 100000

// ListFilter narrows and pages order listings.
type ListFilter struct {
	Status string
	Page   int
	Limit  int
}

// Normalize clamps paging to sane bounds.
func (f ListFilter) Normalize(defaultLimit int) ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Page > maxPage {
		f.Page = maxPage
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// forUpdate adds a row lock where the dialect has one. SQLite serializes writers instead.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
