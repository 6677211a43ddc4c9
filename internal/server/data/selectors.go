package data

import (
	"time"

	"gorm.io/gorm"

	"github.com/askhq/ask/internal/server/models"
	"github.com/askhq/ask/uid"
)

type SelectorFunc func(db *gorm.DB) *gorm.DB

func ByID(id uid.ID) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func ByUsername(username string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("username = ?", username)
	}
}

func ByEmail(email string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("email = ?", email)
	}
}

func ByKeyID(keyID string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("key_id = ?", keyID)
	}
}

func ByUserID(userID uid.ID) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func ByAuthorID(authorID uid.ID) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ?", authorID)
	}
}

func ByQuestionID(questionID uid.ID) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("question_id = ?", questionID)
	}
}

// ByExpiredBefore selects records with an expires_at at or before t.
func ByExpiredBefore(t time.Time) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at <= ?", t)
	}
}

// ByNewest orders records by creation time, most recent first.
func ByNewest() SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Order("id DESC")
	}
}

// ByOldest orders records by creation time, oldest first.
func ByOldest() SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC").Order("id ASC")
	}
}

func ByPagination(p models.Pagination) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		if p.Page == 0 && p.Limit == 0 {
			return db
		}
		page := p.Page
		if page < 1 {
			page = 1
		}
		return db.Offset(p.Limit * (page - 1)).Limit(p.Limit)
	}
}

// WithAuthor loads the Author association. It is only valid with get, which
// never runs a count query.
func WithAuthor() SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload("Author")
	}
}
