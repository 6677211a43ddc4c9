package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/askhq/ask/uid"
)

// Modelable is an interface that determines if a struct is a model. It's simply models that compose models.Model
type Modelable interface {
	IsAModel() // there's nothing specific about this function except that all Model structs will have it.
}

type Model struct {
	ID uid.ID `gorm:"primaryKey;autoIncrement:false"`
	// CreatedAt is set by GORM to time.Now when a record is first created.
	// See https://gorm.io/docs/conventions.html#Timestamp-Tracking
	CreatedAt time.Time
	// UpdatedAt is set by GORM to time.Now when a record is updated.
	UpdatedAt time.Time
}

func (Model) IsAModel() {}

// BeforeCreate sets an ID if one does not already exist. The ID can not come
// from a `gorm:"default"` tag because it is generated by the process, not the
// database.
func (m *Model) BeforeCreate(_ *gorm.DB) error {
	if m.ID == 0 {
		m.ID = uid.New()
	}

	return nil
}
