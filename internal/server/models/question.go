package models

import (
	"github.com/askhq/ask/uid"
)

type Question struct {
	Model

	Title   string `gorm:"not null"`
	Content string `gorm:"not null"`

	AuthorID uid.ID `gorm:"index;not null"`
	Author   *User

	// Answers is only populated by data.GetQuestion.
	Answers []Answer
}

type Answer struct {
	Model

	Content string `gorm:"not null"`

	AuthorID uid.ID `gorm:"index;not null"`
	Author   *User

	QuestionID uid.ID `gorm:"index;not null"`
}
