package models

// User is a registered account. Username and Email are each unique across
// all users.
type User struct {
	Model

	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash []byte `gorm:"not null"`
}
