package models

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// EmailPattern is the localpart@domain.tld shape accepted for user emails.
var EmailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// User represents a registered author.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" bson:"email"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null" bson:"password"` // bcrypt hash only
	FirstName string    `json:"firstName" gorm:"type:varchar(100)" bson:"firstName"`
	LastName  string    `json:"lastName" gorm:"type:varchar(100)" bson:"lastName"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks the profile fields. The password is validated in its raw
// form before hashing, see ValidateRawPassword.
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Email,
			validation.Required.Error("Email is required"),
			validation.Match(EmailPattern).Error("Please fill a valid email address"),
		),
		validation.Field(&u.FirstName,
			validation.Length(4, 0).Error("Firstname should be at least 4 characters long"),
		),
		validation.Field(&u.LastName,
			validation.Length(4, 0).Error("Lastname should be at least 4 characters long"),
		),
	)
}

// ValidateRawPassword checks a plaintext password against the minimum rules.
func ValidateRawPassword(password string) error {
	return validation.Errors{
		"password": validation.Validate(password,
			validation.Required.Error("Password is required"),
			validation.Length(4, 0).Error("Password should be at least 4 characters long"),
		),
	}.Filter()
}
