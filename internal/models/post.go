package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxTitleLength   = 100
	MaxExcerptLength = 200
)

// Post represents a blog post. UserID references the author but is not
// checked for existence.
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Title     string    `json:"title" gorm:"type:varchar(100);not null" bson:"title"`
	Excerpt   string    `json:"excerpt" gorm:"type:varchar(200);not null" bson:"excerpt"`
	Content   string    `json:"content" gorm:"type:text;not null" bson:"content"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);index;not null" bson:"userId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Normalize trims the title and excerpt.
func (p *Post) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
}

// Validate checks the stored post fields. Call Normalize first.
func (p Post) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title,
			validation.Required.Error("Title is required"),
			validation.RuneLength(0, MaxTitleLength).Error("Title cannot be more than 100 characters"),
		),
		validation.Field(&p.Excerpt,
			validation.Required.Error("Excerpt is required"),
			validation.RuneLength(0, MaxExcerptLength).Error("Excerpt cannot be more than 200 characters"),
		),
		validation.Field(&p.Content,
			validation.Required.Error("Content is required"),
		),
		validation.Field(&p.UserID,
			validation.Required.Error("User is required"),
		),
	)
}
