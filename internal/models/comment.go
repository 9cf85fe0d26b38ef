package models

import "time"

// Comment is a reply to a post.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	PostID    string    `json:"postId" gorm:"type:varchar(36);index;not null" bson:"postId"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null" bson:"userId"`
	Text      string    `json:"text" gorm:"type:text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// CommentAuthor holds the display name fields of a comment's author.
type CommentAuthor struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// CommentView is a comment with its author resolved. Author is nil when the
// referenced user does not exist.
type CommentView struct {
	ID        string         `json:"id"`
	PostID    string         `json:"postId"`
	Author    *CommentAuthor `json:"userId"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewCommentView pairs a comment with its (possibly missing) author.
func NewCommentView(c Comment, author *User) CommentView {
	view := CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if author != nil {
		view.Author = &CommentAuthor{ID: author.ID, FirstName: author.FirstName, LastName: author.LastName}
	}
	return view
}
