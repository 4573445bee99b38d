package model

import "time"

// Comment is a reply left by a user on a post.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`

	// Relations
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Post   *Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}
