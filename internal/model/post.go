package model

import "time"

const (
	// PostBodyMinLength is the shortest accepted post body, in characters.
	PostBodyMinLength = 3
	// PostBodyMaxLength is the longest accepted post body, in characters.
	PostBodyMaxLength = 160
)

// Post is a short status update. CreatedAt is set by the caller so seed data can be backdated.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Body      string    `json:"body" gorm:"size:160;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`

	// Relations
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// AuthorPostCount is one row of the posts-per-author aggregate.
type AuthorPostCount struct {
	AuthorID  uint
	PostCount int64
}

// AuthorLatestTimestamp is one row of the latest-post-time-per-author aggregate.
type AuthorLatestTimestamp struct {
	AuthorID  uint
	CreatedAt time.Time
}
