package model

import "time"

// User is a registered account. Username and Email are stored lower-cased.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"` // bcrypt hash, never exposed
	Firstname string    `json:"firstname" gorm:"size:50;not null"`
	Lastname  string    `json:"lastname" gorm:"size:50;not null"`
	JoinedAt  time.Time `json:"joined_at" gorm:"autoCreateTime;not null"`
}

// UserPostCount pairs a user with the number of posts they authored.
type UserPostCount struct {
	User      User
	PostCount int64
}

// UserLatestPost pairs a user with their most recent post, nil when they have none.
type UserLatestPost struct {
	User       User
	LatestPost *Post
}
