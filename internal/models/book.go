package models

import "time"

// Book is a catalog entry owned by the user who created it.
type Book struct {
	UID           string    `bson:"_id,omitempty" json:"uid"`
	Title         string    `bson:"title" json:"title"`
	Author        string    `bson:"author" json:"author"`
	Publisher     string    `bson:"publisher" json:"publisher"`
	PublishedDate string    `bson:"publishedDate" json:"published_date"`
	PageCount     int       `bson:"pageCount" json:"page_count"`
	Language      string    `bson:"language" json:"language"`
	UserUID       string    `bson:"userUid" json:"user_uid"`
	Tags          []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	CoverKey      string    `bson:"coverKey,omitempty" json:"-"`
	CreatedAt     time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updated_at"`
}
