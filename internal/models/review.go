package models

import "time"

// Review is a rating plus free-form text attached to a book by a user.
type Review struct {
	UID        string    `bson:"_id,omitempty" json:"uid"`
	Rating     int       `bson:"rating" json:"rating"`
	ReviewText string    `bson:"reviewText" json:"review_text"`
	UserUID    string    `bson:"userUid" json:"user_uid"`
	BookUID    string    `bson:"bookUid" json:"book_uid"`
	CreatedAt  time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updated_at"`
}
