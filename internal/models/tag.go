package models

import "time"

// Tag is a catalog-wide label; books reference tags by name.
type Tag struct {
	UID       string    `bson:"_id,omitempty" json:"uid"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}
