package models

import "time"

// Patient is a dependent registered under a User for booking purposes.
type Patient struct {
	ID        int64     `bson:"_id" json:"id"`
	UserID    int64     `bson:"userId" json:"userId"`
	FullName  string    `bson:"fullName" json:"fullName"`
	Relation  string    `bson:"relation" json:"relation"` // "Self", "Mother", ...
	Age       int       `bson:"age" json:"age"`
	Gender    string    `bson:"gender" json:"gender"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
