package models

import "time"

// User represents a poetry reader profile stored in the users collection.
type User struct {
	ID         string    `json:"id" firestore:"-"` // Firebase Auth UID, will be the document ID
	Name       string    `json:"name" firestore:"name"`
	Email      string    `json:"email" firestore:"email"`
	Avatar     string    `json:"avatar,omitempty" firestore:"avatar,omitempty"`
	JoinedDate time.Time `json:"joinedDate" firestore:"joinedDate"`
}

// DefaultUserName is used when the identity provider supplies no display name.
const DefaultUserName = "Anonymous User"
