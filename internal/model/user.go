package model

import "time"

// User represents a registered account as stored by the active backend.
// Username and email are unique; uniqueness is checked by the caller
// before insert.  The password hash never serializes into JSON.  The
// admin flag defaults to false and cannot be set through any public
// operation.
type User struct {
	ID           int64     `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	FirstName    string    `json:"first_name" bson:"first_name"`
	LastName     string    `json:"last_name" bson:"last_name"`
	IsAdmin      bool      `json:"is_admin" bson:"is_admin"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// NewUser carries the caller-supplied fields for user creation.  The id,
// admin flag and creation timestamp are assigned by the store.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}
