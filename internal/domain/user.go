package domain

import "time"

// User represents a registered user record.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch carries the mutable fields of a user. Email is the lookup key and never changes.
type UserPatch struct {
	FullName     string
	PasswordHash string
}

// Projection selects which user fields a read returns. The internal ID is never returned.
type Projection struct {
	FullName bool
	Email    bool
	Password bool
}

// FullProjection returns every public field including the password hash.
func FullProjection() Projection {
	return Projection{FullName: true, Email: true, Password: true}
}

// Apply clears the fields the projection excludes.
func (p Projection) Apply(u User) User {
	out := User{}
	if p.FullName {
		out.FullName = u.FullName
	}
	if p.Email {
		out.Email = u.Email
	}
	if p.Password {
		out.PasswordHash = u.PasswordHash
	}
	return out
}
