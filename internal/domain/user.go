package domain

import "time"

// User is an identity that can file, work or oversee complaints.
type User struct {
	ID           string
	Email        string
	FullName     string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}
