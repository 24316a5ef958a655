package model

import "time"

// User account. Email is stored lowercase and unique. HashedPassword
// never leaves the service layer.
type User struct {
	ID             int64
	Email          string
	Name           string
	HashedPassword string
	CreatedAt      time.Time
}

func (User) TableName() string { return "users" }
