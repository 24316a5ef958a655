package model

import (
	"time"

	"github.com/taskdeck/taskdeck/internal/consts"
)

// Task is a single to-do item. Every task belongs to exactly one user;
// UserID together with ID is the addressing unit for writes.
type Task struct {
	ID          int64
	Title       string
	IsCompleted bool
	Priority    consts.Priority
	UserID      int64
	CreatedAt   time.Time
}

func (Task) TableName() string { return "tasks" }
