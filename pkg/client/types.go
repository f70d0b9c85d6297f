// Package client is the Go SDK for the sidetrack API. It keeps a local
// snapshot of server collections in a Store and routes every edit through an
// optimistic mutation Engine: edits land in the snapshot before the network
// round-trip, then either settle against the server's response or roll back
// to the exact pre-edit snapshot with a manual retry affordance.
package client

import (
	"sync/atomic"
	"time"
)

// Task mirrors the server's task entity. IDs are signed so optimistically
// created rows can carry negative placeholder ids until the server assigns
// a real one.
type Task struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Labels      []Label    `json:"labels"`
	Subtasks    []Subtask  `json:"subtasks"`
}

// Label mirrors the server's label entity.
type Label struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Name    string `json:"name"`
}

// Subtask mirrors the server's subtask entity.
type Subtask struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		out.CompletedAt = &v
	}
	if t.Deadline != nil {
		v := *t.Deadline
		out.Deadline = &v
	}
	out.Labels = append([]Label(nil), t.Labels...)
	out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	return out
}

func cloneTasks(rows []Task) []Task {
	if rows == nil {
		return nil
	}
	out := make([]Task, len(rows))
	for i, t := range rows {
		out[i] = t.Clone()
	}
	return out
}

var placeholderSeq atomic.Int64

// nextPlaceholderID returns a fresh negative id, distinguishable from any
// server-assigned id.
func nextPlaceholderID() int64 {
	return -placeholderSeq.Add(1)
}

// IsPlaceholderID reports whether id is a local placeholder rather than a
// server-assigned identity.
func IsPlaceholderID(id int64) bool {
	return id < 0
}
