package client

import (
	"context"
	"time"
)

// ToggleTask optimistically flips a task's completion state.
func (e *Engine) ToggleTask(ctx context.Context, taskID int64) *Attempt {
	return e.Do(ctx, Mutation{
		Key: KeyTasks,
		Speculate: func(rows []Task) []Task {
			now := time.Now()
			for i := range rows {
				if rows[i].ID != taskID {
					continue
				}
				rows[i].IsCompleted = !rows[i].IsCompleted
				if rows[i].IsCompleted {
					rows[i].CompletedAt = &now
				} else {
					rows[i].CompletedAt = nil
				}
				rows[i].UpdatedAt = now
			}
			return rows
		},
		Dispatch: func(ctx context.Context) (any, error) {
			return e.transport.ToggleTask(ctx, taskID)
		},
	})
}

// CreateTask optimistically prepends a placeholder row, then swaps it for
// the server-assigned task on confirmation.
func (e *Engine) CreateTask(ctx context.Context, title string, deadline *time.Time) *Attempt {
	return e.Do(ctx, Mutation{
		Key: KeyTasks,
		Speculate: func(rows []Task) []Task {
			placeholder := Task{
				ID:        nextPlaceholderID(),
				Title:     title,
				Deadline:  deadline,
				CreatedAt: time.Now(),
				Labels:    []Label{},
				Subtasks:  []Subtask{},
			}
			// the list is newest-first
			return append([]Task{placeholder}, rows...)
		},
		Dispatch: func(ctx context.Context) (any, error) {
			return e.transport.CreateTask(ctx, title, deadline)
		},
	})
}

// RenameTask optimistically applies a new title.
func (e *Engine) RenameTask(ctx context.Context, taskID int64, title string) *Attempt {
	return e.Do(ctx, Mutation{
		Key: KeyTasks,
		Speculate: func(rows []Task) []Task {
			for i := range rows {
				if rows[i].ID == taskID {
					rows[i].Title = title
					rows[i].UpdatedAt = time.Now()
				}
			}
			return rows
		},
		Dispatch: func(ctx context.Context) (any, error) {
			return e.transport.RenameTask(ctx, taskID, title)
		},
	})
}

// RescheduleTask optimistically sets or clears a deadline.
func (e *Engine) RescheduleTask(ctx context.Context, taskID int64, deadline *time.Time) *Attempt {
	return e.Do(ctx, Mutation{
		Key: KeyTasks,
		Speculate: func(rows []Task) []Task {
			for i := range rows {
				if rows[i].ID == taskID {
					rows[i].Deadline = deadline
					rows[i].UpdatedAt = time.Now()
				}
			}
			return rows
		},
		Dispatch: func(ctx context.Context) (any, error) {
			return e.transport.RescheduleTask(ctx, taskID, deadline)
		},
	})
}

// DeleteTask optimistically removes the row. The server confirms with no
// entity, so settling is a no-op.
func (e *Engine) DeleteTask(ctx context.Context, taskID int64) *Attempt {
	return e.Do(ctx, Mutation{
		Key: KeyTasks,
		Speculate: func(rows []Task) []Task {
			out := rows[:0]
			for _, t := range rows {
				if t.ID != taskID {
					out = append(out, t)
				}
			}
			return out
		},
		Dispatch: func(ctx context.Context) (any, error) {
			return nil, e.transport.DeleteTask(ctx, taskID)
		},
	})
}

// AttachLabel optimistically adds a placeholder label entry to the task,
// then swaps it for the server's label row.
func (e *Engine) AttachLabel(ctx context.Context, taskID int64, name string) *Attempt {
	return e.Do(ctx, Mutation{
		Key: KeyTasks,
		Speculate: func(rows []Task) []Task {
			for i := range rows {
				if rows[i].ID != taskID {
					continue
				}
				if hasLabelNamed(rows[i].Labels, name) {
					break
				}
				rows[i].Labels = append(rows[i].Labels, Label{
					ID:   nextPlaceholderID(),
					Name: name,
				})
			}
			return rows
		},
		Dispatch: func(ctx context.Context) (any, error) {
			return e.transport.AttachLabel(ctx, taskID, name)
		},
		Reconcile: func(rows []Task, confirmed any) []Task {
			label, ok := confirmed.(*Label)
			if !ok || label == nil {
				return rows
			}
			for i := range rows {
				if rows[i].ID != taskID {
					continue
				}
				for j := range rows[i].Labels {
					if rows[i].Labels[j].Name == label.Name {
						rows[i].Labels[j] = *label
					}
				}
			}
			return rows
		},
	})
}

// RemoveLabel optimistically detaches a label from the task.
func (e *Engine) RemoveLabel(ctx context.Context, taskID, labelID int64) *Attempt {
	return e.Do(ctx, Mutation{
		Key: KeyTasks,
		Speculate: func(rows []Task) []Task {
			for i := range rows {
				if rows[i].ID != taskID {
					continue
				}
				labels := rows[i].Labels[:0]
				for _, l := range rows[i].Labels {
					if l.ID != labelID {
						labels = append(labels, l)
					}
				}
				rows[i].Labels = labels
			}
			return rows
		},
		Dispatch: func(ctx context.Context) (any, error) {
			return nil, e.transport.RemoveLabel(ctx, taskID, labelID)
		},
	})
}

// AddSubtask optimistically appends a placeholder subtask under the task.
func (e *Engine) AddSubtask(ctx context.Context, taskID int64, title string) *Attempt {
	return e.Do(ctx, Mutation{
		Key: KeyTasks,
		Speculate: func(rows []Task) []Task {
			for i := range rows {
				if rows[i].ID == taskID {
					rows[i].Subtasks = append(rows[i].Subtasks, Subtask{
						ID:        nextPlaceholderID(),
						TaskID:    taskID,
						Title:     title,
						CreatedAt: time.Now(),
					})
				}
			}
			return rows
		},
		Dispatch: func(ctx context.Context) (any, error) {
			return e.transport.CreateSubtask(ctx, taskID, title)
		},
		Reconcile: reconcileSubtask,
	})
}

// ToggleSubtask optimistically flips a subtask's flag.
func (e *Engine) ToggleSubtask(ctx context.Context, subtaskID int64) *Attempt {
	return e.Do(ctx, Mutation{
		Key: KeyTasks,
		Speculate: func(rows []Task) []Task {
			for i := range rows {
				for j := range rows[i].Subtasks {
					if rows[i].Subtasks[j].ID == subtaskID {
						rows[i].Subtasks[j].IsCompleted = !rows[i].Subtasks[j].IsCompleted
					}
				}
			}
			return rows
		},
		Dispatch: func(ctx context.Context) (any, error) {
			return e.transport.ToggleSubtask(ctx, subtaskID)
		},
		Reconcile: reconcileSubtask,
	})
}

// DeleteSubtask optimistically removes a subtask; the parent row stays.
func (e *Engine) DeleteSubtask(ctx context.Context, subtaskID int64) *Attempt {
	return e.Do(ctx, Mutation{
		Key: KeyTasks,
		Speculate: func(rows []Task) []Task {
			for i := range rows {
				subtasks := rows[i].Subtasks[:0]
				for _, st := range rows[i].Subtasks {
					if st.ID != subtaskID {
						subtasks = append(subtasks, st)
					}
				}
				rows[i].Subtasks = subtasks
			}
			return rows
		},
		Dispatch: func(ctx context.Context) (any, error) {
			return nil, e.transport.DeleteSubtask(ctx, subtaskID)
		},
	})
}

func hasLabelNamed(labels []Label, name string) bool {
	for _, l := range labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// reconcileSubtask replaces the matching subtask by id, or the sole
// placeholder under the confirmed subtask's parent for creations.
func reconcileSubtask(rows []Task, confirmed any) []Task {
	subtask, ok := confirmed.(*Subtask)
	if !ok || subtask == nil {
		return rows
	}

	for i := range rows {
		for j := range rows[i].Subtasks {
			if rows[i].Subtasks[j].ID == subtask.ID {
				rows[i].Subtasks[j] = *subtask
				return rows
			}
		}
	}
	for i := range rows {
		if rows[i].ID != subtask.TaskID {
			continue
		}
		for j := range rows[i].Subtasks {
			if IsPlaceholderID(rows[i].Subtasks[j].ID) {
				rows[i].Subtasks[j] = *subtask
				return rows
			}
		}
	}
	return rows
}
