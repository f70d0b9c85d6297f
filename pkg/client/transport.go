package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Transport dispatches mutations and reads to the server. HTTPTransport is
// the standard implementation; tests substitute fakes.
type Transport interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, title string, deadline *time.Time) (*Task, error)
	RenameTask(ctx context.Context, id int64, title string) (*Task, error)
	RescheduleTask(ctx context.Context, id int64, deadline *time.Time) (*Task, error)
	ToggleTask(ctx context.Context, id int64) (*Task, error)
	DeleteTask(ctx context.Context, id int64) error
	AttachLabel(ctx context.Context, taskID int64, name string) (*Label, error)
	RemoveLabel(ctx context.Context, taskID, labelID int64) error
	CreateSubtask(ctx context.Context, taskID int64, title string) (*Subtask, error)
	ToggleSubtask(ctx context.Context, id int64) (*Subtask, error)
	DeleteSubtask(ctx context.Context, id int64) error
}

// TransportError is any failure to complete a dispatched call: connection
// errors, timeouts, or non-2xx responses. It is the sole trigger for the
// engine's rollback path.
type TransportError struct {
	Op         string
	StatusCode int // zero when the request never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPTransport talks to the sidetrack API over HTTP with a bearer token.
type HTTPTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPTransport creates a transport against baseURL authenticating with
// the given bearer token. httpClient may be nil for http.DefaultClient.
func NewHTTPTransport(baseURL, token string, httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  httpClient,
	}
}

// do runs one request. body and out may be nil. Any outcome other than
// wantStatus is reported as a *TransportError.
func (t *HTTPTransport) do(ctx context.Context, op, method, path string, body any, out any, wantStatus ...int) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+t.token)

	resp, err := t.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	ok := false
	for _, status := range wantStatus {
		if resp.StatusCode == status {
			ok = true
			break
		}
	}
	if !ok {
		io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Op: op, Err: err}
		}
	}
	return nil
}

func (t *HTTPTransport) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := t.do(ctx, "list tasks", http.MethodGet, "/api/tasks", nil, &tasks, http.StatusOK); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (t *HTTPTransport) CreateTask(ctx context.Context, title string, deadline *time.Time) (*Task, error) {
	body := map[string]any{"title": title}
	if deadline != nil {
		body["deadline"] = deadline
	}
	var task Task
	if err := t.do(ctx, "create task", http.MethodPost, "/api/tasks", body, &task, http.StatusCreated); err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *HTTPTransport) RenameTask(ctx context.Context, id int64, title string) (*Task, error) {
	var task Task
	path := fmt.Sprintf("/api/tasks/%d/title", id)
	if err := t.do(ctx, "rename task", http.MethodPatch, path, map[string]any{"title": title}, &task, http.StatusOK); err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *HTTPTransport) RescheduleTask(ctx context.Context, id int64, deadline *time.Time) (*Task, error) {
	var task Task
	path := fmt.Sprintf("/api/tasks/%d/deadline", id)
	if err := t.do(ctx, "reschedule task", http.MethodPatch, path, map[string]any{"deadline": deadline}, &task, http.StatusOK); err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *HTTPTransport) ToggleTask(ctx context.Context, id int64) (*Task, error) {
	var task Task
	path := fmt.Sprintf("/api/tasks/%d/toggle", id)
	if err := t.do(ctx, "toggle task", http.MethodPost, path, nil, &task, http.StatusOK); err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *HTTPTransport) DeleteTask(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/tasks/%d", id)
	return t.do(ctx, "delete task", http.MethodDelete, path, nil, nil, http.StatusNoContent)
}

func (t *HTTPTransport) AttachLabel(ctx context.Context, taskID int64, name string) (*Label, error) {
	var label Label
	path := fmt.Sprintf("/api/tasks/%d/labels", taskID)
	// 201 when this call created the label, 200 when the name existed
	if err := t.do(ctx, "attach label", http.MethodPost, path, map[string]any{"name": name}, &label, http.StatusOK, http.StatusCreated); err != nil {
		return nil, err
	}
	return &label, nil
}

func (t *HTTPTransport) RemoveLabel(ctx context.Context, taskID, labelID int64) error {
	path := fmt.Sprintf("/api/tasks/%d/labels/%d", taskID, labelID)
	return t.do(ctx, "remove label", http.MethodDelete, path, nil, nil, http.StatusNoContent)
}

func (t *HTTPTransport) CreateSubtask(ctx context.Context, taskID int64, title string) (*Subtask, error) {
	var subtask Subtask
	path := fmt.Sprintf("/api/tasks/%d/subtasks", taskID)
	if err := t.do(ctx, "create subtask", http.MethodPost, path, map[string]any{"title": title}, &subtask, http.StatusCreated); err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (t *HTTPTransport) ToggleSubtask(ctx context.Context, id int64) (*Subtask, error) {
	var subtask Subtask
	path := fmt.Sprintf("/api/subtasks/%d/toggle", id)
	if err := t.do(ctx, "toggle subtask", http.MethodPost, path, nil, &subtask, http.StatusOK); err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (t *HTTPTransport) DeleteSubtask(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/subtasks/%d", id)
	return t.do(ctx, "delete subtask", http.MethodDelete, path, nil, nil, http.StatusNoContent)
}
