package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sadopc/taskdesk/internal/model"
)

// ListTasks returns the user's tasks in server order. Guests get an empty
// list together with ErrGuestSession.
func (c *Client) ListTasks(ctx context.Context, auth Auth) ([]model.Task, error) {
	if auth.IsGuest() {
		return []model.Task{}, ErrGuestSession
	}
	body, err := c.sendJSON(ctx, http.MethodGet, "/api/tasks/", &auth, nil)
	if err != nil {
		return nil, err
	}
	return decodeTasks(body)
}

// CreateTask creates a task and returns the server's record.
func (c *Client) CreateTask(ctx context.Context, auth Auth, d model.Draft) (model.Task, error) {
	if err := GuardGuest(auth, ActionCreateTasks); err != nil {
		return model.Task{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	body, err := c.sendJSON(ctx, http.MethodPost, "/api/tasks/", &auth, newTaskPayload(d))
	if err != nil {
		return model.Task{}, err
	}
	return decodeTask(body)
}

// UpdateTask replaces a task. ID and CreatedAt are never sent.
func (c *Client) UpdateTask(ctx context.Context, auth Auth, t model.Task) (model.Task, error) {
	if err := GuardGuest(auth, ActionUpdateTasks); err != nil {
		return model.Task{}, err
	}
	d := t.Draft()
	if err := d.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	body, err := c.sendJSON(ctx, http.MethodPut, taskPath(t.ID), &auth, newTaskPayload(d))
	if err != nil {
		return model.Task{}, err
	}
	return decodeTask(body)
}

// DeleteTask deletes the task with the given id.
func (c *Client) DeleteTask(ctx context.Context, auth Auth, id string) error {
	if err := GuardGuest(auth, ActionDeleteTasks); err != nil {
		return err
	}
	_, err := c.sendJSON(ctx, http.MethodDelete, taskPath(id), &auth, nil)
	return err
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id) + "/"
}
