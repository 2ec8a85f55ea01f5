// Package tasks holds the in-memory task list. Every change is committed
// only after the server has acknowledged it.
package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sadopc/taskdesk/internal/api"
	"github.com/sadopc/taskdesk/internal/model"
)

var (
	// ErrStale means the server answered after the session changed; the
	// answer was dropped.
	ErrStale = errors.New("result discarded: session changed")

	ErrTaskNotFound = errors.New("task not found")
)

// Gateway is the part of the API client the collection calls.
type Gateway interface {
	ListTasks(ctx context.Context, auth api.Auth) ([]model.Task, error)
	CreateTask(ctx context.Context, auth api.Auth, d model.Draft) (model.Task, error)
	UpdateTask(ctx context.Context, auth api.Auth, t model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, auth api.Auth, id string) error
}

// Session supplies credentials and the commit-time auth check.
type Session interface {
	Auth() api.Auth
	IsAuthenticated() bool
}

// Collection is the task list of the signed-in user.
type Collection struct {
	mu    sync.RWMutex
	gw    Gateway
	sess  Session
	log   zerolog.Logger
	items []model.Task
	epoch uint64
}

func New(gw Gateway, sess Session, log zerolog.Logger) *Collection {
	return &Collection{gw: gw, sess: sess, log: log}
}

// begin captures the epoch and credentials for a request.
func (c *Collection) begin() (uint64, api.Auth) {
	c.mu.RLock()
	epoch := c.epoch
	c.mu.RUnlock()
	return epoch, c.sess.Auth()
}

// commit applies fn if nothing invalidated the request since begin.
func (c *Collection) commit(epoch uint64, op string, fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || !c.sess.IsAuthenticated() {
		c.log.Debug().Str("op", op).Msg("dropping stale result")
		return ErrStale
	}
	fn()
	return nil
}

// Refresh replaces the whole list with the server's. A guest gets an empty
// list and api.ErrGuestSession.
func (c *Collection) Refresh(ctx context.Context) error {
	epoch, auth := c.begin()
	tasks, err := c.gw.ListTasks(ctx, auth)
	if err != nil && !errors.Is(err, api.ErrGuestSession) {
		return err
	}
	if cerr := c.commit(epoch, "refresh", func() { c.items = tasks }); cerr != nil {
		return cerr
	}
	c.log.Debug().Int("count", len(tasks)).Msg("tasks refreshed")
	return err
}

// Add creates a task and prepends the server's record.
func (c *Collection) Add(ctx context.Context, d model.Draft) (model.Task, error) {
	epoch, auth := c.begin()
	created, err := c.gw.CreateTask(ctx, auth, d)
	if err != nil {
		return model.Task{}, err
	}
	err = c.commit(epoch, "add", func() {
		c.items = append([]model.Task{created}, c.items...)
	})
	return created, err
}

// Remove deletes a task and drops it from the list.
func (c *Collection) Remove(ctx context.Context, id string) error {
	epoch, auth := c.begin()
	if err := c.gw.DeleteTask(ctx, auth, id); err != nil {
		return err
	}
	return c.commit(epoch, "remove", func() {
		kept := c.items[:0:0]
		for _, t := range c.items {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		c.items = kept
	})
}

// Replace updates a task and substitutes the server's record for the entry
// with the same id.
func (c *Collection) Replace(ctx context.Context, t model.Task) (model.Task, error) {
	epoch, auth := c.begin()
	updated, err := c.gw.UpdateTask(ctx, auth, t)
	if err != nil {
		return model.Task{}, err
	}
	err = c.commit(epoch, "replace", func() {
		for i := range c.items {
			if c.items[i].ID == updated.ID {
				c.items[i] = updated
				return
			}
		}
	})
	return updated, err
}

// ToggleCompletion flips a task's completion and sends the full record
// through Replace.
func (c *Collection) ToggleCompletion(ctx context.Context, id string) (model.Task, error) {
	if err := api.GuardGuest(c.sess.Auth(), api.ActionUpdateTasks); err != nil {
		return model.Task{}, err
	}
	t, ok := c.Get(id)
	if !ok {
		return model.Task{}, ErrTaskNotFound
	}
	return c.Replace(ctx, t.Toggled())
}

// Clear empties the list and invalidates every request in flight.
func (c *Collection) Clear() {
	c.mu.Lock()
	c.items = nil
	c.epoch++
	c.mu.Unlock()
}

// Items returns a copy of the list in display order.
func (c *Collection) Items() []model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Task, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection) Get(id string) (model.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.items {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
