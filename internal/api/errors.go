package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when an authenticated call gets a 401.
	// Callers log the user out; the request is never retried.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork wraps transport-level failures.
	ErrNetwork = errors.New("network error")

	// ErrGuestSession accompanies the empty task list returned to guests.
	ErrGuestSession = errors.New("guest session: tasks are not saved to the server")

	// ErrValidation wraps draft presence-check failures. No request is sent.
	ErrValidation = errors.New("validation failed")
)

// Action names an operation that guests are not allowed to perform.
type Action string

const (
	ActionCreateTasks          Action = "createTasks"
	ActionUpdateTasks          Action = "updateTasks"
	ActionDeleteTasks          Action = "deleteTasks"
	ActionUpdateProfilePicture Action = "updateProfilePicture"
)

// GuestRestrictedError is informational: the action was skipped because the
// session belongs to the guest user.
type GuestRestrictedError struct {
	Action Action
}

func (e *GuestRestrictedError) Error() string {
	return fmt.Sprintf("%s is not available for guest users", e.Action)
}

// GuardGuest returns a *GuestRestrictedError when auth belongs to a guest.
func GuardGuest(auth Auth, action Action) error {
	if auth.IsGuest() {
		return &GuestRestrictedError{Action: action}
	}
	return nil
}

// RejectedError is a non-2xx response. Detail carries the server's message
// verbatim and is empty when the body could not be parsed, in which case the
// caller falls back to its own generic message.
type RejectedError struct {
	Status int
	Detail string
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request rejected with status %d", e.Status)
	}
	return fmt.Sprintf("request rejected with status %d: %s", e.Status, e.Detail)
}

// Detail extracts the server message from err, if it carries one.
func Detail(err error) string {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Detail
	}
	return ""
}
