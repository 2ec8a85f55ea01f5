package model

import (
	"errors"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
	StatusBlocked    Status = "Blocked"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusBlocked}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryStudy    Category = "Study"
	CategoryShopping Category = "Shopping"
	CategoryOther    Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryStudy, CategoryShopping, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

const (
	DefaultStatus   = StatusTodo
	DefaultCategory = CategoryPersonal
)

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
)

// Task is a task record as returned by the API. ID and CreatedAt are
// assigned by the server and never changed by the client.
type Task struct {
	ID            string
	Title         string
	Description   string
	StartTime     *time.Time
	EndTime       *time.Time
	Status        Status
	Category      Category
	Completed     bool
	AssignedUsers []string
	CreatedAt     time.Time
	IsUrgent      *bool
}

// Draft is the client-editable part of a task.
type Draft struct {
	Title         string
	Description   string
	StartTime     *time.Time
	EndTime       *time.Time
	Status        Status
	Category      Category
	Completed     bool
	AssignedUsers []string
	IsUrgent      *bool
}

func NewDraft() Draft {
	return Draft{Status: DefaultStatus, Category: DefaultCategory}
}

// Validate performs the presence checks done before any network call.
func (d Draft) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, ErrTitleRequired)
	}
	if strings.TrimSpace(d.Description) == "" {
		errs = append(errs, ErrDescriptionRequired)
	}
	return errors.Join(errs...)
}

// Draft returns the editable fields of t.
func (t Task) Draft() Draft {
	return Draft{
		Title:         t.Title,
		Description:   t.Description,
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		Status:        t.Status,
		Category:      t.Category,
		Completed:     t.Completed,
		AssignedUsers: append([]string(nil), t.AssignedUsers...),
		IsUrgent:      t.IsUrgent,
	}
}

// WithDraft returns a copy of t with the editable fields replaced by d.
func (t Task) WithDraft(d Draft) Task {
	t.Title = d.Title
	t.Description = d.Description
	t.StartTime = d.StartTime
	t.EndTime = d.EndTime
	t.Status = d.Status
	t.Category = d.Category
	t.Completed = d.Completed
	t.AssignedUsers = append([]string(nil), d.AssignedUsers...)
	t.IsUrgent = d.IsUrgent
	return t
}

// Toggled flips completion. A newly completed task is forced to Done, a
// reopened one back to To Do.
func (t Task) Toggled() Task {
	t.Completed = !t.Completed
	if t.Completed {
		t.Status = StatusDone
	} else {
		t.Status = StatusTodo
	}
	return t
}

// Urgent is advisory only: the server flag, or an incomplete task whose end
// time has passed.
func (t Task) Urgent(now time.Time) bool {
	if t.IsUrgent != nil && *t.IsUrgent {
		return true
	}
	return t.EndTime != nil && t.EndTime.Before(now) && !t.Completed
}
