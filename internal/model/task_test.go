package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Toggled_Pair(t *testing.T) {
	task := Task{ID: "1", Title: "t", Description: "d", Status: StatusInProgress}

	done := task.Toggled()
	assert.True(t, done.Completed)
	assert.Equal(t, StatusDone, done.Status)

	reopened := done.Toggled()
	assert.False(t, reopened.Completed)
	assert.Equal(t, StatusTodo, reopened.Status)

	// The receiver is never modified.
	assert.False(t, task.Completed)
	assert.Equal(t, StatusInProgress, task.Status)
}

func TestDraft_Validate(t *testing.T) {
	d := NewDraft()
	err := d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTitleRequired)
	assert.ErrorIs(t, err, ErrDescriptionRequired)

	d.Title = "  "
	d.Description = "desc"
	err = d.Validate()
	assert.ErrorIs(t, err, ErrTitleRequired)
	assert.NotErrorIs(t, err, ErrDescriptionRequired)

	d.Title = "title"
	assert.NoError(t, d.Validate())
}

func TestNewDraft_Defaults(t *testing.T) {
	d := NewDraft()
	assert.Equal(t, StatusTodo, d.Status)
	assert.Equal(t, CategoryPersonal, d.Category)
}

func TestTask_WithDraft_KeepsServerFields(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	task := Task{ID: "42", Title: "old", Description: "old", CreatedAt: created}

	d := task.Draft()
	d.Title = "new"
	d.AssignedUsers = []string{"ann"}
	updated := task.WithDraft(d)

	assert.Equal(t, "42", updated.ID)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, []string{"ann"}, updated.AssignedUsers)
}

func TestTask_Urgent(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	yes := true

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"no end time", Task{}, false},
		{"future end", Task{EndTime: &future}, false},
		{"overdue", Task{EndTime: &past}, true},
		{"overdue but completed", Task{EndTime: &past, Completed: true}, false},
		{"server flag", Task{IsUrgent: &yes, Completed: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Urgent(now))
		})
	}
}

func TestStatusAndCategoryValid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("Later").Valid())
	for _, c := range Categories {
		assert.True(t, c.Valid())
	}
	assert.False(t, Category("Hobby").Valid())
}

func TestUser_IsGuest(t *testing.T) {
	assert.True(t, NewGuest("Guest User").IsGuest())
	assert.False(t, User{ID: "7"}.IsGuest())
}

func TestNotification_Expired(t *testing.T) {
	n := NewNotification(SeverityInfo, "hello")
	require.NotEmpty(t, n.ID)
	assert.False(t, n.Expired(n.CreatedAt.Add(NotificationTTL-time.Millisecond)))
	assert.True(t, n.Expired(n.CreatedAt.Add(NotificationTTL)))
}
