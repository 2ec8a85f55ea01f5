package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sadopc/taskdesk/internal/model"
)

// taskPayload is the outgoing task body. Its tags are the API's snake_case
// field names; this table is the only place request names are decided.
type taskPayload struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Status        string     `json:"status,omitempty"`
	Category      string     `json:"category,omitempty"`
	Completed     bool       `json:"completed"`
	AssignedUsers []string   `json:"assigned_users,omitempty"`
	IsUrgent      *bool      `json:"is_urgent,omitempty"`
}

func newTaskPayload(d model.Draft) taskPayload {
	return taskPayload{
		Title:         d.Title,
		Description:   d.Description,
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		Status:        string(d.Status),
		Category:      string(d.Category),
		Completed:     d.Completed,
		AssignedUsers: d.AssignedUsers,
		IsUrgent:      d.IsUrgent,
	}
}

// taskFieldAliases maps snake_case names onto the camelCase names the API
// emits for task records, so responses decode the same whichever
// convention the server uses.
var taskFieldAliases = map[string]string{
	"start_time":     "startTime",
	"end_time":       "endTime",
	"assigned_users": "assignedUsers",
	"created_at":     "createdAt",
	"is_urgent":      "isUrgent",
}

type taskRecord struct {
	ID            flexString   `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	StartTime     optionalTime `json:"startTime"`
	EndTime       optionalTime `json:"endTime"`
	Status        string       `json:"status"`
	Category      string       `json:"category"`
	Completed     bool         `json:"completed"`
	AssignedUsers stringList   `json:"assignedUsers"`
	CreatedAt     optionalTime `json:"createdAt"`
	IsUrgent      *bool        `json:"isUrgent"`
}

func (r taskRecord) task() model.Task {
	t := model.Task{
		ID:            string(r.ID),
		Title:         r.Title,
		Description:   r.Description,
		StartTime:     r.StartTime.ptr(),
		EndTime:       r.EndTime.ptr(),
		Status:        model.Status(r.Status),
		Category:      model.Category(r.Category),
		Completed:     r.Completed,
		AssignedUsers: []string(r.AssignedUsers),
		IsUrgent:      r.IsUrgent,
	}
	if r.CreatedAt.set {
		t.CreatedAt = r.CreatedAt.t
	}
	return t
}

func decodeTask(data []byte) (model.Task, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return model.Task{}, fmt.Errorf("decode task: %w", err)
	}

	normalized := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		if canon, ok := taskFieldAliases[k]; ok {
			if _, dup := fields[canon]; dup {
				continue
			}
			k = canon
		}
		normalized[k] = v
	}

	buf, err := json.Marshal(normalized)
	if err != nil {
		return model.Task{}, fmt.Errorf("decode task: %w", err)
	}
	var rec taskRecord
	if err := json.Unmarshal(buf, &rec); err != nil {
		return model.Task{}, fmt.Errorf("decode task: %w", err)
	}
	return rec.task(), nil
}

func decodeTasks(data []byte) ([]model.Task, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	tasks := make([]model.Task, 0, len(raws))
	for _, raw := range raws {
		t, err := decodeTask(raw)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

type userRecord struct {
	ID                flexString `json:"id"`
	Username          string     `json:"username"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	IsStaff           *bool      `json:"is_staff"`
	IsAdmin           *bool      `json:"isAdmin"`
	ProfilePictureURL *string    `json:"profile_picture_url"`
}

func (r userRecord) user() model.User {
	u := model.User{
		ID:    string(r.ID),
		Name:  r.Name,
		Email: r.Email,
	}
	if u.Name == "" {
		u.Name = r.Username
	}
	switch {
	case r.IsStaff != nil:
		u.IsAdmin = *r.IsStaff
	case r.IsAdmin != nil:
		u.IsAdmin = *r.IsAdmin
	}
	if r.ProfilePictureURL != nil {
		u.ProfilePictureURL = *r.ProfilePictureURL
	}
	return u
}

// SnakeCase rewrites every upper-case letter as an underscore followed by
// its lower-case form: startTime -> start_time. Lower-case names are
// returned unchanged.
func SnakeCase(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// stringList accepts a JSON array of strings or a comma-separated string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected list or string, got %s", data)
	}
	*l = SplitList(s)
	return nil
}

// SplitList splits a comma-separated list, dropping blank items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// optionalTime accepts null, "" or an RFC 3339 timestamp.
type optionalTime struct {
	t   time.Time
	set bool
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*o = optionalTime{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("expected timestamp string, got %s", data)
	}
	if s == "" {
		*o = optionalTime{}
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	*o = optionalTime{t: t, set: true}
	return nil
}

func (o optionalTime) ptr() *time.Time {
	if !o.set {
		return nil
	}
	t := o.t
	return &t
}
