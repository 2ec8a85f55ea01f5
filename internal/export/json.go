package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/taskdesk/internal/model"
)

type document struct {
	ExportedAt string  `json:"exported_at" yaml:"exported_at"`
	Count      int     `json:"count" yaml:"count"`
	Tasks      []entry `json:"tasks" yaml:"tasks"`
}

type entry struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Description   string   `json:"description" yaml:"description"`
	Status        string   `json:"status" yaml:"status"`
	Category      string   `json:"category" yaml:"category"`
	Completed     bool     `json:"completed" yaml:"completed"`
	StartTime     string   `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	EndTime       string   `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	AssignedUsers []string `json:"assigned_users,omitempty" yaml:"assigned_users,omitempty"`
	Urgent        bool     `json:"urgent" yaml:"urgent"`
	CreatedAt     string   `json:"created_at" yaml:"created_at"`
}

func newDocument(tasks []model.Task, now time.Time) document {
	doc := document{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(tasks),
		Tasks:      make([]entry, 0, len(tasks)),
	}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, entry{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			Status:        string(t.Status),
			Category:      string(t.Category),
			Completed:     t.Completed,
			StartTime:     formatTime(t.StartTime),
			EndTime:       formatTime(t.EndTime),
			AssignedUsers: t.AssignedUsers,
			Urgent:        t.Urgent(now),
			CreatedAt:     formatTime(&t.CreatedAt),
		})
	}
	return doc
}

func WriteJSON(w io.Writer, tasks []model.Task, now time.Time) error {
	data, err := json.MarshalIndent(newDocument(tasks, now), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
