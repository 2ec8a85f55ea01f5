package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/taskdesk/internal/model"
)

func sampleTasks() []model.Task {
	now := time.Now().UTC()
	end := now.Add(-time.Hour)
	return []model.Task{
		{
			ID:            "1",
			Title:         "Write report",
			Description:   "quarterly, with \"quotes\"",
			Status:        model.StatusInProgress,
			Category:      model.CategoryWork,
			EndTime:       &end,
			AssignedUsers: []string{"ann", "bob"},
			CreatedAt:     now,
		},
		{
			ID:          "2",
			Title:       "Buy milk",
			Description: "2 litres",
			Status:      model.StatusDone,
			Category:    model.CategoryShopping,
			Completed:   true,
			CreatedAt:   now,
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTasks()); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 rows (header + 2), got %d", len(records))
	}
	if records[0][0] != "ID" || records[0][1] != "Title" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	row := records[1]
	if row[2] != "quarterly, with \"quotes\"" {
		t.Fatalf("description not round-tripped: %q", row[2])
	}
	if row[8] != "ann, bob" {
		t.Fatalf("expected assigned users, got %q", row[8])
	}
	if row[9] != "true" {
		t.Fatalf("overdue open task should be urgent, got %q", row[9])
	}
	if row[6] != "" {
		t.Fatalf("expected empty start time, got %q", row[6])
	}
	if records[2][5] != "true" {
		t.Fatalf("expected completed true, got %q", records[2][5])
	}
}

func TestCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	records, _ := csv.NewReader(&buf).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
}

// ============================================================
// JSON
// ============================================================

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := WriteJSON(&buf, sampleTasks(), now); err != nil {
		t.Fatal(err)
	}

	var doc document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if doc.Count != 2 || len(doc.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got count=%d len=%d", doc.Count, len(doc.Tasks))
	}
	if doc.ExportedAt != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected exported_at %q", doc.ExportedAt)
	}
	if doc.Tasks[1].Category != "Shopping" || !doc.Tasks[1].Completed {
		t.Fatalf("unexpected second task %+v", doc.Tasks[1])
	}
	if strings.Contains(buf.String(), "start_time") {
		t.Fatal("unset start time should be omitted")
	}
}

func TestJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"tasks": []`) {
		t.Fatalf("expected empty array, got %s", buf.String())
	}
}

// ============================================================
// YAML
// ============================================================

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, sampleTasks(), time.Now()); err != nil {
		t.Fatal(err)
	}

	var doc document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if doc.Count != 2 || doc.Tasks[0].Title != "Write report" {
		t.Fatalf("unexpected document %+v", doc)
	}
	if len(doc.Tasks[0].AssignedUsers) != 2 {
		t.Fatalf("expected 2 assignees, got %v", doc.Tasks[0].AssignedUsers)
	}
}

// ============================================================
// Files and formats
// ============================================================

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	for _, f := range Formats {
		path := filepath.Join(dir, "out."+string(f))
		if err := ToFile(path, f, sampleTasks()); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s export is empty", f)
		}
	}
}

func TestToFileBadPath(t *testing.T) {
	err := ToFile("/nonexistent/dir/out.csv", FormatCSV, sampleTasks())
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"csv": FormatCSV, "JSON": FormatJSON, ".yml": FormatYAML, "yaml": FormatYAML}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath(FormatJSON, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if filepath.Base(p) != "taskdesk-export-2024-05-01.json" {
		t.Fatalf("unexpected path %q", p)
	}
}
