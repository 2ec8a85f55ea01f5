// Package export writes the task list to CSV, JSON or YAML files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/taskdesk/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats in picker order.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Write encodes tasks to w in the given format.
func Write(w io.Writer, f Format, tasks []model.Task) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, tasks)
	case FormatJSON:
		return WriteJSON(w, tasks, time.Now())
	case FormatYAML:
		return WriteYAML(w, tasks, time.Now())
	}
	return fmt.Errorf("unknown export format %q", f)
}

// ToFile writes tasks to path.
func ToFile(path string, f Format, tasks []model.Task) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := Write(file, f, tasks); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// DefaultPath is ~/taskdesk-export-<date>.<ext>.
func DefaultPath(f Format, now time.Time) string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, fmt.Sprintf("taskdesk-export-%s.%s", now.Format("2006-01-02"), f))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(time.RFC3339)
}
