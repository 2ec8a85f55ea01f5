package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/taskdesk/internal/model"
)

var csvHeader = []string{
	"ID", "Title", "Description", "Status", "Category", "Completed",
	"Start", "End", "Assigned", "Urgent", "Created",
}

func WriteCSV(out io.Writer, tasks []model.Task) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	now := time.Now()
	for _, t := range tasks {
		row := []string{
			t.ID,
			t.Title,
			t.Description,
			string(t.Status),
			string(t.Category),
			strconv.FormatBool(t.Completed),
			formatTime(t.StartTime),
			formatTime(t.EndTime),
			strings.Join(t.AssignedUsers, ", "),
			strconv.FormatBool(t.Urgent(now)),
			formatTime(&t.CreatedAt),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
