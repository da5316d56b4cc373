package outwriter

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

const commentTimeLayout = "2006-01-02 15:04"

// WriteComments prints the comments of a plan as a table, or as JSON.
func WriteComments(planID string, comments []schema.PlanComment, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		if comments == nil {
			comments = []schema.PlanComment{}
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, comments)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCommentsTable(planID, comments, cfg, w)
	}, "Wrote table")
}

func writeCommentsTable(planID string, comments []schema.PlanComment, cfg *contract.Config, w io.Writer) error {
	if len(comments) == 0 {
		_, err := fmt.Fprintf(w, "No comments on plan %s\n", planID)
		return err
	}
	if _, err := fmt.Fprintf(w, "💬 Comments on plan %s\n", planID); err != nil {
		return err
	}

	width := getMaxTableNameWidth(cfg)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Student", "Date", "Comment"})
	var data [][]string
	for _, c := range comments {
		student := c.StudentID
		if c.StudentName != "" {
			student = c.StudentName
		}
		date := ""
		if !c.CreatedAt.IsZero() {
			date = c.CreatedAt.UTC().Format(commentTimeLayout)
		}
		data = append(data, []string{c.ID, student, date, contract.TruncateText(c.Comment, width)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
