package cmd

import (
	"fmt"
	"os"

	"cucatalog-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints per-term dataset counts.",
	Run: func(cmd *cobra.Command, args []string) {
		store := catalogStore()

		terms, err := store.ListTerms()
		if err != nil {
			serviceutil.Fatal("failed to list terms", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Term", "Classes", "Departments", "Instructors", "Enrollment Rows"})

		for _, term := range terms {
			records, err := store.LoadTerm(term)
			if err != nil {
				serviceutil.Fatal(fmt.Sprintf("failed to load term %s", term), err)
			}
			rows, err := store.LoadEnrollment(term)
			if err != nil {
				serviceutil.Fatal(fmt.Sprintf("failed to load enrollment %s", term), err)
			}

			departments := map[string]bool{}
			instructors := map[string]bool{}
			for _, rec := range records {
				departments[rec.DepartmentCode] = true
				if rec.Instructor != "" {
					instructors[rec.Instructor] = true
				}
			}

			t.AppendRow(table.Row{
				term.String(),
				len(records),
				len(departments),
				len(instructors),
				len(rows),
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
