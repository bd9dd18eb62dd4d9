package cmd

import (
	"fmt"
	"os"

	"cucatalog-backend/lib/serviceutil"
	"cucatalog-backend/services/catalog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Runs the data canary over every persisted term file.",
	Run: func(cmd *cobra.Command, args []string) {
		store := catalogStore()

		terms, err := store.ListTerms()
		if err != nil {
			serviceutil.Fatal("failed to list terms", err)
		}

		problems := 0
		for _, term := range terms {
			records, err := store.LoadTerm(term)
			if err != nil {
				serviceutil.Fatal(fmt.Sprintf("failed to load term %s", term), err)
			}
			for _, problem := range catalog.Verify(records) {
				fmt.Fprintf(os.Stderr, "%s: %s\n", term, problem)
				problems++
			}
		}

		if problems > 0 {
			fmt.Fprintf(os.Stderr, "%d problems found\n", problems)
			os.Exit(1)
		}
		fmt.Printf("%d terms verified\n", len(terms))
	},
}
