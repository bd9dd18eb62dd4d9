package cmd

import (
	"cucatalog-backend/lib/serviceutil"
	"cucatalog-backend/services/crawler"
	"cucatalog-backend/services/reconcile"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawls the catalog and reconciles the result into the dataset.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		defer setupTelemetry(ctx)()

		c := crawler.New(snapshotStore(), config.CatalogListUrl)
		results, err := c.Crawl(ctx)
		if err != nil {
			serviceutil.Fatal("crawl failed", err)
		}

		run, err := reconcile.NewRun(catalogStore(), instructorStore())
		if err != nil {
			serviceutil.Fatal("failed to start reconciliation run", err)
		}
		for _, result := range results {
			for _, rec := range result.Records {
				err = run.Record(ctx, result.Term, rec)
				if err != nil {
					serviceutil.Fatal("failed to record class", err)
				}
			}
		}

		err = run.Close(ctx)
		if err != nil {
			serviceutil.Fatal("failed to close reconciliation run", err)
		}
	},
}
