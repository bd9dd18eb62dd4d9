package cmd

import (
	"context"

	"cucatalog-backend/lib/serviceutil"
	"cucatalog-backend/services/enrich"
	"cucatalog-backend/services/instructors"
	"cucatalog-backend/services/instructors/checklog"
	"cucatalog-backend/services/reconcile"

	"github.com/spf13/cobra"
)

func init() {
	enrichCmd.AddCommand(enrichCulpaCmd)
	enrichCmd.AddCommand(enrichWikiCmd)
	enrichCmd.AddCommand(enrichScholarCmd)
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Runs one enrichment pass over the instructor directory.",
}

// enrichment passes run inside a reconciliation run of their own so
// the updated profiles and propagated columns land atomically
func runEnrichmentPass(ctx context.Context, pass func(ctx context.Context, idx *instructors.Index, log *checklog.Log) error) {
	defer setupTelemetry(ctx)()

	db, err := checklog.Open(config.ChecklogDb)
	if err != nil {
		serviceutil.Fatal("failed to open check log", err)
	}
	defer db.Close()

	run, err := reconcile.NewRun(catalogStore(), instructorStore())
	if err != nil {
		serviceutil.Fatal("failed to start reconciliation run", err)
	}

	err = pass(ctx, run.Index(), checklog.New(db))
	if err != nil {
		serviceutil.Fatal("enrichment pass failed", err)
	}

	err = run.Close(ctx)
	if err != nil {
		serviceutil.Fatal("failed to close reconciliation run", err)
	}
}

var enrichCulpaCmd = &cobra.Command{
	Use:   "culpa",
	Short: "Resolves instructors against the review site.",
	Run: func(cmd *cobra.Command, args []string) {
		e := enrich.NewCulpaEnricher()
		runEnrichmentPass(cmd.Context(), e.Run)
	},
}

var enrichWikiCmd = &cobra.Command{
	Use:   "wiki",
	Short: "Searches the encyclopedia for instructor articles.",
	Run: func(cmd *cobra.Command, args []string) {
		clf := enrich.NewRemoteClassifier(config.Enrich.ClassifierBaseUrl)
		e := enrich.NewWikiEnricher(clf, clf.ArticleSide())
		runEnrichmentPass(cmd.Context(), e.Run)
	},
}

var enrichScholarCmd = &cobra.Command{
	Use:   "scholar",
	Short: "Resolves instructors against the citation index.",
	Run: func(cmd *cobra.Command, args []string) {
		source := enrich.NewRemoteAuthorSource(config.Enrich.ScholarBaseUrl)
		e := enrich.NewScholarEnricher(source, config.DataDir)
		runEnrichmentPass(cmd.Context(), e.Run)
	},
}
