package cmd

import (
	"context"
	"fmt"
	"os"

	"cucatalog-backend/lib/configutil"
	"cucatalog-backend/lib/serviceutil"
	"cucatalog-backend/lib/telemetry"
	"cucatalog-backend/services/catalog"
	"cucatalog-backend/services/instructors"
	"cucatalog-backend/services/snapshots"

	"github.com/spf13/cobra"
)

type EnrichConfig struct {
	ClassifierBaseUrl string `json:"classifier_base_url"`
	ScholarBaseUrl    string `json:"scholar_base_url"`
}

type Config struct {
	DataDir        string       `json:"data_dir"`
	SnapshotDir    string       `json:"snapshot_dir"`
	ChecklogDb     string       `json:"checklog_db"`
	CatalogListUrl string       `json:"catalog_list_url"`
	Debug          bool         `json:"debug"`
	Enrich         EnrichConfig `json:"enrich"`
}

var config Config

func loadConfig() {
	var err error
	config, err = configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.DataDir == "" {
		config.DataDir = "data"
	}
	if config.SnapshotDir == "" {
		config.SnapshotDir = "data_raw"
	}
	if config.ChecklogDb == "" {
		config.ChecklogDb = "data/internal/checklog.db"
	}
	telemetry.InitSlog(config.Debug)
}

func setupTelemetry(ctx context.Context) func() {
	t, err := telemetry.SetupFromEnv(ctx, "cucatalog")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	return func() {
		t.Shutdown(context.Background())
	}
}

func catalogStore() catalog.Store {
	return catalog.NewStore(config.DataDir)
}

func instructorStore() instructors.Store {
	return instructors.NewStore(config.DataDir)
}

func snapshotStore() snapshots.Store {
	return snapshots.NewStore(config.SnapshotDir)
}

var rootCmd = &cobra.Command{
	Use:   "cucatalog",
	Short: "cucatalog maintains the course catalog dataset: crawling, reconciliation and instructor enrichment.",
}

func Execute() {
	loadConfig()

	if err := rootCmd.ExecuteContext(serviceutil.SignalContext()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
