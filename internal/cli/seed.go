package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitepulse-io/sitepulse/internal/seeder"
	"github.com/sitepulse-io/sitepulse/internal/sites"
	"github.com/sitepulse-io/sitepulse/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a site with generated analytics events",
	Long: `Generate realistic page-view and custom events for a site and write
them to the legacy relational store. Useful for migration rehearsal and
load testing.`,
	Example: `  sitepulse seed --site 42 --count 1000
  sitepulse seed --site 42 --count 5000 --spread 720h`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().Int64("site", 0, "site id to seed (required)")
	seedCmd.Flags().Int("count", 1000, "number of events to generate")
	seedCmd.Flags().Duration("spread", 30*24*time.Hour, "time window to spread events over")
	_ = seedCmd.MarkFlagRequired("site")
}

func runSeed(cmd *cobra.Command, args []string) error {
	siteID, _ := cmd.Flags().GetInt64("site")
	count, _ := cmd.Flags().GetInt("count")
	spread, _ := cmd.Flags().GetDuration("spread")

	if count <= 0 {
		return fmt.Errorf("--count must be positive")
	}

	ctx := context.Background()
	eventStore, err := store.Connect(ctx, cfg.Database.ConnString())
	if err != nil {
		return fmt.Errorf("connect to legacy store: %w", err)
	}
	defer eventStore.Close()

	repo := sites.NewRepository(eventStore.Pool(), nil, 0)
	site, err := repo.GetSite(ctx, siteID)
	if err != nil {
		return err
	}

	events := seeder.GenerateEvents(seeder.Options{
		TagID:      site.TagID,
		Domain:     site.Domain,
		Count:      count,
		TimeSpread: spread,
	})

	inserted, err := eventStore.InsertSiteEvents(ctx, site.ID, site.TeamID, events)
	if err != nil {
		return fmt.Errorf("seed site %d: inserted %d of %d: %w", siteID, inserted, count, err)
	}

	success("seeded site %d with %d events over %s", siteID, inserted, spread)
	return nil
}
