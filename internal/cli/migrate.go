package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sitepulse-io/sitepulse/internal/actor"
	"github.com/sitepulse-io/sitepulse/internal/middleware"
	"github.com/sitepulse-io/sitepulse/internal/migration"
	"github.com/sitepulse-io/sitepulse/internal/models"
	"github.com/sitepulse-io/sitepulse/internal/sites"
	"github.com/sitepulse-io/sitepulse/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate sites to per-site storage actors",
	Long: `Migrate a site's historical events from the legacy relational store
into its storage actor. Batches are written sequentially per site; sites
are migrated one at a time. Re-running a partially completed migration
resumes it.`,
	Example: `  sitepulse migrate --site 42 --verify
  sitepulse migrate --team 7 --dry-run
  sitepulse migrate --site 42 --verify --cleanup --force --yes`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Int64("site", 0, "site id to migrate")
	migrateCmd.Flags().Int64("team", 0, "migrate every site owned by this team")
	migrateCmd.Flags().Int("batch-size", migration.DefaultBatchSize, "events per batch")
	migrateCmd.Flags().Bool("dry-run", false, "compute batches and totals without writing")
	migrateCmd.Flags().Bool("verify", false, "verify actor event count after migration")
	migrateCmd.Flags().Bool("cleanup", false, "delete legacy rows after successful migration (requires --force)")
	migrateCmd.Flags().Bool("force", false, "allow cleanup to delete legacy rows")
	migrateCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	siteID, _ := cmd.Flags().GetInt64("site")
	teamID, _ := cmd.Flags().GetInt64("team")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verify, _ := cmd.Flags().GetBool("verify")
	cleanup, _ := cmd.Flags().GetBool("cleanup")
	force, _ := cmd.Flags().GetBool("force")
	yes, _ := cmd.Flags().GetBool("yes")
	format, _ := cmd.Flags().GetString("output")

	if siteID == 0 && teamID == 0 {
		return fmt.Errorf("either --site or --team is required")
	}
	if siteID != 0 && teamID != 0 {
		return fmt.Errorf("--site and --team are mutually exclusive")
	}

	// One correlation id per run so every migration log line is traceable
	// the same way handler logs are.
	ctx := middleware.WithRequestID(context.Background(), uuid.NewString())

	eventStore, err := store.Connect(ctx, cfg.Database.ConnString())
	if err != nil {
		return fmt.Errorf("connect to legacy store: %w", err)
	}
	defer eventStore.Close()

	siteRepo := sites.NewRepository(eventStore.Pool(), nil, 0)

	var targets []models.Site
	if siteID != 0 {
		site, err := siteRepo.GetSite(ctx, siteID)
		if err != nil {
			return err
		}
		targets = []models.Site{*site}
	} else {
		targets, err = siteRepo.GetSitesByTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return fmt.Errorf("team %d has no sites", teamID)
		}
	}

	if !dryRun && !yes && !force {
		if !confirm(fmt.Sprintf("Migrate %d site(s)? Batches are written once started.", len(targets))) {
			return fmt.Errorf("aborted")
		}
	}

	registry := actor.NewRegistry(cfg.Actor.BaseURL, cfg.Actor.Timeout)
	orchestrator := migration.New(eventStore, migration.RegistryResolver{Registry: registry}, nil)

	req := models.MigrationRequest{
		BatchSize: batchSize,
		DryRun:    dryRun,
		Verify:    verify,
		Cleanup:   cleanup,
		Force:     force,
	}

	result := orchestrator.MigrateSites(ctx, targets, req)

	if err := render(format, result); err != nil {
		return err
	}

	for _, site := range result.Sites {
		if site.Success {
			success("site %d: %d/%d events in %d batches", site.SiteID, site.MigratedEvents, site.TotalEvents, site.Batches)
		} else {
			failure("site %d: %d/%d events migrated, %d error(s)", site.SiteID, site.MigratedEvents, site.TotalEvents, len(site.Errors))
		}
	}

	if result.AnyFailed() {
		return fmt.Errorf("%d of %d site migrations failed", result.Failed, len(result.Sites))
	}
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
