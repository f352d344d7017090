package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitepulse-io/sitepulse/internal/actor"
	"github.com/sitepulse-io/sitepulse/internal/sites"
	"github.com/sitepulse-io/sitepulse/internal/store"
	"github.com/sitepulse-io/sitepulse/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a migrated site against its storage actor",
	Long: `Run the full reconciliation suite for a site: structural validation of
the actor's records, count reconciliation against the legacy store, and a
sampled consistency check. The site passes only with zero errors.`,
	Example: `  sitepulse validate --site 42
  sitepulse validate --site 42 --strict --sample 250`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Int64("site", 0, "site id to validate (required)")
	validateCmd.Flags().Bool("strict", false, "promote warnings to errors")
	validateCmd.Flags().Int("sample", 0, "override consistency sample size")
	_ = validateCmd.MarkFlagRequired("site")
}

func runValidate(cmd *cobra.Command, args []string) error {
	siteID, _ := cmd.Flags().GetInt64("site")
	strict, _ := cmd.Flags().GetBool("strict")
	sample, _ := cmd.Flags().GetInt("sample")
	format, _ := cmd.Flags().GetString("output")

	ctx := context.Background()

	eventStore, err := store.Connect(ctx, cfg.Database.ConnString())
	if err != nil {
		return fmt.Errorf("connect to legacy store: %w", err)
	}
	defer eventStore.Close()

	siteRepo := sites.NewRepository(eventStore.Pool(), nil, 0)
	site, err := siteRepo.GetSite(ctx, siteID)
	if err != nil {
		return err
	}

	valCfg := validation.DefaultConfig()
	valCfg.Strict = strict
	valCfg.MaxStringLength = cfg.Validation.MaxStringLength
	if sample > 0 {
		valCfg.SampleSize = sample
	} else if cfg.Validation.SampleSize > 0 {
		valCfg.SampleSize = cfg.Validation.SampleSize
	}

	source, err := eventStore.ReadSiteEvents(ctx, siteID)
	if err != nil {
		return err
	}

	client := actor.NewClient(cfg.Actor.BaseURL, site.UUID, cfg.Actor.Timeout)

	health, err := client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("actor unreachable for site %d: %w", siteID, err)
	}

	destData, err := client.GetEventsData(ctx, actor.EventsDataRequest{Limit: valCfg.SampleSize})
	if err != nil {
		return fmt.Errorf("read actor sample for site %d: %w", siteID, err)
	}

	started := time.Now()
	result := validation.ValidateSiteMigration(source, destData.Events, len(source), health.TotalEvents, valCfg)

	report := struct {
		SiteID      int64       `json:"site_id"`
		SiteUUID    string      `json:"site_uuid"`
		LegacyCount int         `json:"legacy_count"`
		ActorCount  int         `json:"actor_count"`
		DurationMS  int64       `json:"duration_ms"`
		Result      interface{} `json:"result"`
	}{
		SiteID:      siteID,
		SiteUUID:    site.UUID,
		LegacyCount: len(source),
		ActorCount:  health.TotalEvents,
		DurationMS:  time.Since(started).Milliseconds(),
		Result:      result,
	}

	if err := render(format, report); err != nil {
		return err
	}

	if result.IsValid {
		success("site %d valid: %d errors, %d warnings", siteID, len(result.Errors), len(result.Warnings))
		return nil
	}
	failure("site %d invalid: %d errors, %d warnings", siteID, len(result.Errors), len(result.Warnings))
	return fmt.Errorf("validation failed for site %d", siteID)
}
