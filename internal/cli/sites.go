package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitepulse-io/sitepulse/internal/sites"
	"github.com/sitepulse-io/sitepulse/internal/store"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Inspect site routing metadata",
}

var sitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sites for a team",
	RunE: func(cmd *cobra.Command, args []string) error {
		teamID, _ := cmd.Flags().GetInt64("team")
		format, _ := cmd.Flags().GetString("output")
		if teamID == 0 {
			return fmt.Errorf("--team is required")
		}

		ctx := context.Background()
		eventStore, err := store.Connect(ctx, cfg.Database.ConnString())
		if err != nil {
			return fmt.Errorf("connect to legacy store: %w", err)
		}
		defer eventStore.Close()

		repo := sites.NewRepository(eventStore.Pool(), nil, 0)
		list, err := repo.GetSitesByTeam(ctx, teamID)
		if err != nil {
			return err
		}

		if format == "table" {
			fmt.Printf("%-6s %-38s %-10s %-16s %s\n", "ID", "UUID", "TAG", "ADAPTER", "DOMAIN")
			for _, s := range list {
				fmt.Printf("%-6d %-38s %-10s %-16s %s\n", s.ID, s.UUID, s.TagID, s.Adapter, s.Domain)
			}
			return nil
		}
		return render(format, list)
	},
}

var sitesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one site",
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, _ := cmd.Flags().GetInt64("site")
		format, _ := cmd.Flags().GetString("output")
		if siteID == 0 {
			return fmt.Errorf("--site is required")
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
		return render(format, site)
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
	sitesCmd.AddCommand(sitesListCmd)
	sitesCmd.AddCommand(sitesShowCmd)

	sitesListCmd.Flags().Int64("team", 0, "team id")
	sitesShowCmd.Flags().Int64("site", 0, "site id")
}
