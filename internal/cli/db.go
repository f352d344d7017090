package cli

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database schema management",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")

		m, err := migrate.New(source, cfg.Database.ConnString())
		if err != nil {
			return fmt.Errorf("initialize migrations: %w", err)
		}

		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				success("schema is up to date")
				return nil
			}
			return fmt.Errorf("apply migrations: %w", err)
		}

		version, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		success("schema migrated to version %d (dirty=%v)", version, dirty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)

	dbMigrateCmd.Flags().String("source", "file://migrations", "migration source URL")
}
