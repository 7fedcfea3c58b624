package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finboard/finboard/internal/platform/db"
	"github.com/finboard/finboard/internal/reports"
)

// NewMigrateCmd applies the bundled migrations to the SQLite file at path().
func NewMigrateCmd(path func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQLite migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := path()
			if err := db.RunMigrations(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s\n", target)
			return nil
		},
	}
}

// NewCacheCmd builds the "cache" command tree.
func NewCacheCmd(open func(ctx context.Context) (*reports.Cache, func(), error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the report cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "bump",
		Short: "Invalidate every cached report",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			if c == nil {
				return fmt.Errorf("report cache is disabled")
			}
			ver, err := c.Bump(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cache version %d\n", ver)
			return nil
		},
	})
	return cmd
}
