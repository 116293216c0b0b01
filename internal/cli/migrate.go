package cli

import (
	"fmt"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-learn/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-learn/internal/config"
	"github.com/comitanigiacomo/kanso-learn/migrations"
)

func newMigrateCmd() *cobra.Command {
	var envFile string
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate [version]",
		Short: "Apply schema migrations",
		Long: `Move the database schema to the latest version, or to the given version.
A version lower than the current one rolls back with the down scripts.
Connection settings come from DB_* variables and the optional env file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := -1
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 0 {
					return fmt.Errorf("invalid version %q", args[0])
				}
				target = v
			}

			dbCfg, err := config.LoadDatabase(envFile)
			if err != nil {
				return err
			}

			db, err := sqlx.Connect("pgx", dbCfg.PostgresDSN())
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer db.Close()

			migrator, err := repository.NewMigrator(db, migrations.FS)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if statusOnly {
				version, dirty, err := migrator.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "version %d of %d (dirty: %t)\n", version, migrator.Latest(), dirty)
				return nil
			}

			if target < 0 {
				target = migrator.Latest()
			}
			if target > migrator.Latest() {
				return fmt.Errorf("version %d does not exist, latest is %d", target, migrator.Latest())
			}
			steps, err := migrator.To(ctx, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d migration(s) applied, schema at version %d\n", steps, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional env file with DB_* settings")
	cmd.Flags().BoolVar(&statusOnly, "status", false, "print the applied version and exit")

	return cmd
}
