package cli

import (
	"fmt"
	"os"
	"time"

	"folio/internal/errors"
	"folio/internal/store"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [--seed FILE]",
	Short: "Apply store migrations and optionally seed blog posts",
	Long: `Apply the SQL schema migrations to the configured Postgres store and,
with --seed, insert the blog posts of a JSON seed file. Posts whose slug
already exists are skipped, so seeding can be repeated safely.

With the memory driver there is nothing to migrate and seeded posts only live
for the duration of the command.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var seedFile string

func init() {
	migrateCmd.Flags().StringVar(&seedFile, "seed", "", "JSON file of blog posts to insert")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	st, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if pg, ok := st.(*store.Postgres); ok {
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Store migrations applied")
	} else {
		logger.Warn("Store driver has no schema, skipping migrations", "driver", st.Driver())
	}

	if seedFile == "" {
		return nil
	}

	posts, err := readSeedFile(seedFile)
	if err != nil {
		return err
	}

	report, err := store.Seed(ctx, st, posts, time.Now().UTC(), logger)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d of %d posts (%d already present, %d in store)\n",
		report.Inserted, report.Read, report.Skipped, report.Total)
	return nil
}

func readSeedFile(path string) ([]store.SeedPost, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot open seed file: %s", path), err)
	}
	defer file.Close()

	return store.ReadSeed(file)
}
