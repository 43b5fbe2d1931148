package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lms-g2/lms-api/internal/infrastructure/db/mongo"
	"github.com/lms-g2/lms-api/internal/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create MongoDB indexes",
	Long: `Creates the collection indexes the API relies on, including the unique
email index and the unique (student, course) enrollment index. Safe to run
repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StoreDriver != config.DriverMongo {
			log.Info().Str("driver", cfg.StoreDriver).Msg("nothing to migrate")
			return nil
		}

		ctx := cmd.Context()
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		defer func() { _ = client.Disconnect(ctx) }()

		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("indexes ensured")
		return nil
	},
}
