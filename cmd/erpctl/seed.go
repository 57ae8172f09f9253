package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/database"
	"github.com/stemsi/unierp-backend/internal/repository"
	"github.com/stemsi/unierp-backend/internal/seed"
	"github.com/stemsi/unierp-backend/internal/service"
)

func newSeedCmd(cfg *config.Config) *cobra.Command {
	var (
		file   string
		check  bool
		noSync bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, courses and offerings from a YAML catalog",
		Long: `Load users, courses, prerequisites and offerings from a YAML catalog.

Users are matched by email, courses by code and offerings by course and term,
so the same file can be applied repeatedly. Use --check to validate the file
without touching the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := seed.Load(file)
			if err != nil {
				return err
			}
			if check {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d users, %d courses, %d offerings\n",
					file, len(catalog.Users), len(catalog.Courses), len(catalog.Offerings))
				return nil
			}

			log := cliLogger(cfg)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			pool, err := database.NewPostgresPool(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("connect to PostgreSQL: %w", err)
			}
			defer pool.Close()

			users := repository.NewUserRepository(pool)
			courses := repository.NewCourseRepository(pool)
			offerings := repository.NewOfferingRepository(pool)

			res, err := seed.Apply(ctx, catalog, seed.Repositories{
				Users:     users,
				Courses:   courses,
				Offerings: offerings,
			}, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Seeded %d users, %d courses, %d prerequisites, %d new and %d updated offerings\n",
				res.Users, res.Courses, res.Prerequisites, res.OfferingsCreated, res.OfferingsUpdated)

			if noSync {
				return nil
			}
			rdb, err := database.NewRedisClient(ctx, cfg, log)
			if err != nil {
				log.Warn().Err(err).Msg("Redis unavailable, cached catalog pages expire on their own")
				return nil
			}
			defer rdb.Close()
			service.NewCatalogService(courses, offerings, users, rdb, cfg.CatalogCacheTTL, log).InvalidateCache(ctx)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seeds/catalog.yaml", "Seed file to load")
	cmd.Flags().BoolVar(&check, "check", false, "Validate the file and exit")
	cmd.Flags().BoolVar(&noSync, "skip-cache", false, "Do not invalidate the Redis catalog cache")
	return cmd
}
