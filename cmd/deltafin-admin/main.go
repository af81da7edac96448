// deltafin-admin is the maintenance CLI: seeding default data, resetting
// categories and checking the remote store for duplicates.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"deltafin/internal/backend"
	"deltafin/internal/config"
	"deltafin/internal/core"
	"deltafin/internal/log"
	"deltafin/internal/seed"
	"deltafin/internal/store"
)

func main() {
	logger := log.New(log.Config{Component: log.ComponentAdmin})
	log.SetDefault(logger)

	root := &cobra.Command{
		Use:           "deltafin-admin",
		Short:         "Maintenance commands for the deltafin data store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		seedCmd(logger),
		seedTransactionsCmd(logger),
		resetCmd(logger),
		checkCmd(logger),
	)

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", log.FieldError, err)
		os.Exit(1)
	}
}

// openStore builds the store from the environment configuration.
func openStore(ctx context.Context, logger *log.Logger) (store.Store, backend.CleanupFunc, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, err
	}
	return result.Store, result.Cleanup, nil
}

func withStore(logger *log.Logger, run func(ctx context.Context, s store.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		s, cleanup, err := openStore(ctx, logger)
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}
		return run(ctx, s)
	}
}

func seedCmd(logger *log.Logger) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install the default category set",
		RunE: withStore(logger, func(ctx context.Context, s store.Store) error {
			existing, err := s.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("list categories: %w", err)
			}
			if len(existing) > 0 && !force {
				fmt.Printf("Store already has %d categories; use --force to seed anyway.\n", len(existing))
				return nil
			}

			have := make(map[string]bool, len(existing))
			for _, c := range existing {
				have[strings.ToLower(c.Name)] = true
			}

			created := 0
			for _, c := range seed.DefaultCategories() {
				if have[strings.ToLower(c.Name)] {
					continue
				}
				if _, err := s.CreateCategory(ctx, c); err != nil {
					return fmt.Errorf("create category %q: %w", c.Name, err)
				}
				created++
			}

			logger.InfoContext(ctx, "Seed completed",
				log.FieldOperation, log.OpSeed,
				log.FieldCount, created)
			fmt.Printf("Created %d categories.\n", created)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "seed even when categories already exist")
	return cmd
}

func seedTransactionsCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-transactions",
		Short: "Install a small sample transaction set for the current month",
		RunE: withStore(logger, func(ctx context.Context, s store.Store) error {
			existing, err := s.ListTransactions(ctx, nil)
			if err != nil {
				return fmt.Errorf("list transactions: %w", err)
			}
			if len(existing) > 0 {
				fmt.Printf("Store already has %d transactions; refusing to seed samples.\n", len(existing))
				return nil
			}

			samples := seed.SampleTransactions(time.Now())
			for _, t := range samples {
				if _, err := s.CreateTransaction(ctx, t); err != nil {
					return fmt.Errorf("create transaction %q: %w", t.Description, err)
				}
			}

			logger.InfoContext(ctx, "Sample transactions installed",
				log.FieldOperation, log.OpSeed,
				log.FieldCount, len(samples))
			fmt.Println("Sample transactions installed.")
			return nil
		}),
	}
}

func resetCmd(logger *log.Logger) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-categories",
		Short: "Delete all categories and reinstall the default set",
		RunE: withStore(logger, func(ctx context.Context, s store.Store) error {
			if !yes {
				return fmt.Errorf("refusing to delete categories without --yes")
			}

			existing, err := s.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("list categories: %w", err)
			}
			for _, c := range existing {
				if err := s.DeleteCategory(ctx, c.ID); err != nil {
					return fmt.Errorf("delete category %q: %w", c.Name, err)
				}
			}

			for _, c := range seed.DefaultCategories() {
				if _, err := s.CreateCategory(ctx, c); err != nil {
					return fmt.Errorf("create category %q: %w", c.Name, err)
				}
			}

			logger.InfoContext(ctx, "Categories reset",
				log.FieldOperation, log.OpSeed,
				"removed", len(existing))
			fmt.Printf("Removed %d categories, reinstalled defaults.\n", len(existing))
			return nil
		}),
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the destructive reset")
	return cmd
}

func checkCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report store contents and duplicate categories",
		RunE: withStore(logger, func(ctx context.Context, s store.Store) error {
			categories, err := s.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("list categories: %w", err)
			}
			transactions, err := s.ListTransactions(ctx, nil)
			if err != nil {
				return fmt.Errorf("list transactions: %w", err)
			}
			goals, err := s.ListGoals(ctx)
			if err != nil {
				return fmt.Errorf("list goals: %w", err)
			}

			fmt.Printf("Categories:   %d\n", len(categories))
			fmt.Printf("Transactions: %d\n", len(transactions))
			fmt.Printf("Goals:        %d\n", len(goals))

			dupes := duplicateCategories(categories)
			if len(dupes) == 0 {
				fmt.Println("No duplicate categories.")
				return nil
			}
			fmt.Println("Duplicate categories:")
			for name, count := range dupes {
				fmt.Printf("  %s: %d entries\n", name, count)
			}
			return nil
		}),
	}
}

// duplicateCategories counts names (case-insensitive) appearing more than
// once.
func duplicateCategories(categories []core.Category) map[string]int {
	counts := make(map[string]int)
	for _, c := range categories {
		counts[strings.ToLower(c.Name)]++
	}
	dupes := make(map[string]int)
	for name, n := range counts {
		if n > 1 {
			dupes[name] = n
		}
	}
	return dupes
}
