package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"supplychainx.org/internal/migrate"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the embedded schema migrations",
	}
	cmd.AddCommand(
		migrateAction("up", "Apply all pending migrations", func(ctx context.Context, m *migrate.Manager) ([]string, error) {
			return m.Up(ctx)
		}),
		migrateAction("down", "Roll back the most recent migration", func(ctx context.Context, m *migrate.Manager) ([]string, error) {
			name, err := m.Down(ctx)
			if err != nil || name == "" {
				return nil, err
			}
			return []string{name}, nil
		}),
		migrateAction("status", "List applied migrations", func(ctx context.Context, m *migrate.Manager) ([]string, error) {
			return m.Status(ctx)
		}),
		migrateAction("seed", "Load reference data", func(ctx context.Context, m *migrate.Manager) ([]string, error) {
			return m.Seed(ctx)
		}),
	)
	return cmd
}

func migrateAction(use, short string, fn func(context.Context, *migrate.Manager) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			names, err := fn(ctx, migrate.Default(st.DB()))
			if err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to do")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
