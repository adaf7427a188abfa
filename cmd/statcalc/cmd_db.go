package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udisondev/statcalc/internal/db"
	"github.com/udisondev/statcalc/internal/profile"
)

func (c *cli) stagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List stages and their target defense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "id\tname\tboss defense\tnormal defense")
			for _, s := range c.app.stages.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, pct(s.BossDefense), pct(s.NormalDefense))
			}
			return w.Flush()
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.RunMigrations(cmd.Context(), c.app.dsn()); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			return nil
		},
	}
}

func (c *cli) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy the profile's stats and companions into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := profile.Load(c.opts.profilePath)
			if err != nil {
				return err
			}
			raw, err := p.Snapshot(c.app.agg.Policy())
			if err != nil {
				return fmt.Errorf("profile %s: %w", c.opts.profilePath, err)
			}
			states, err := p.CompanionStates()
			if err != nil {
				return fmt.Errorf("profile %s: %w", c.opts.profilePath, err)
			}

			database, err := c.app.database(ctx)
			if err != nil {
				return err
			}
			svc := db.NewCharacterPersistenceService(database.Pool())
			if err := svc.SaveCharacter(ctx, p.Character, raw, states); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "synced %s: %d stats, %d companions\n", p.Character, len(raw.Map()), len(states))
			return nil
		},
	}
}
