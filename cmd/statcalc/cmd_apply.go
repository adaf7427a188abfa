package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/udisondev/statcalc/internal/db"
	"github.com/udisondev/statcalc/internal/model"
)

func (c *cli) applyCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "apply STAT DELTA [STAT DELTA...]",
		Short: "Apply stat deltas and show the DPS change",
		Long: `Apply one or more stat deltas in order, each combined with the stat's
rule (additive, multiplicative final damage, diminishing returns), and show
the resulting DPS. With --save the new stats are written back.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return errors.New("expected STAT DELTA pairs")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := c.app.loadCharacter(ctx)
			if err != nil {
				return err
			}

			raw, err := c.applyArgs(ch.raw, args)
			if err != nil {
				return err
			}
			next := c.app.agg.ApplyDelta(raw, ch.pool.Inventory)

			out := cmd.OutOrStdout()
			w := newTable(out)
			fmt.Fprintln(w, "monster\tbefore\tafter\tgain")
			for _, m := range monsters {
				gain := "-"
				if g, ok := ch.dps.Gain(ch.base, next, m); ok {
					gain = signedPct(g)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m,
					num(ch.dps.Compute(ch.base, m)), num(ch.dps.Compute(next, m)), gain)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !save {
				return nil
			}
			ch.profile.SetStats(raw)
			if err := ch.profile.Save(c.opts.profilePath); err != nil {
				return err
			}
			if c.opts.useDB {
				database, err := c.app.database(ctx)
				if err != nil {
					return err
				}
				if err := db.NewStatsRepository(database.Pool()).Save(ctx, ch.profile.Character, raw); err != nil {
					return err
				}
			}
			slog.Info("stats saved", "character", ch.profile.Character, "profile", c.opts.profilePath, "db", c.opts.useDB)
			fmt.Fprintln(out, dimStyle.Render("saved"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "write the new stats back to the profile (and database with --db)")
	return cmd
}

// applyArgs applies STAT DELTA pairs to s in order.
func (c *cli) applyArgs(s model.Snapshot, args []string) (model.Snapshot, error) {
	for i := 0; i+1 < len(args); i += 2 {
		id, err := model.ParseStat(args[i])
		if err != nil {
			if c.app.agg.Policy() == model.UnknownStatLenient {
				slog.Warn("ignoring unknown stat", "stat", args[i])
				continue
			}
			return s, err
		}
		delta, err := parseFloat(args[i+1], "delta")
		if err != nil {
			return s, err
		}
		if s, err = c.app.agg.Apply(s, id, delta); err != nil {
			return s, err
		}
	}
	return s, nil
}
