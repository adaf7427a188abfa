package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/udisondev/statcalc/internal/game/equivalency"
	"github.com/udisondev/statcalc/internal/model"
)

func (c *cli) equivCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "equiv STAT DELTA",
		Short: "Convert a stat gain into equivalent gains of the other stats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source, err := model.ParseStat(args[0])
			if err != nil {
				return err
			}
			delta, err := parseFloat(args[1], "delta")
			if err != nil {
				return err
			}

			ch, err := c.app.loadCharacter(ctx)
			if err != nil {
				return err
			}
			solver, err := equivalency.NewSolver(ch.dps, c.app.cfg.Solver, c.app.metrics)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if to != "" {
				target, err := model.ParseStat(to)
				if err != nil {
					return err
				}
				eq, ok, err := solver.Convert(ctx, ch.base, source, delta, target)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, warnStyle.Render("no DPS gain to convert"))
					return nil
				}
				return writeEquivalents(out, []equivalency.Equivalent{eq})
			}

			res, err := solver.Solve(ctx, ch.base, source, delta)
			if err != nil {
				return err
			}
			if res == nil {
				fmt.Fprintln(out, warnStyle.Render("no DPS gain to convert"))
				return nil
			}

			title(out, "%s %s%s = %s DPS vs %s", source, sign(delta), num(delta), signedPct(res.TargetGainPct), res.Monster)
			return writeEquivalents(out, res.Sorted())
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "solve only this target stat")
	return cmd
}

func writeEquivalents(out io.Writer, eqs []equivalency.Equivalent) error {
	w := newTable(out)
	fmt.Fprintln(w, "stat\tequivalent\tstatus\titerations")
	for _, eq := range eqs {
		value := "-"
		if eq.Matched() {
			value = num(eq.Value)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", eq.Stat, value, eq.Status, eq.Iterations)
	}
	return w.Flush()
}

func sign(v float64) string {
	if v >= 0 {
		return "+"
	}
	return ""
}
