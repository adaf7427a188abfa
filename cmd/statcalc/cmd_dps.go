package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/udisondev/statcalc/internal/model"
)

func (c *cli) dpsCmd() *cobra.Command {
	var breakdown bool

	cmd := &cobra.Command{
		Use:   "dps",
		Short: "Show DPS against boss and normal monsters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ch, err := c.app.loadCharacter(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			title(out, "%s", ch.profile.Character)

			w := newTable(out)
			fmt.Fprintf(w, "companions\t%d unlocked\t%d skipped\n", len(ch.pool.Unlocked()), ch.pool.Skipped)
			for _, m := range monsters {
				fmt.Fprintf(w, "%s dps\t%s\n", m, num(ch.dps.Compute(ch.base, m)))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !breakdown {
				return nil
			}
			for _, m := range monsters {
				fmt.Fprintln(out)
				title(out, "breakdown vs %s", m)
				if err := writeBreakdown(out, ch, m); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&breakdown, "breakdown", false, "show the folded factors of the formula")
	return cmd
}

func writeBreakdown(out io.Writer, ch *character, m model.MonsterType) error {
	b := ch.dps.Breakdown(ch.base, m)

	w := newTable(out)
	rows := []struct {
		name  string
		value float64
	}{
		{"attack", b.Attack},
		{"stat damage %", b.StatDamagePct},
		{"damage factor", b.DamageFactor},
		{"type factor", b.TypeFactor},
		{"skill factor", b.SkillFactor},
		{"range factor", b.RangeFactor},
		{"defense factor", b.DefenseFactor},
		{"hit", b.Hit},
		{"crit factor", b.CritFactor},
		{"speed factor", b.SpeedFactor},
		{"final factor", b.FinalFactor},
		{"dps", b.DPS},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r.name, num(r.value))
	}
	return w.Flush()
}
