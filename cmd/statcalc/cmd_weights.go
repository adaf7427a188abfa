package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/udisondev/statcalc/internal/game/weights"
	"github.com/udisondev/statcalc/internal/model"
)

func (c *cli) weightsCmd() *cobra.Command {
	var (
		monsterName string
		csvPath     string
		xlsxPath    string
	)

	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Rank stats by the DPS gain of one increment each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ch, err := c.app.loadCharacter(ctx)
			if err != nil {
				return err
			}
			reporter, err := weights.NewReporter(ch.dps, c.app.cfg.Reporter)
			if err != nil {
				return err
			}
			boss, normal, err := reporter.BuildBoth(ctx, ch.base)
			if err != nil {
				return err
			}

			var tables []*weights.Table
			switch monsterName {
			case "", "both":
				tables = []*weights.Table{boss, normal}
			default:
				m, err := model.ParseMonsterType(monsterName)
				if err != nil {
					return err
				}
				if m == model.MonsterNormal {
					tables = []*weights.Table{normal}
				} else {
					tables = []*weights.Table{boss}
				}
			}

			out := cmd.OutOrStdout()
			for i, t := range tables {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := writeWeights(out, t); err != nil {
					return err
				}
			}

			if csvPath != "" {
				if err := exportFile(csvPath, func(w io.Writer) error { return weights.WriteCSV(w, tables...) }); err != nil {
					return err
				}
			}
			if xlsxPath != "" {
				if err := exportFile(xlsxPath, func(w io.Writer) error { return weights.WriteXLSX(w, tables...) }); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&monsterName, "monster", "m", "both", "boss, normal or both")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the tables as CSV to this file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the tables as an Excel workbook to this file")
	return cmd
}

func writeWeights(out io.Writer, t *weights.Table) error {
	title(out, "stat weights vs %s (dps %s)", t.Monster, num(t.BaseDPS))
	if t.Degenerate {
		fmt.Fprintln(out, warnStyle.Render("baseline DPS is zero: every gain is reported as 0"))
	}

	w := newTable(out)
	fmt.Fprintln(w, "stat\tincrement\tdps\tgain\tgain per unit")
	for _, r := range t.Ranked() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Stat, num(r.Increment), num(r.DPS), pct(r.GainPct), pct(r.GainPerUnit))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s := t.Summary
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("best %s, mean %s, median %s", s.Best, pct(s.MeanGainPct), pct(s.MedianGainPct))))
	return nil
}

func exportFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	slog.Info("report exported", "path", path)
	return nil
}
