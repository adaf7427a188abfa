package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/udisondev/statcalc/internal/db"
	"github.com/udisondev/statcalc/internal/game/preset"
	"github.com/udisondev/statcalc/internal/model"
)

func (c *cli) optimizeCmd() *cobra.Command {
	var (
		monsterName string
		lockName    string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Find the companion preset with the highest DPS",
		Long: `Search combinations of unlocked companions for the preset (one main,
six subs) with the highest DPS. The search stops at optimizer.max_combinations
and reports the best preset found so far. With --db, results are cached by a
fingerprint of the inputs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			monster, err := model.ParseMonsterType(monsterName)
			if err != nil {
				return err
			}
			ch, err := c.app.loadCharacter(ctx)
			if err != nil {
				return err
			}

			lock := ch.lock
			if lockName != "" {
				key, err := model.ParseCompanionKey(lockName)
				if err != nil {
					return err
				}
				lock = &key
			}

			req := preset.Request{
				Base:       ch.base,
				Pool:       ch.pool.Companions,
				Monster:    monster,
				LockedMain: lock,
			}

			var runs *db.OptimizerRunRepository
			if c.opts.useDB {
				database, err := c.app.database(ctx)
				if err != nil {
					return err
				}
				runs = db.NewOptimizerRunRepository(database.Pool())
			}

			opt := preset.NewOptimizer(ch.dps, c.app.cfg.Optimizer, c.app.metrics)
			if runs != nil && !noCache {
				fp := opt.Fingerprint(req)
				cached, err := runs.FindByFingerprint(ctx, fp)
				if err != nil {
					return err
				}
				if cached != nil {
					slog.Info("using cached preset", "fingerprint", fp, "run", cached.ID, "created_at", cached.CreatedAt)
					return writePreset(cmd.OutOrStdout(), cached.Result(), monster, true)
				}
			}

			res, err := opt.Optimize(ctx, req)
			if err != nil {
				return err
			}

			if runs != nil {
				run := db.RunFromResult(res, monster)
				if err := runs.Save(ctx, run); err != nil {
					return err
				}
				slog.Debug("preset cached", "fingerprint", run.Fingerprint, "run", run.ID)
			}
			return writePreset(cmd.OutOrStdout(), res, monster, false)
		},
	}

	cmd.Flags().StringVarP(&monsterName, "monster", "m", "boss", "target monster type (boss or normal)")
	cmd.Flags().StringVar(&lockName, "lock", "", "keep this companion as main, e.g. mage/epic (overrides the profile)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "ignore cached results (still stores the new one)")
	return cmd
}

func writePreset(out io.Writer, res *preset.Result, monster model.MonsterType, cached bool) error {
	heading := fmt.Sprintf("best preset vs %s", monster)
	if cached {
		heading += " (cached)"
	}
	title(out, "%s", heading)

	w := newTable(out)
	mainSlot := slotName(res.Assignment.Main)
	if res.Assignment.LockedMain {
		mainSlot += " (locked)"
	}
	fmt.Fprintf(w, "main\t%s\n", mainSlot)
	for i, k := range res.Assignment.Subs {
		fmt.Fprintf(w, "sub %d\t%s\n", i+1, slotName(k))
	}
	fmt.Fprintf(w, "filled\t%d/%d\n", res.Assignment.Filled(), model.PresetSlots)
	fmt.Fprintf(w, "dps\t%s\n", num(res.DPS))
	fmt.Fprintf(w, "without equip\t%s\n", num(res.BaseDPS))
	if res.BaseDPS > 0 {
		fmt.Fprintf(w, "gain\t%s\n", signedPct((res.DPS-res.BaseDPS)/res.BaseDPS*100))
	}
	fmt.Fprintf(w, "examined\t%d\n", res.Examined)
	if err := w.Flush(); err != nil {
		return err
	}

	if res.Truncated {
		fmt.Fprintln(out, warnStyle.Render("search truncated: preset is the best of the combinations examined"))
	}
	return nil
}

func slotName(k *model.CompanionKey) string {
	if k == nil {
		return "-"
	}
	return k.String()
}
