package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/udisondev/statcalc/internal/db"
	"github.com/udisondev/statcalc/internal/game/companion"
	"github.com/udisondev/statcalc/internal/model"
	"github.com/udisondev/statcalc/internal/profile"
)

func (c *cli) companionCmd() *cobra.Command {
	var (
		level    int
		unlocked bool
	)

	cmd := &cobra.Command{
		Use:   "companion CLASS/RARITY",
		Short: "Show or change the unlock state and level of a companion",
		Long: `Show the progress of one companion, e.g. mage/epic. --level and
--unlocked change it in the profile, or in the database with --db. A
companion never stored starts locked at level 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := model.ParseCompanionKey(args[0])
			if err != nil {
				return err
			}
			p, err := profile.Load(c.opts.profilePath)
			if err != nil {
				return err
			}

			var store companion.Store
			if c.opts.useDB {
				database, err := c.app.database(ctx)
				if err != nil {
					return err
				}
				store = db.NewCompanionRepository(database.Pool(), p.Character)
			} else if store, err = p.Store(); err != nil {
				return fmt.Errorf("profile %s: %w", c.opts.profilePath, err)
			}

			st, ok, err := store.Get(ctx, key)
			if err != nil {
				return err
			}
			if !ok {
				st = model.CompanionState{Level: 1}
			}

			flags := cmd.Flags()
			changed := flags.Changed("level") || flags.Changed("unlocked")
			if flags.Changed("level") {
				if level < 1 || level > c.app.table.MaxLevel() {
					return fmt.Errorf("level %d out of range 1..%d", level, c.app.table.MaxLevel())
				}
				st.Level = level
			}
			if flags.Changed("unlocked") {
				st.Unlocked = unlocked
			}

			if changed {
				if err := store.Put(ctx, key, st); err != nil {
					return err
				}
				if !c.opts.useDB {
					states, err := store.List(ctx)
					if err != nil {
						return err
					}
					p.SetCompanions(states)
					if err := p.Save(c.opts.profilePath); err != nil {
						return err
					}
				}
				slog.Info("companion saved", "character", p.Character, "companion", key.String(),
					"unlocked", st.Unlocked, "level", st.Level, "db", c.opts.useDB)
			}

			out := cmd.OutOrStdout()
			w := newTable(out)
			state := "locked"
			if st.Unlocked {
				state = "unlocked"
			}
			fmt.Fprintf(w, "%s\t%s\tlevel %d\n", key, state, st.Level)
			if bundle, ok := c.app.table.Lookup(key.Class, key.Rarity, st.Level); ok {
				writeEffects(w, "equip", bundle.Equip)
				writeEffects(w, "inventory", bundle.Inventory)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if changed {
				fmt.Fprintln(out, dimStyle.Render("saved"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", 1, "set the companion level")
	cmd.Flags().BoolVar(&unlocked, "unlocked", false, "set whether the companion is unlocked")
	return cmd
}

func writeEffects(w io.Writer, kind string, d model.Delta) {
	for id, v := range d {
		if v != 0 {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", kind, model.StatID(id), num(v))
		}
	}
}
