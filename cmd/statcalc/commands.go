package main

import (
	"os"

	"github.com/spf13/cobra"
)

// cli wires the cobra commands to the app built in PersistentPreRunE.
type cli struct {
	opts options
	app  *app
}

func (c *cli) rootCmd() *cobra.Command {
	configPath := DefaultConfigPath
	if p := os.Getenv("STATCALC_CONFIG"); p != "" {
		configPath = p
	}

	root := &cobra.Command{
		Use:   "statcalc",
		Short: "Character DPS, stat equivalency and companion preset calculator",
		Long: `statcalc folds a character's stats into DPS against boss and normal
monsters, converts a stat gain into equivalent gains of every other stat,
and searches companion presets for the highest DPS.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(c.opts)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if c.opts.metricsFile == "" {
				return nil
			}
			return c.app.metrics.WriteTextfile(c.opts.metricsFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.configPath, "config", configPath, "calculator config file (defaults are used when missing)")
	flags.StringVarP(&c.opts.profilePath, "profile", "p", DefaultProfilePath, "character profile file")
	flags.StringVar(&c.opts.stage, "stage", "", "stage id selecting target defense (overrides the profile)")
	flags.BoolVar(&c.opts.useDB, "db", false, "read and write character data in PostgreSQL")
	flags.StringVar(&c.opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(
		c.dpsCmd(),
		c.applyCmd(),
		c.equivCmd(),
		c.optimizeCmd(),
		c.companionCmd(),
		c.weightsCmd(),
		c.stagesCmd(),
		c.migrateCmd(),
		c.syncCmd(),
	)
	return root
}

func (c *cli) close() {
	if c.app != nil {
		c.app.close()
	}
}
