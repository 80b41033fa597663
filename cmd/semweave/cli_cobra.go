package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func executeCLI() error {
	return buildRootCommand().Execute()
}

func buildRootCommand() *cobra.Command {
	var (
		showVersion bool
		configPath  string
		debug       bool
	)

	root := &cobra.Command{
		Use:   "semweave",
		Short: "Temporal semantic weaving: experiences as interfering waves in a resonance field",
		Long: strings.TrimSpace(`semweave stores experiences as waves that interfere, entangle, decay
and crystallize in a shared resonance field.

Add experiences, query the field for insights, inspect crystals and
causal loops, and demonstrate holographic damage recovery.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show build/version metadata")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	opts := func() (string, bool) { return configPath, debug }

	root.AddCommand(newAddCommand(opts))
	root.AddCommand(newQueryCommand(opts))
	root.AddCommand(newStatsCommand(opts))
	root.AddCommand(newDemoCommand(opts))
	root.AddCommand(newReplCommand(opts))
	root.AddCommand(newRecoverCommand(opts))
	root.AddCommand(newVersionCommand())

	return root
}

type appOptions func() (configPath string, debug bool)

func withApp(opts appOptions, fn func(ctx context.Context, a *app) error) error {
	configPath, debug := opts()
	a, err := newApp(configPath, debug)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(context.Background(), a)
}

func newAddCommand(opts appOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "add <text>",
		Short:   "Insert an experience wave into the field",
		Example: "  semweave add \"Met Sarah for coffee, she got promoted\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				return a.add(ctx, strings.Join(args, " "))
			})
		},
	}
}

func newQueryCommand(opts appOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "query <text>",
		Short:   "Query the field for resonating insights",
		Example: "  semweave query \"What connects guitar and coffee?\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				return a.query(ctx, strings.Join(args, " "))
			})
		},
	}
}

func newStatsCommand(opts appOptions) *cobra.Command {
	var replayFirst bool

	cmd := &cobra.Command{
		Use:     "stats",
		Short:   "Show field statistics",
		Example: "  semweave stats --replay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				if replayFirst {
					return a.replay(ctx)
				}
				a.stats()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&replayFirst, "replay", false, "Rebuild the field from the archive before reporting")
	return cmd
}

func newDemoCommand(opts appOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "demo",
		Short:   "Run the built-in demonstration scenario",
		Long:    "Load a small experience set, run queries, and show crystals, braids, loops, and holographic recovery.",
		Example: "  semweave demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				return a.demo(ctx)
			})
		},
	}
}

func newReplCommand(opts appOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "repl",
		Short:   "Interactive field session",
		Example: "  semweave repl",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				return a.repl(ctx)
			})
		},
	}
}

func newRecoverCommand(opts appOptions) *cobra.Command {
	var fraction float64

	cmd := &cobra.Command{
		Use:     "recover",
		Short:   "Replay the archive and demonstrate holographic damage recovery",
		Example: "  semweave recover --damage 0.5",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				if a.arch != nil {
					if err := a.replay(ctx); err != nil {
						return err
					}
				}
				a.recoverDemo(fraction)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&fraction, "damage", 0.5, "Fraction of spectral coefficients to zero")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show build/version metadata",
		Example: "  semweave version",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion()
			return nil
		},
	}
}
