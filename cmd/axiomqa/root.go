package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/axiomqa/internal/bootstrap"
	"github.com/PabloGalante/axiomqa/internal/config"
	"github.com/PabloGalante/axiomqa/internal/observability"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "axiomqa",
		Short: "Ask questions answered from the policy constitution",
		Long: `axiomqa answers questions from a constitution of policy axioms.

The answer cites the axioms it relies on, e.g. [AXIOM-001]; cited axioms
are listed in full after the answer.

Examples:
  axiomqa ask "When are premiums due?"
  axiomqa ask --no-stream --show-prompt "Is dental covered?"
  axiomqa axioms`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Logs go to stderr so the answer on stdout stays clean.
			observability.SetOutput(os.Stderr)
			if opts.verbose {
				return observability.SetLevel("debug")
			}
			return observability.SetLevel("warn")
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (overrides AXIOMQA_CONFIG)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(newAskCmd(opts))
	cmd.AddCommand(newAxiomsCmd(opts))
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFrom(o.configPath)
	}
	return config.Load()
}

func (o *rootOptions) build(cmd *cobra.Command) (*bootstrap.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.Build(cmd.Context(), cfg)
}
