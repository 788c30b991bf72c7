// Package cli implements the searchdsl command line.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchdsl/decode"
	"github.com/kailas-cloud/searchdsl/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Env        string
	MaxDepth   int
	Pretty     bool
}

// validEnvs are the environments with a config/<env>.yaml and a logger preset.
var validEnvs = []string{"local", "docker", "prod"}

// NewRootCommand creates the root command for the searchdsl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "searchdsl",
		Short: "Typed OpenSearch query DSL tooling",
		Long: `searchdsl normalizes OpenSearch query clauses, decodes aggregation
responses into typed bucket trees and serves both over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.ConfigPath == "" && !slices.Contains(validEnvs, opts.Env) {
				return NewExitError(ExitUsage, fmt.Sprintf("invalid env %q: must be one of %v", opts.Env, validEnvs))
			}
			if opts.MaxDepth < 0 || opts.MaxDepth > decode.MaxDepth {
				return NewExitError(ExitUsage, fmt.Sprintf("--max-depth must be between 0 and %d", decode.MaxDepth))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (overrides --env)")
	cmd.PersistentFlags().StringVar(&opts.Env, "env", config.GetEnv(), "environment: local, docker or prod")
	cmd.PersistentFlags().IntVar(&opts.MaxDepth, "max-depth", 0, "JSON nesting limit (0 = default)")
	cmd.PersistentFlags().BoolVar(&opts.Pretty, "pretty", false, "indent JSON output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewNormalizeCommand(opts))
	cmd.AddCommand(NewDecodeAggsCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func (o *RootOptions) decodeOptions() []decode.Option {
	if o.MaxDepth == 0 {
		return nil
	}
	return []decode.Option{decode.WithMaxDepth(o.MaxDepth)}
}
