// Package cli implements the circuitc command-line driver: a debug harness that runs the
// relational-to-circuit lowering pass against a canned plan fixture (there is no upstream SQL
// parser in this module to source a real one from) and reports the resulting sealed circuit as
// text, JSON, or a Graphviz/Mermaid diagram.
package cli

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/l7mp/dbsp-sql/internal/buildinfo"
)

// RootOptions holds the flags every subcommand shares.
type RootOptions struct {
	JSON    bool
	Verbose bool
	log     logr.Logger
}

// NewRootCommand builds the circuitc root command with its compile/render/version subcommands.
func NewRootCommand(info buildinfo.BuildInfo) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "circuitc",
		Short: "circuitc lowers a relational plan fixture into a DBSP circuit",
		Long: "circuitc drives the relational-to-circuit compiler against a named plan fixture " +
			"and prints the resulting sealed circuit, since the compiler itself exposes no CLI or " +
			"wire format of its own.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.log = newLogger(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "emit JSON instead of text")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug-level logging")

	cmd.AddCommand(newCompileCommand(opts))
	cmd.AddCommand(newRenderCommand(opts))
	cmd.AddCommand(newVersionCommand(opts, info))

	return cmd
}

func newLogger(verbose bool) logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}
	return zapr.NewLogger(zl).WithName("circuitc")
}

func (o *RootOptions) formatter(cmd *cobra.Command) *Formatter {
	return &Formatter{
		JSON:    o.JSON,
		Out:     cmd.OutOrStdout(),
		ErrOut:  cmd.ErrOrStderr(),
		Verbose: o.Verbose,
	}
}

// Execute runs the circuitc root command against os.Args, returning a process exit code.
func Execute(info buildinfo.BuildInfo) int {
	cmd := NewRootCommand(info)
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err != nil {
		jsonOut, _ := cmd.PersistentFlags().GetBool("json")
		f := &Formatter{JSON: jsonOut, Out: cmd.OutOrStdout(), ErrOut: cmd.ErrOrStderr()}
		_ = f.Failure(err)
		return ExitCode(err)
	}
	return ExitSuccess
}
