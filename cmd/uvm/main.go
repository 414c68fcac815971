// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ezrec/uvm/config"
)

// options shared by all subcommands.
type options struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// newLogger builds the tool logger. Verbose mode traces every instruction.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "uvm",
		Short:         "Assemble and run UVM programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			opts.cfg, err = config.Load(opts.configPath)
			if err != nil {
				return
			}
			if !cmd.Flags().Changed("verbose") {
				opts.verbose = opts.cfg.Verbose
			}
			opts.logger, err = newLogger(opts.verbose)
			return
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "uvm.toml configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose mode")

	rootCmd.AddCommand(
		newAsmCommand(opts),
		newRunCommand(opts),
		newExecCommand(opts),
	)

	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}
