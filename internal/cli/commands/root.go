package commands

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/ormschema/internal/cli/ui"
	"github.com/conduit-lang/ormschema/internal/orm/metadata"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "ormschema",
		Short: "Compile entity metadata into ORM storage schemas",
		Long: color.CyanString(`ormschema - entity metadata to storage schema compiler

ormschema reads layered entity, field-type, link-type and scope definitions
and compiles them into the storage schema an ORM consumes.

Features:
  • Layered definition roots (YAML or JSON)
  • Relationship resolution with synthesized junction entities
  • Deterministic, length-bounded index names
  • Full-text index aggregation with backend capability checks
  • Schema diffs between definition layers
  • PostgreSQL DDL preview`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default ./ormschema.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringSliceVarP(&opts.definitions, "definitions", "d", nil, "Definition roots, later roots override earlier ones")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewCompileCommand(opts))
	rootCmd.AddCommand(NewDDLCommand(opts))
	rootCmd.AddCommand(NewInspectCommand(opts))
	rootCmd.AddCommand(NewDiffCommand(opts))
	rootCmd.AddCommand(NewWatchCommand(opts))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the ormschema version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			titleColor.Fprint(out, "ormschema version: ")
			cmd.Println(Version)
			titleColor.Fprint(out, "Git commit: ")
			cmd.Println(GitCommit)
			titleColor.Fprint(out, "Build date: ")
			cmd.Println(BuildDate)
			titleColor.Fprint(out, "Go version: ")
			cmd.Println(goVer)
		},
	}
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprint(rootCmd.ErrOrStderr(), describe(err))
		return err
	}
	return nil
}

// describe renders the report for an error returned by a command
func describe(err error) string {
	var notFound *entityNotFoundError
	switch {
	case errors.As(err, &notFound):
		return ui.EntityNotFoundError(notFound.name, ui.Suggest(notFound.name, notFound.known), color.NoColor)
	case errors.Is(err, metadata.ErrConfiguration):
		return ui.ConfigurationError(err, color.NoColor)
	case errors.Is(err, context.Canceled):
		return ui.Info("interrupted", color.NoColor)
	default:
		return ui.CompileError(err, color.NoColor)
	}
}
