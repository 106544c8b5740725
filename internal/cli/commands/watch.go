package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/ormschema/internal/cli/ui"
	"github.com/conduit-lang/ormschema/internal/orm/loader"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
	"github.com/conduit-lang/ormschema/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand(opts *globalOptions) *cobra.Command {
	var (
		output   string
		format   string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompile whenever definitions change",
		Long: `Compile the definitions, then watch every definition root and
recompile on change. A failed recompilation keeps the last written schema.

Examples:
  ormschema watch -o build/schema.json
  ormschema watch -d core -d custom --debounce 250ms
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := newPipeline(ctx, opts)
			if err != nil {
				return err
			}
			defer p.Close()

			if output == "" {
				output = p.cfg.Output.Path
			}
			if format == "" {
				format = p.cfg.Output.Format
			}
			emit := func(s *schema.Schema) error {
				return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
					return encodeSchema(w, s, format)
				})
			}

			compiled, err := p.compile(ctx)
			if err != nil {
				return err
			}
			if err := emit(compiled); err != nil {
				return err
			}

			w, err := watch.NewWatcher(p.loader.Dirs(), func(ctx context.Context, files []string) error {
				s, err := p.recompile(ctx)
				if err != nil {
					ui.Write(cmd.ErrOrStderr(), ui.Message{
						Level:   ui.LevelWarning,
						Context: "recompile failed",
						Problem: err.Error(),
						NoColor: color.NoColor,
					})
					return err
				}
				if err := emit(s); err != nil {
					return err
				}
				ui.WriteSuccess(cmd.ErrOrStderr(),
					fmt.Sprintf("Recompiled %d entities (%d files changed)", s.Len(), len(files)), color.NoColor)
				return nil
			}, watch.Options{
				Filter:   loader.IsDefinitionFile,
				Debounce: debounce,
				Logger:   p.logger.Named("watch"),
			})
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			p.logger.Info("watching definitions", zap.Strings("roots", p.loader.Roots()))
			color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "Press Ctrl+C to stop")

			<-ctx.Done()
			fmt.Fprintln(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout, or output.path)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json or yaml (default output.format)")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before recompiling")

	return cmd
}
