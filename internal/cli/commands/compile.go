package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/ormschema/internal/cli/ui"
)

// NewCompileCommand creates the compile command
func NewCompileCommand(opts *globalOptions) *cobra.Command {
	var (
		output   string
		format   string
		entities []string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile definitions into a storage schema",
		Long: `Compile the configured definition roots into the storage schema.

The schema is written as JSON or YAML to stdout, or to output.path when
configured. Diagnostics go to stderr.

Examples:
  # Compile ./metadata to stdout
  ormschema compile

  # Layer a customization root over the core definitions
  ormschema compile -d core -d custom -o build/schema.json

  # Show a single entity as YAML
  ormschema compile --entity Account --format yaml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
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

			compiled, err := p.compile(ctx)
			if err != nil {
				return err
			}
			selected, err := selectEntities(compiled, entities)
			if err != nil {
				return err
			}

			err = writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return encodeSchema(w, selected, format)
			})
			if err != nil {
				return err
			}

			if output != "" {
				ui.WriteSuccess(cmd.ErrOrStderr(),
					fmt.Sprintf("Compiled %d entities to %s", selected.Len(), output), color.NoColor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout, or output.path)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json or yaml (default output.format)")
	cmd.Flags().StringSliceVarP(&entities, "entity", "e", nil, "Only emit the named entities")

	return cmd
}
