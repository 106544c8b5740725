package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/ormschema/internal/orm/ddl"
)

// NewDDLCommand creates the ddl command
func NewDDLCommand(opts *globalOptions) *cobra.Command {
	var (
		output   string
		entities []string
	)

	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Preview the PostgreSQL DDL of the compiled schema",
		Long: `Compile the definitions and print CREATE TABLE and CREATE INDEX
statements for PostgreSQL. Nothing is executed against a database.

Examples:
  ormschema ddl
  ormschema ddl --entity Account --entity Contact
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := newPipeline(ctx, opts)
			if err != nil {
				return err
			}
			defer p.Close()

			compiled, err := p.compile(ctx)
			if err != nil {
				return err
			}
			selected, err := selectEntities(compiled, entities)
			if err != nil {
				return err
			}

			statements, err := ddl.NewGenerator().Generate(selected)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				_, err := io.WriteString(w, statements)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringSliceVarP(&entities, "entity", "e", nil, "Only emit the named entities")

	return cmd
}
