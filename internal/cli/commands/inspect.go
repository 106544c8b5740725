package commands

import (
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/ormschema/internal/cli/ui"
	"github.com/conduit-lang/ormschema/internal/orm/fulltext"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
)

// NewInspectCommand creates the inspect command
func NewInspectCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the compiled entities",
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

			table := ui.NewTable(cmd.OutOrStdout(), color.NoColor,
				"Entity", "Fields", "Columns", "Relations", "Indexes", "Full-text")
			compiled.Each(func(name string, e *schema.EntitySchema) {
				columns := 0
				e.Fields.Each(func(_ string, f *schema.Field) {
					if !f.IsNotStorable() && f.Type != schema.TypeForeign {
						columns++
					}
				})
				ft := ""
				if e.Indexes.Has(fulltext.IndexName) {
					ft = "yes"
				}
				table.AddRow(name,
					strconv.Itoa(e.Fields.Len()),
					strconv.Itoa(columns),
					strconv.Itoa(e.Relations.Len()),
					strconv.Itoa(e.Indexes.Len()),
					ft,
				)
			})
			table.Render()
			return nil
		},
	}
}
