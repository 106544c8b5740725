package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/ormschema/internal/cli/ui"
	"github.com/conduit-lang/ormschema/internal/orm/diff"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
)

// NewDiffCommand creates the diff command
func NewDiffCommand(opts *globalOptions) *cobra.Command {
	var (
		base           []string
		failOnBreaking bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show schema changes between two sets of definition roots",
		Long: `Compile the --base roots and the configured (or --definitions) roots
and list every entity, field, relation and index change between them.

Examples:
  # What does the customization root change?
  ormschema diff --base core -d core -d custom

  # Fail in CI when a change drops columns or tightens constraints
  ormschema diff --base release/metadata --fail-on-breaking
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			head, err := compileWith(ctx, opts, nil)
			if err != nil {
				return err
			}
			old, err := compileWith(ctx, opts, base)
			if err != nil {
				return err
			}

			changes := diff.Compute(old, head)
			if len(changes) == 0 {
				ui.WriteSuccess(cmd.OutOrStdout(), "No schema changes", color.NoColor)
				return nil
			}

			table := ui.NewTable(cmd.OutOrStdout(), color.NoColor, "Change", "Entity", "Name", "Breaking", "Data loss")
			for _, c := range changes {
				table.AddRow(c.Type.String(), c.Entity, c.Name, yesNo(c.Breaking), yesNo(c.DataLoss))
			}
			table.Render()

			if failOnBreaking && diff.HasBreaking(changes) {
				return fmt.Errorf("%d schema changes include breaking changes", len(changes))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&base, "base", nil, "Definition roots to compare against")
	cmd.Flags().BoolVar(&failOnBreaking, "fail-on-breaking", false, "Exit with an error when a change is breaking")
	_ = cmd.MarkFlagRequired("base")

	return cmd
}

// compileWith compiles with roots replacing the configured definition
// roots when non-empty
func compileWith(ctx context.Context, opts *globalOptions, roots []string) (*schema.Schema, error) {
	o := *opts
	if len(roots) > 0 {
		o.definitions = roots
	}
	p, err := newPipeline(ctx, &o)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.compile(ctx)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
