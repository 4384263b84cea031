package cli

import (
	"github.com/spf13/cobra"

	"github.com/l7mp/dbsp-sql/pkg/visualize"
)

func newRenderCommand(root *RootOptions) *cobra.Command {
	var mermaid bool

	cmd := &cobra.Command{
		Use:   "render <fixture>",
		Short: "compile a plan fixture and render its circuit as a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := root.formatter(cmd)
			fx, ok := lookupFixture(args[0])
			if !ok {
				return WrapExitError(ExitCommandError, "unknown fixture "+args[0], nil)
			}

			sealed, _, err := compileFixture(f, root, fx)
			if err != nil {
				return WrapExitError(ExitCommandError, "compilation failed", err)
			}

			graph := visualize.BuildGraph(sealed)

			var out string
			if mermaid {
				out = (&visualize.MermaidGenerator{}).Generate(graph)
			} else {
				out = (&visualize.DotGenerator{}).Generate(graph)
			}
			return f.Success(out, out)
		},
	}
	cmd.Flags().BoolVar(&mermaid, "mermaid", false, "emit a Mermaid flowchart instead of Graphviz DOT")
	return cmd
}
