package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/compiler"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/util"
)

func newCompileCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [fixture]",
		Short: "lower a plan fixture into a sealed circuit and print its operator graph",
		Long: "compile runs the named fixture's statements through the compiler and prints the " +
			"resulting sealed circuit. Run with no arguments to list the available fixtures.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := root.formatter(cmd)
			if len(args) == 0 {
				return listFixtures(f)
			}
			return runCompile(f, root, args[0])
		},
	}
	return cmd
}

// fixtureInfo is the JSON-safe projection of a fixture: its build closure can't be marshaled.
type fixtureInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func listFixtures(f *Formatter) error {
	var sb strings.Builder
	sb.WriteString("available fixtures:\n")
	infos := make([]fixtureInfo, 0, len(fixtures))
	for _, fx := range fixtures {
		fmt.Fprintf(&sb, "  %-16s %s\n", fx.name, fx.description)
		infos = append(infos, fixtureInfo{Name: fx.name, Description: fx.description})
	}
	return f.Success(infos, sb.String())
}

// compileResult is the fixture-compilation outcome reported back to the caller.
type compileResult struct {
	Fixture     string            `json:"fixture"`
	Circuit     string            `json:"circuit"`
	Inputs      []string          `json:"inputs"`
	Outputs     []string          `json:"outputs"`
	Operators   []string          `json:"operators"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

func runCompile(f *Formatter, root *RootOptions, name string) error {
	fx, ok := lookupFixture(name)
	if !ok {
		return WrapExitError(ExitCommandError, fmt.Sprintf("unknown fixture %q", name), nil)
	}

	sealed, diags, err := compileFixture(f, root, fx)
	if err != nil {
		return WrapExitError(ExitCommandError, "compilation failed", err)
	}

	result := compileResult{
		Fixture:     fx.name,
		Circuit:     sealed.Name,
		Diagnostics: diags,
		Inputs:      util.Map(describePort, sealed.Inputs),
		Outputs:     util.Map(describePort, sealed.Outputs),
		Operators:   util.Map(func(op circuit.Operator) string { return op.String() }, sealed.Operators),
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "circuit %q (%d operators)\n", sealed.Name, len(sealed.Operators))
	for _, in := range result.Inputs {
		fmt.Fprintf(&sb, "  input  %s\n", in)
	}
	for _, out := range result.Outputs {
		fmt.Fprintf(&sb, "  output %s\n", out)
	}
	for _, op := range result.Operators {
		fmt.Fprintf(&sb, "  %s\n", op)
	}
	for _, d := range diags {
		fmt.Fprintf(&sb, "  [%s] %s: %s\n", d.Severity, d.Title, d.Message)
	}

	return f.Success(result, sb.String())
}

// compileFixture drives the fixture's statement batch through one Compiler, sealing the circuit
// under the batch's CreateView name.
func compileFixture(f *Formatter, root *RootOptions, fx fixture) (*circuit.SealedCircuit, []diag.Diagnostic, error) {
	reporter := &diag.CollectingReporter{}
	c := compiler.New(reporter, root.log)

	var viewName string
	for _, stmt := range fx.build() {
		f.VerboseLog("compiling statement: %s", describeStatement(stmt))
		if _, err := c.CompileStatement(stmt); err != nil {
			return nil, reporter.Diagnostics, err
		}
		if view, ok := stmt.(*relplan.CreateView); ok {
			viewName = view.Name
		}
	}

	sealed, err := c.FinalizeCircuit(viewName)
	if err != nil {
		return nil, reporter.Diagnostics, err
	}
	return sealed, reporter.Diagnostics, nil
}

func describeStatement(stmt relplan.Statement) string {
	if d, ok := stmt.(interface{ Describe() string }); ok {
		return d.Describe()
	}
	return util.Stringify(stmt)
}

func describePort(p circuit.NamedPort) string {
	return fmt.Sprintf("%s: %s", p.Name, p.ElemType)
}
