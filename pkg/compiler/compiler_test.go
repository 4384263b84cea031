package compiler

import (
	"testing"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
)

func TestCompiler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Compiler Suite")
}

// newTestCompiler builds a Compiler with a collecting reporter and a discarded logger, the shape
// every test in this suite starts from.
func newTestCompiler(opts ...Option) (*Compiler, *diag.CollectingReporter) {
	reporter := &diag.CollectingReporter{}
	return New(reporter, logr.Discard(), opts...), reporter
}

func intType(nullable bool) *relplan.RelDataType {
	return &relplan.RelDataType{Kind: relplan.TInteger, Nullable: nullable}
}

func bigIntType(nullable bool) *relplan.RelDataType {
	return &relplan.RelDataType{Kind: relplan.TBigInt, Nullable: nullable}
}

func boolType() *relplan.RelDataType {
	return &relplan.RelDataType{Kind: relplan.TBoolean}
}

func rowTypeOf(cols ...string) *relplan.RelDataType {
	fields := make([]relplan.RelField, len(cols))
	for i, c := range cols {
		fields[i] = relplan.RelField{Name: c, Type: intType(false)}
	}
	return relplan.Struct(fields...)
}

func tableOf(name string, cols ...string) *relplan.CreateTable {
	columns := make([]relplan.ColumnDef, len(cols))
	for i, c := range cols {
		columns[i] = relplan.ColumnDef{Name: c, Type: intType(false), Nullable: false}
	}
	return &relplan.CreateTable{Name: name, Columns: columns}
}

// scanOf builds a TableScan over a table declared by tableOf with the same column list.
func scanOf(table string, cols ...string) *relplan.TableScan {
	scan := &relplan.TableScan{Table: table, Columns: cols}
	scan.SetRowType(rowTypeOf(cols...))
	return scan
}

// countKind tallies how many sealed operators carry kind k.
func countKind(ops []circuit.Operator, k circuit.Kind) int {
	n := 0
	for _, op := range ops {
		if op.Kind() == k {
			n++
		}
	}
	return n
}

func kinds(ops []circuit.Operator) []circuit.Kind {
	ks := make([]circuit.Kind, len(ops))
	for i, op := range ops {
		ks[i] = op.Kind()
	}
	return ks
}

// compileAll feeds stmts through c in order, failing the test immediately if any one errors.
func compileAll(c *Compiler, stmts ...relplan.Statement) {
	for _, s := range stmts {
		_, err := c.CompileStatement(s)
		Expect(err).NotTo(HaveOccurred())
	}
}
