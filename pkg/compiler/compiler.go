// Package compiler implements the relational-to-circuit lowering pass: a stateful visitor that
// walks a relplan.Node plan tree and emits the corresponding pkg/circuit operator graph. It is
// the core's single entry point for its upstream collaborator (a parser/optimizer producing
// relplan trees) and its downstream collaborator (a runtime consuming a sealed circuit.SealedCircuit).
package compiler

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/exprcompiler"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/typeconv"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// Compiler holds all the state of one compilation unit: the partial circuit under construction,
// the plan-node-to-operator memo, the table-contents side model, and the sticky next-view-
// visibility toggle. None of this is safe to share between goroutines; a Compiler is meant to be
// driven sequentially by one caller, one statement at a time.
type Compiler struct {
	pc       *circuit.PartialCircuit
	memo     map[relplan.Node]circuit.Operator
	tables   map[string]*Table
	expr     *exprcompiler.Compiler
	reporter diag.Reporter
	log      logr.Logger

	nextViewVisible     bool
	forceSourceOnCreate bool
}

// Option configures a Compiler at construction time.
type Option func(*Compiler)

// WithForceSourceOnCreateTable makes CREATE TABLE eagerly emit a Source operator even when no
// view yet references the table.
func WithForceSourceOnCreateTable() Option {
	return func(c *Compiler) { c.forceSourceOnCreate = true }
}

// New builds a Compiler with an empty partial circuit and no declared tables or views. A nil
// reporter is replaced by diag.NopReporter.
func New(reporter diag.Reporter, log logr.Logger, opts ...Option) *Compiler {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	c := &Compiler{
		pc:              circuit.NewPartialCircuit(),
		memo:            make(map[relplan.Node]circuit.Operator),
		tables:          make(map[string]*Table),
		expr:            exprcompiler.New(reporter),
		reporter:        reporter,
		log:             log,
		nextViewVisible: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertType is the type-lowering seam exposed to both the upstream parser and this visitor: it
// maps one upstream relplan.RelDataType descriptor onto the core's own pkg/types.Type universe.
func (c *Compiler) ConvertType(t *relplan.RelDataType) (*types.Type, error) {
	return typeconv.Convert(t)
}

// SetNextViewVisible sets the sticky toggle consumed by the next CREATE VIEW statement: true
// (the default) wraps the view's terminal operator in a Sink, false in a Noop.
func (c *Compiler) SetNextViewVisible(visible bool) {
	c.nextViewVisible = visible
}

// FinalizeCircuit seals the partial circuit under construction, resets the plan-node memo (plan
// nodes from one compilation unit must never be looked up by a later one), and returns the
// immutable result.
func (c *Compiler) FinalizeCircuit(name string) (*circuit.SealedCircuit, error) {
	sealed, err := c.pc.Seal(name)
	if err != nil {
		return nil, err
	}
	c.memo = make(map[relplan.Node]circuit.Operator)
	return sealed, nil
}

// CompileStatement is the single statement-compilation entry point. It returns nil for DDL, a
// *circuit.Constant for DML, or the view's terminal circuit.Operator for CREATE VIEW.
func (c *Compiler) CompileStatement(stmt relplan.Statement) (any, error) {
	switch s := stmt.(type) {
	case *relplan.CreateTable:
		return nil, c.createTable(s)
	case *relplan.DropTable:
		return nil, c.dropTable(s)
	case *relplan.CreateView:
		return c.createView(s)
	case *relplan.DropView:
		return nil, c.dropView(s)
	case *relplan.TableModify:
		return c.tableModify(s)
	default:
		return nil, fmt.Errorf("compiler: unhandled statement type %T", stmt)
	}
}

// rowVariable names the row parameter threaded through every closure this visitor builds.
func rowVariable(t *types.Type) *scalar.Variable {
	return scalar.NewVariable("row", t)
}

// compileExpr lowers one relplan.Rex against a row of type rowType via the injected expression
// compiler.
func (c *Compiler) compileExpr(rex relplan.Rex, row scalar.Expr) (scalar.Expr, error) {
	return c.expr.Compile(rex, exprcompiler.Context{Row: row})
}
