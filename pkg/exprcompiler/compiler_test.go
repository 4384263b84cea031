package exprcompiler

import (
	"testing"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

func TestExprCompiler(t *testing.T) {
	RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "ExprCompiler Suite")
}

func intType(nullable bool) *relplan.RelDataType {
	return &relplan.RelDataType{Kind: relplan.TInteger, Nullable: nullable}
}

func boolType(nullable bool) *relplan.RelDataType {
	return &relplan.RelDataType{Kind: relplan.TBoolean, Nullable: nullable}
}

var _ = ginkgo.Describe("Compile", func() {
	row := scalar.NewVariable("row", types.Tuple(types.I32(false), types.I32(true)))
	ctx := Context{Row: row}

	ginkgo.It("compiles an input reference to a FieldAccess", func() {
		rex := relplan.NewRexInputRef(0, intType(false))
		out, err := New(nil).Compile(rex, ctx)
		Expect(err).NotTo(HaveOccurred())
		fa, ok := out.(*scalar.FieldAccess)
		Expect(ok).To(BeTrue())
		Expect(fa.Index).To(Equal(0))
	})

	ginkgo.It("resolves an input reference beyond row arity from the constant pool", func() {
		lit := scalar.NewLiteral(int32(7), types.I32(false))
		ctx := Context{Row: row, Constants: []scalar.Expr{lit}}
		rex := relplan.NewRexInputRef(2, intType(false))
		out, err := New(nil).Compile(rex, ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(scalar.Expr(lit)))
	})

	ginkgo.It("compiles a literal", func() {
		rex := relplan.NewRexLiteral(int32(42), intType(false))
		out, err := New(nil).Compile(rex, ctx)
		Expect(err).NotTo(HaveOccurred())
		l, ok := out.(*scalar.Literal)
		Expect(ok).To(BeTrue())
		Expect(l.Value).To(Equal(int32(42)))
	})

	ginkgo.It("compiles PLUS via makeBinaryExpression with a common-type cast", func() {
		left := relplan.NewRexInputRef(0, intType(false))
		right := relplan.NewRexInputRef(1, intType(true))
		call := relplan.NewRexCall(relplan.KPlus, []relplan.Rex{left, right}, intType(true))
		out, err := New(nil).Compile(call, ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Type().MayBeNull).To(BeTrue())
	})

	ginkgo.It("rejects wrong arity on a comparison with a TranslationError", func() {
		left := relplan.NewRexInputRef(0, intType(false))
		cmp := relplan.NewRexCall(relplan.KLessThan, []relplan.Rex{left}, boolType(false))
		_, err := New(nil).Compile(cmp, ctx)
		Expect(err).To(HaveOccurred())
	})

	ginkgo.It("returns Unimplemented for an unhandled call kind", func() {
		left := relplan.NewRexInputRef(0, intType(false))
		call := relplan.NewRexCall(relplan.CallKind(9999), []relplan.Rex{left}, intType(false))
		_, err := New(nil).Compile(call, ctx)
		Expect(err).To(HaveOccurred())
	})

	ginkgo.It("wraps a nullable NOT operand with WRAP_BOOL", func() {
		operand := relplan.NewRexInputRef(1, boolType(true))
		row := scalar.NewVariable("row", types.Tuple(types.I32(false), types.Bool(true)))
		call := relplan.NewRexCall(relplan.KNot, []relplan.Rex{operand}, boolType(false))
		out, err := New(nil).Compile(call, Context{Row: row})
		Expect(err).NotTo(HaveOccurred())
		un, ok := out.(*scalar.Unary)
		Expect(ok).To(BeTrue())
		Expect(un.Op).To(Equal(scalar.NOT))
		wrapped, ok := un.Operand.(*scalar.Unary)
		Expect(ok).To(BeTrue())
		Expect(wrapped.Op).To(Equal(scalar.WRAP_BOOL))
	})

	ginkgo.It("compiles condition-form CASE right to left", func() {
		cond := relplan.NewRexInputRef(1, boolType(false))
		then := relplan.NewRexLiteral(int32(1), intType(false))
		els := relplan.NewRexLiteral(int32(0), intType(false))
		call := relplan.NewRexCall(relplan.KCase, []relplan.Rex{cond, then, els}, intType(false))
		row := scalar.NewVariable("row", types.Tuple(types.I32(false), types.Bool(false)))
		out, err := New(nil).Compile(call, Context{Row: row})
		Expect(err).NotTo(HaveOccurred())
		_, ok := out.(*scalar.If)
		Expect(ok).To(BeTrue())
	})
})
