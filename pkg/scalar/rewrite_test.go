package scalar

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/dbsp-sql/pkg/types"
)

func TestScalar(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scalar Suite")
}

var _ = Describe("EliminateMulWeight", func() {
	It("rewrites MUL_WEIGHT(v,w) to MUL(v, cast(w, type(v)))", func() {
		v := NewVariable("v", types.I32(false))
		w := NewVariable("w", types.Weight())
		expr := NewBinary(MUL_WEIGHT, v, w, types.I32(false))

		out := EliminateMulWeight(expr)

		bin, ok := out.(*Binary)
		Expect(ok).To(BeTrue())
		Expect(bin.Op).To(Equal(MUL))
		Expect(bin.Left).To(Equal(Expr(v)))

		cast, ok := bin.Right.(*Cast)
		Expect(ok).To(BeTrue())
		Expect(cast.Type().Equal(types.I32(false))).To(BeTrue())
		Expect(cast.Expr).To(Equal(Expr(w)))
	})

	It("is idempotent once no MUL_WEIGHT remains", func() {
		v := NewVariable("v", types.I32(false))
		expr := NewBinary(ADD, v, NewLiteral(int32(1), types.I32(false)), types.I32(false))
		out := EliminateMulWeight(expr)
		Expect(out.String()).To(Equal(expr.String()))
	})

	It("finds MUL_WEIGHT nested under other nodes", func() {
		v := NewVariable("v", types.I32(false))
		w := NewVariable("w", types.Weight())
		inner := NewBinary(MUL_WEIGHT, v, w, types.I32(false))
		outer := NewUnary(NEG, inner, types.I32(false))

		out := EliminateMulWeight(outer)

		un, ok := out.(*Unary)
		Expect(ok).To(BeTrue())
		bin, ok := un.Operand.(*Binary)
		Expect(ok).To(BeTrue())
		Expect(bin.Op).To(Equal(MUL))
	})
})

var _ = Describe("CastTo", func() {
	It("is a no-op when the expression already has the target type", func() {
		v := NewVariable("v", types.I32(false))
		Expect(CastTo(v, types.I32(false))).To(Equal(Expr(v)))
	})

	It("wraps with Cast otherwise", func() {
		v := NewVariable("v", types.I32(false))
		out := CastTo(v, types.F64(false))
		_, ok := out.(*Cast)
		Expect(ok).To(BeTrue())
	})
})

var _ = Describe("WrapBool", func() {
	It("leaves a non-nullable bool unchanged", func() {
		v := NewVariable("v", types.Bool(false))
		Expect(WrapBool(v)).To(Equal(Expr(v)))
	})

	It("wraps a nullable bool with WRAP_BOOL", func() {
		v := NewVariable("v", types.Bool(true))
		out := WrapBool(v)
		un, ok := out.(*Unary)
		Expect(ok).To(BeTrue())
		Expect(un.Op).To(Equal(WRAP_BOOL))
	})
})
