package circuit

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

func TestCircuit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Circuit Suite")
}

func rowType() *types.Type {
	return types.Tuple(types.I32(false), types.I32(false))
}

func identityClosure(name string, t *types.Type) *scalar.Closure {
	row := scalar.NewVariable("row", t)
	return scalar.NewClosure(name, []scalar.Param{{Name: "row", Type: t}}, row)
}

var _ = Describe("operators", func() {
	It("gives Source a ZSet output type wrapping its element type", func() {
		src := NewSource("t", rowType(), nil)
		Expect(src.OutputType().Kind).To(Equal(types.KindZSet))
		Expect(src.OutputType().Elem().Equal(rowType())).To(BeTrue())
		Expect(src.IsMultiset()).To(BeTrue())
	})

	It("has no inputs on a Source", func() {
		src := NewSource("t", rowType(), nil)
		Expect(src.Inputs()).To(BeEmpty())
	})

	It("derives Map's output type from the closure body", func() {
		src := NewSource("t", rowType(), nil)
		m := NewMap(src, identityClosure("id", rowType()), nil)
		Expect(m.OutputType().Equal(src.OutputType())).To(BeTrue())
		Expect(m.Inputs()).To(HaveLen(1))
	})

	It("keeps Filter's output type equal to its input's", func() {
		src := NewSource("t", rowType(), nil)
		f := NewFilter(src, identityClosure("cond", rowType()), nil)
		Expect(f.OutputType().Equal(src.OutputType())).To(BeTrue())
	})

	It("clears the multiset flag on Distinct", func() {
		src := NewSource("t", rowType(), nil)
		d := NewDistinct(src, nil)
		Expect(d.IsMultiset()).To(BeFalse())
	})

	It("assigns every operator a distinct id", func() {
		a := NewSource("t", rowType(), nil)
		b := NewSource("t", rowType(), nil)
		Expect(a.ID()).NotTo(Equal(b.ID()))
	})

	It("reports Sum's operands as its inputs", func() {
		a := NewSource("t", rowType(), nil)
		b := NewSource("s", rowType(), nil)
		sum := NewSum([]Operator{a, b}, nil)
		Expect(sum.Inputs()).To(HaveLen(2))
		Expect(sum.OutputType().Equal(a.OutputType())).To(BeTrue())
	})
})
