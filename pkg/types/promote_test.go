package types

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTypes(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Types Suite")
}

var _ = Describe("Reduce", func() {
	It("widens Integer x Integer to the max width, signed", func() {
		r, err := Reduce(I16(false), I32(false), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Kind).To(Equal(KindInteger))
		Expect(r.Width).To(Equal(32))
		Expect(r.Signed).To(BeTrue())
	})

	It("promotes Integer x Float to the float side", func() {
		r, err := Reduce(I32(false), F64(false), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Kind).To(Equal(KindFloat))
		Expect(r.Width).To(Equal(64))
	})

	It("promotes Integer x Decimal to Decimal", func() {
		r, err := Reduce(I32(false), Decimal(false), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Kind).To(Equal(KindDecimal))
	})

	It("promotes Decimal x Float to Float", func() {
		r, err := Reduce(Decimal(false), F32(false), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Kind).To(Equal(KindFloat))
	})

	It("treats Null as the other side made nullable", func() {
		r, err := Reduce(Null, I32(false), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Kind).To(Equal(KindInteger))
		Expect(r.MayBeNull).To(BeTrue())
	})

	It("OR-combines nullability onto the promoted result", func() {
		r, err := Reduce(I32(true), F64(false), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.MayBeNull).To(BeTrue())
	})

	It("returns the same type unchanged when both sides match", func() {
		r, err := Reduce(String(false), String(true), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Kind).To(Equal(KindString))
		Expect(r.MayBeNull).To(BeTrue())
	})

	It("fails with UnsupportedPromotionError when no common type exists", func() {
		_, err := Reduce(String(false), I32(false), nil)
		Expect(err).To(HaveOccurred())
	})

	It("is commutative up to nullability", func() {
		a, err := Reduce(I16(false), F32(true), nil)
		Expect(err).NotTo(HaveOccurred())
		b, err := Reduce(F32(true), I16(false), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.SameType(b)).To(BeTrue())
		Expect(a.MayBeNull).To(Equal(b.MayBeNull))
	})
})

var _ = Describe("Ref invariants", func() {
	It("forbids nested Ref(Ref)", func() {
		Expect(func() { Ref(Ref(I32(false))) }).To(Panic())
	})

	It("is never nullable", func() {
		r := Ref(I32(false))
		Expect(r.MayBeNull).To(BeFalse())
	})
})

var _ = Describe("ZSet", func() {
	It("requires a tuple element type", func() {
		Expect(func() { ZSet(I32(false), Weight()) }).To(Panic())
	})

	It("accepts a tuple element type", func() {
		z := ZSet(Tuple(I32(false)), Weight())
		Expect(z.Kind).To(Equal(KindZSet))
	})
})

var _ = Describe("ContainsAny", func() {
	It("finds Any nested in a tuple", func() {
		t := Tuple(I32(false), Any())
		Expect(ContainsAny(t)).To(BeTrue())
	})

	It("is false for a fully resolved type", func() {
		t := Tuple(I32(false), String(true))
		Expect(ContainsAny(t)).To(BeFalse())
	})
})
