package circuit

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PartialCircuit", func() {
	It("reuses a previously registered input for the same table name", func() {
		pc := NewPartialCircuit()
		src := pc.Add(NewSource("t", rowType(), nil))
		pc.AddInput("t", src)

		other := NewSource("t", rowType(), nil)
		pc.AddInput("t", other)

		got, ok := pc.LookupInput("t")
		Expect(ok).To(BeTrue())
		Expect(got.ID()).To(Equal(src.ID()))
	})

	It("rejects a second output under the same name", func() {
		pc := NewPartialCircuit()
		src := pc.Add(NewSource("t", rowType(), nil))
		sink := pc.Add(NewSink("v", src, nil))
		Expect(pc.AddOutput("v", sink)).NotTo(HaveOccurred())

		other := pc.Add(NewSink("v", src, nil))
		Expect(pc.AddOutput("v", other)).To(HaveOccurred())
	})

	It("seals a simple Source -> Map -> Sink chain in topological order", func() {
		pc := NewPartialCircuit()
		src := pc.Add(NewSource("t", rowType(), nil))
		pc.AddInput("t", src)
		m := pc.Add(NewMap(src, identityClosure("id", rowType()), nil))
		sink := pc.Add(NewSink("v", m, nil))
		Expect(pc.AddOutput("v", sink)).NotTo(HaveOccurred())

		sealed, err := pc.Seal("unit1")
		Expect(err).NotTo(HaveOccurred())
		Expect(sealed.Inputs).To(HaveLen(1))
		Expect(sealed.Inputs[0].Name).To(Equal("t"))
		Expect(sealed.Outputs).To(HaveLen(1))
		Expect(sealed.Outputs[0].Name).To(Equal("v"))
		Expect(sealed.Operators).To(HaveLen(3))
		Expect(sealed.Operators[0].ID()).To(Equal(src.ID()))
		Expect(sealed.Operators[len(sealed.Operators)-1].ID()).To(Equal(sink.ID()))
	})

	It("resets the builder after Seal", func() {
		pc := NewPartialCircuit()
		src := pc.Add(NewSource("t", rowType(), nil))
		pc.AddInput("t", src)
		sink := pc.Add(NewSink("v", src, nil))
		Expect(pc.AddOutput("v", sink)).NotTo(HaveOccurred())
		_, err := pc.Seal("unit1")
		Expect(err).NotTo(HaveOccurred())

		_, ok := pc.LookupInput("t")
		Expect(ok).To(BeFalse())
		_, ok = pc.LookupOutput("v")
		Expect(ok).To(BeFalse())
	})
})
