package compiler

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
)

var _ = Describe("statement compilation", func() {
	It("lowers a trivial CREATE VIEW to a Source -> Sink chain", func() {
		c, _ := newTestCompiler()
		t := tableOf("t", "a")
		scan := scanOf("t", "a")
		view := &relplan.CreateView{Name: "v", Query: scan}

		compileAll(c, t, view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())

		Expect(sealed.Inputs).To(HaveLen(1))
		Expect(sealed.Inputs[0].Name).To(Equal("t"))
		Expect(sealed.Outputs).To(HaveLen(1))
		Expect(sealed.Outputs[0].Name).To(Equal("v"))
		Expect(kinds(sealed.Operators)).To(Equal([]circuit.Kind{circuit.KindSource, circuit.KindSink}))
	})

	It("wraps the view in a Noop instead of a Sink when visibility is suppressed", func() {
		c, _ := newTestCompiler()
		t := tableOf("t", "a")
		scan := scanOf("t", "a")
		view := &relplan.CreateView{Name: "v", Query: scan}

		c.SetNextViewVisible(false)
		compileAll(c, t, view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindNoop)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindSink)).To(Equal(0))
	})

	It("resets the visibility toggle back to true after one CREATE VIEW consumes it", func() {
		c, _ := newTestCompiler()
		t := tableOf("t", "a")
		v1 := &relplan.CreateView{Name: "v1", Query: scanOf("t", "a")}
		v2 := &relplan.CreateView{Name: "v2", Query: scanOf("t", "a")}

		c.SetNextViewVisible(false)
		compileAll(c, t, v1, v2)
		sealed, err := c.FinalizeCircuit("v2")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindNoop)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindSink)).To(Equal(1))
	})

	It("reuses one Source across two views reading the same table", func() {
		c, _ := newTestCompiler()
		t := tableOf("t", "a")
		v1 := &relplan.CreateView{Name: "v1", Query: scanOf("t", "a")}
		v2 := &relplan.CreateView{Name: "v2", Query: scanOf("t", "a")}

		compileAll(c, t, v1, v2)
		sealed, err := c.FinalizeCircuit("v2")
		Expect(err).NotTo(HaveOccurred())
		Expect(sealed.Inputs).To(HaveLen(1))
		Expect(countKind(sealed.Operators, circuit.KindSource)).To(Equal(1))
	})

	It("reports a duplicate view definition as a warning diagnostic and drops the redefinition", func() {
		c, reporter := newTestCompiler()
		t := tableOf("t", "a")
		v1 := &relplan.CreateView{Name: "v", Query: scanOf("t", "a")}
		v2 := &relplan.CreateView{Name: "v", Query: scanOf("t", "a")}

		_, err := c.CompileStatement(t)
		Expect(err).NotTo(HaveOccurred())
		_, err = c.CompileStatement(v1)
		Expect(err).NotTo(HaveOccurred())
		out, err := c.CompileStatement(v2)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeNil())

		Expect(reporter.Diagnostics).To(HaveLen(1))
		Expect(reporter.Diagnostics[0].Severity).To(Equal(diag.SeverityWarning))
	})

	It("drops a registered view on DropView", func() {
		c, _ := newTestCompiler()
		t := tableOf("t", "a")
		view := &relplan.CreateView{Name: "v", Query: scanOf("t", "a")}
		compileAll(c, t, view)

		_, err := c.CompileStatement(&relplan.DropView{Name: "v"})
		Expect(err).NotTo(HaveOccurred())

		_, err = c.CompileStatement(&relplan.DropView{Name: "v"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects CREATE TABLE with an already-used name", func() {
		c, _ := newTestCompiler()
		_, err := c.CompileStatement(tableOf("t", "a"))
		Expect(err).NotTo(HaveOccurred())
		_, err = c.CompileStatement(tableOf("t", "a"))
		Expect(err).To(HaveOccurred())
	})

	It("rejects DROP TABLE on an unknown table", func() {
		c, _ := newTestCompiler()
		_, err := c.CompileStatement(&relplan.DropTable{Name: "nope"})
		Expect(err).To(HaveOccurred())
	})

	It("eagerly emits a Source for CREATE TABLE when forced, even with no view yet", func() {
		c, _ := newTestCompiler(WithForceSourceOnCreateTable())
		_, err := c.CompileStatement(tableOf("t", "a"))
		Expect(err).NotTo(HaveOccurred())

		sealed, err := c.FinalizeCircuit("empty")
		Expect(err).NotTo(HaveOccurred())
		Expect(sealed.Inputs).To(HaveLen(1))
		Expect(sealed.Inputs[0].Name).To(Equal("t"))
	})

	It("folds an INSERT batch into the table's materialized Z-set as a Constant", func() {
		c, _ := newTestCompiler()
		_, err := c.CompileStatement(tableOf("t", "a"))
		Expect(err).NotTo(HaveOccurred())

		insert := &relplan.TableModify{Table: "t", Changes: []relplan.RowChange{
			{Kind: relplan.RowInsert, Row: []relplan.Rex{relplan.NewRexLiteral(int32(1), intType(false))}},
			{Kind: relplan.RowInsert, Row: []relplan.Rex{relplan.NewRexLiteral(int32(2), intType(false))}},
		}}
		out, err := c.CompileStatement(insert)
		Expect(err).NotTo(HaveOccurred())
		constant, ok := out.(*circuit.Constant)
		Expect(ok).To(BeTrue())
		Expect(constant.Rows).To(HaveLen(2))
		Expect(constant.Rows[0].Weight).To(Equal(int64(1)))

		del := &relplan.TableModify{Table: "t", Changes: []relplan.RowChange{
			{Kind: relplan.RowDelete, Row: []relplan.Rex{relplan.NewRexLiteral(int32(1), intType(false))}},
		}}
		out2, err := c.CompileStatement(del)
		Expect(err).NotTo(HaveOccurred())
		constant2 := out2.(*circuit.Constant)
		Expect(constant2.Rows).To(HaveLen(3))
		Expect(constant2.Rows[2].Weight).To(Equal(int64(-1)))
	})

	It("copies another table's materialized contents on INSERT ... SELECT * FROM", func() {
		c, _ := newTestCompiler()
		_, err := c.CompileStatement(tableOf("s", "a"))
		Expect(err).NotTo(HaveOccurred())
		_, err = c.CompileStatement(tableOf("t", "a"))
		Expect(err).NotTo(HaveOccurred())

		seed := &relplan.TableModify{Table: "s", Changes: []relplan.RowChange{
			{Kind: relplan.RowInsert, Row: []relplan.Rex{relplan.NewRexLiteral(int32(7), intType(false))}},
		}}
		_, err = c.CompileStatement(seed)
		Expect(err).NotTo(HaveOccurred())

		out, err := c.CompileStatement(&relplan.TableModify{Table: "t", CopyFrom: "s"})
		Expect(err).NotTo(HaveOccurred())
		constant := out.(*circuit.Constant)
		Expect(constant.Rows).To(HaveLen(1))
		Expect(constant.Rows[0].Fields).To(Equal([]any{int32(7)}))
		Expect(constant.Rows[0].Weight).To(Equal(int64(1)))
	})

	It("rejects a copy-contents DML naming an unknown source table", func() {
		c, _ := newTestCompiler()
		_, err := c.CompileStatement(tableOf("t", "a"))
		Expect(err).NotTo(HaveOccurred())
		_, err = c.CompileStatement(&relplan.TableModify{Table: "t", CopyFrom: "nope"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a DML batch against an undeclared table", func() {
		c, _ := newTestCompiler()
		_, err := c.CompileStatement(&relplan.TableModify{Table: "nope"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a non-literal VALUES entry in a DML batch", func() {
		c, _ := newTestCompiler()
		_, err := c.CompileStatement(tableOf("t", "a"))
		Expect(err).NotTo(HaveOccurred())

		ref := relplan.NewRexInputRef(0, intType(false))
		bad := &relplan.TableModify{Table: "t", Changes: []relplan.RowChange{
			{Kind: relplan.RowInsert, Row: []relplan.Rex{ref}},
		}}
		_, err = c.CompileStatement(bad)
		Expect(err).To(HaveOccurred())
	})
})
