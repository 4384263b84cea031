package compiler

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
)

var _ = Describe("Project and Filter", func() {
	It("lowers a Project to a single Map", func() {
		c, _ := newTestCompiler()
		scan := scanOf("t", "a")
		one := relplan.NewRexLiteral(int32(1), intType(false))
		expr := relplan.NewRexCall(relplan.KPlus, []relplan.Rex{relplan.NewRexInputRef(0, intType(false)), one}, intType(false))
		project := &relplan.Project{Input: scan, Exprs: []relplan.Rex{expr}, Names: []string{"a"}}
		project.SetRowType(rowTypeOf("a"))
		view := &relplan.CreateView{Name: "v", Query: project}

		compileAll(c, tableOf("t", "a"), view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(kinds(sealed.Operators)).To(Equal([]circuit.Kind{circuit.KindSource, circuit.KindMap, circuit.KindSink}))
	})

	It("lowers a Filter to a single Filter operator with the same output type as its input", func() {
		c, _ := newTestCompiler()
		scan := scanOf("t", "a")
		cond := relplan.NewRexCall(relplan.KGreaterThan, []relplan.Rex{
			relplan.NewRexInputRef(0, intType(false)),
			relplan.NewRexLiteral(int32(0), intType(false)),
		}, boolType())
		filter := &relplan.Filter{Input: scan, Condition: cond}
		filter.SetRowType(rowTypeOf("a"))
		view := &relplan.CreateView{Name: "v", Query: filter}

		compileAll(c, tableOf("t", "a"), view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindFilter)).To(Equal(1))

		var f *circuit.Filter
		for _, op := range sealed.Operators {
			if ff, ok := op.(*circuit.Filter); ok {
				f = ff
			}
		}
		Expect(f).NotTo(BeNil())
		Expect(f.OutputType().Equal(f.Input.OutputType())).To(BeTrue())
	})

	It("materializes a Values node reached via the plan visitor as a Constant", func() {
		c, _ := newTestCompiler()
		one := relplan.NewRexLiteral(int32(1), intType(false))
		two := relplan.NewRexLiteral(int32(2), intType(false))
		values := &relplan.Values{Rows: [][]relplan.Rex{{one}, {two}}}
		values.SetRowType(rowTypeOf("a"))
		view := &relplan.CreateView{Name: "v", Query: values}

		_, err := c.CompileStatement(view)
		Expect(err).NotTo(HaveOccurred())
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindConstant)).To(Equal(1))
	})
})

var _ = Describe("set operations", func() {
	buildUnion := func(all bool) (*relplan.CreateTable, *relplan.CreateTable, *relplan.CreateView) {
		t := tableOf("t", "a")
		s := tableOf("s", "b")
		scanT := scanOf("t", "a")
		scanS := scanOf("s", "b")
		projectS := &relplan.Project{Input: scanS, Exprs: []relplan.Rex{relplan.NewRexInputRef(0, intType(false))}, Names: []string{"a"}}
		projectS.SetRowType(rowTypeOf("a"))
		union := &relplan.SetOp{Left: scanT, Right: projectS, Kind: relplan.SetUnion, All: all}
		union.SetRowType(rowTypeOf("a"))
		return t, s, &relplan.CreateView{Name: "v", Query: union}
	}

	It("wraps UNION (not ALL) in a Distinct after summing", func() {
		c, _ := newTestCompiler()
		t, s, view := buildUnion(false)
		compileAll(c, t, s, view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindSum)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindDistinct)).To(Equal(1))
	})

	It("leaves UNION ALL undistincted", func() {
		c, _ := newTestCompiler()
		t, s, view := buildUnion(true)
		compileAll(c, t, s, view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindSum)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindDistinct)).To(Equal(0))
	})

	It("lowers EXCEPT to Negate + Sum, distincted unless ALL", func() {
		c, _ := newTestCompiler()
		t := tableOf("t", "a")
		s := tableOf("s", "a")
		minus := &relplan.SetOp{Left: scanOf("t", "a"), Right: scanOf("s", "a"), Kind: relplan.SetMinus, All: false}
		minus.SetRowType(rowTypeOf("a"))
		view := &relplan.CreateView{Name: "v", Query: minus}

		compileAll(c, t, s, view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindNegate)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindSum)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindDistinct)).To(Equal(1))
	})

	It("lowers INTERSECT to an Index/Join pair, distincted unless ALL", func() {
		c, _ := newTestCompiler()
		t := tableOf("t", "a")
		s := tableOf("s", "a")
		inter := &relplan.SetOp{Left: scanOf("t", "a"), Right: scanOf("s", "a"), Kind: relplan.SetIntersect, All: false}
		inter.SetRowType(rowTypeOf("a"))
		view := &relplan.CreateView{Name: "v", Query: inter}

		compileAll(c, t, s, view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindIndex)).To(Equal(2))
		Expect(countKind(sealed.Operators, circuit.KindJoin)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindDistinct)).To(Equal(1))
	})
})

var _ = Describe("Aggregate", func() {
	It("lowers a grouped aggregate (GROUP BY with no calls) without the empty-group correction", func() {
		c, _ := newTestCompiler()
		scan := scanOf("t", "a")
		agg := &relplan.Aggregate{Input: scan, GroupSet: []int{0}}
		agg.SetRowType(rowTypeOf("a"))
		view := &relplan.CreateView{Name: "v", Query: agg}

		compileAll(c, tableOf("t", "a"), view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(kinds(sealed.Operators)).To(Equal([]circuit.Kind{
			circuit.KindSource, circuit.KindIndex, circuit.KindAggregate, circuit.KindMap, circuit.KindSink,
		}))
	})

	It("applies the empty-group correction to an ungrouped COUNT(*)", func() {
		c, _ := newTestCompiler()
		scan := scanOf("t", "a")
		countType := bigIntType(false)
		agg := &relplan.Aggregate{Input: scan, Calls: []relplan.AggCall{{Func: "COUNT", Name: "c", Type: countType}}}
		agg.SetRowType(relplan.Struct(relplan.RelField{Name: "c", Type: countType}))
		view := &relplan.CreateView{Name: "v", Query: agg}

		compileAll(c, tableOf("t", "a"), view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindConstant)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindNegate)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindSum)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindMap)).To(Equal(2)) // flatten, and the toZero map
	})

	DescribeTable("numeric fold dispatch",
		func(fn string) {
			c, _ := newTestCompiler()
			scan := scanOf("t", "a")
			resultType := intType(true)
			agg := &relplan.Aggregate{Input: scan, GroupSet: nil, Calls: []relplan.AggCall{{Func: fn, Args: []int{0}, Name: "r", Type: resultType}}}
			agg.SetRowType(relplan.Struct(relplan.RelField{Name: "r", Type: resultType}))
			view := &relplan.CreateView{Name: "v", Query: agg}

			compileAll(c, tableOf("t", "a"), view)
			_, err := c.FinalizeCircuit("v")
			Expect(err).NotTo(HaveOccurred())
		},
		Entry("SUM", "SUM"),
		Entry("MIN", "MIN"),
		Entry("MAX", "MAX"),
		Entry("AVG", "AVG"),
	)

	It("reports an unknown aggregate function as unimplemented", func() {
		c, _ := newTestCompiler()
		scan := scanOf("t", "a")
		agg := &relplan.Aggregate{Input: scan, Calls: []relplan.AggCall{{Func: "MEDIAN", Args: []int{0}, Type: intType(true)}}}
		agg.SetRowType(relplan.Struct(relplan.RelField{Name: "r", Type: intType(true)}))
		view := &relplan.CreateView{Name: "v", Query: agg}

		_, err := c.CompileStatement(tableOf("t", "a"))
		Expect(err).NotTo(HaveOccurred())
		_, err = c.CompileStatement(view)
		Expect(err).To(HaveOccurred())
		var unimpl *diag.UnimplementedError
		Expect(err).To(BeAssignableToTypeOf(unimpl))
	})
})

var _ = Describe("Join", func() {
	buildJoin := func(joinType relplan.JoinType, bCol relplan.RelField) (*relplan.CreateTable, *relplan.CreateTable, *relplan.CreateView) {
		t := tableOf("t", "a")
		s := tableOf("s", "b")
		cond := relplan.NewRexCall(relplan.KEquals, []relplan.Rex{
			relplan.NewRexInputRef(0, intType(false)),
			relplan.NewRexInputRef(1, intType(false)),
		}, boolType())
		join := &relplan.Join{Left: scanOf("t", "a"), Right: scanOf("s", "b"), Type: joinType, Condition: cond}
		join.SetRowType(relplan.Struct(relplan.RelField{Name: "a", Type: intType(false)}, bCol))
		return t, s, &relplan.CreateView{Name: "v", Query: join}
	}

	It("lowers an INNER join to a single Join with no unmatched-row union", func() {
		c, _ := newTestCompiler()
		t, s, view := buildJoin(relplan.JoinInner, relplan.RelField{Name: "b", Type: intType(false)})
		compileAll(c, t, s, view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindJoin)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindSum)).To(Equal(0))
	})

	It("unions in NULL-extended unmatched rows for a LEFT join", func() {
		c, _ := newTestCompiler()
		t, s, view := buildJoin(relplan.JoinLeft, relplan.RelField{Name: "b", Type: intType(true)})
		compileAll(c, t, s, view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindJoin)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindSum)).To(Equal(2))
		Expect(countKind(sealed.Operators, circuit.KindDistinct)).To(Equal(2))
	})

	It("unions in unmatched rows from both sides for a FULL join", func() {
		c, _ := newTestCompiler()
		t := tableOf("t", "a")
		s := tableOf("s", "b")
		cond := relplan.NewRexCall(relplan.KEquals, []relplan.Rex{
			relplan.NewRexInputRef(0, intType(false)),
			relplan.NewRexInputRef(1, intType(false)),
		}, boolType())
		join := &relplan.Join{Left: scanOf("t", "a"), Right: scanOf("s", "b"), Type: relplan.JoinFull, Condition: cond}
		join.SetRowType(relplan.Struct(
			relplan.RelField{Name: "a", Type: intType(true)},
			relplan.RelField{Name: "b", Type: intType(true)},
		))
		view := &relplan.CreateView{Name: "v", Query: join}

		compileAll(c, t, s, view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindSum)).To(Equal(4))
	})

	It("rejects SEMI/ANTI joins as unimplemented", func() {
		c, _ := newTestCompiler()
		t, s, view := buildJoin(relplan.JoinSemi, relplan.RelField{Name: "b", Type: intType(false)})
		compileAll(c, t, s)
		_, err := c.CompileStatement(view)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Sort", func() {
	It("lowers ORDER BY ... LIMIT to a fold-sort-expand chain ending in FlatMap", func() {
		c, _ := newTestCompiler()
		scan := scanOf("t", "a")
		sort := &relplan.Sort{Input: scan, Keys: []relplan.Collation{{Index: 0}}, Fetch: 5, Offset: 0}
		sort.SetRowType(rowTypeOf("a"))
		view := &relplan.CreateView{Name: "v", Query: sort}

		compileAll(c, tableOf("t", "a"), view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindAggregate)).To(Equal(1))
		Expect(countKind(sealed.Operators, circuit.KindFlatMap)).To(Equal(1))
		Expect(sealed.Operators[len(sealed.Operators)-2].Kind()).To(Equal(circuit.KindFlatMap))
	})
})

var _ = Describe("Uncollect and Correlate", func() {
	It("lowers a bare Uncollect to a FlatMap over the array column", func() {
		c, _ := newTestCompiler()
		// The array's element is itself a one-field row, matching UNNEST(ARRAY<ROW(...)>):
		// lowerUncollect's FlatMap carries the array's element type straight through as the
		// output row type, which must therefore already be a tuple.
		elemRow := rowTypeOf("a")
		arrType := &relplan.RelDataType{Kind: relplan.TArray, Args: []*relplan.RelDataType{elemRow}}
		t := &relplan.CreateTable{Name: "t", Columns: []relplan.ColumnDef{{Name: "arr", Type: arrType}}}
		scan := &relplan.TableScan{Table: "t", Columns: []string{"arr"}}
		scan.SetRowType(relplan.Struct(relplan.RelField{Name: "arr", Type: arrType}))

		uncollect := &relplan.Uncollect{Input: scan, Column: 0}
		uncollect.SetRowType(rowTypeOf("a"))
		view := &relplan.CreateView{Name: "v", Query: uncollect}

		compileAll(c, t, view)
		sealed, err := c.FinalizeCircuit("v")
		Expect(err).NotTo(HaveOccurred())
		Expect(countKind(sealed.Operators, circuit.KindFlatMap)).To(Equal(1))
	})

	It("rejects a Correlate whose Apply subtree isn't a decorrelated UNNEST", func() {
		c, _ := newTestCompiler()
		t := tableOf("t", "a")
		scan := scanOf("t", "a")
		apply := scanOf("t", "a") // anything other than Uncollect(Project(Values(...)))
		correlate := &relplan.Correlate{Input: scan, Apply: apply, RequiredColumns: []int{0}}
		correlate.SetRowType(rowTypeOf("a"))
		view := &relplan.CreateView{Name: "v", Query: correlate}

		_, err := c.CompileStatement(t)
		Expect(err).NotTo(HaveOccurred())
		_, err = c.CompileStatement(view)
		Expect(err).To(HaveOccurred())
	})
})
