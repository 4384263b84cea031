package cli

import "github.com/l7mp/dbsp-sql/pkg/relplan"

// fixture names one canned statement batch the compile/render commands can run without a real
// upstream parser attached. Each one mirrors one of the testable scenarios the lowering rules were
// designed against.
type fixture struct {
	name        string
	description string
	build       func() []relplan.Statement
}

var fixtures = []fixture{
	{
		name:        "project",
		description: "CREATE TABLE t(a INT); CREATE VIEW v AS SELECT a+1 FROM t",
		build:       buildProjectFixture,
	},
	{
		name:        "union-distinct",
		description: "CREATE VIEW v AS SELECT DISTINCT a FROM t UNION SELECT b FROM s",
		build:       buildUnionDistinctFixture,
	},
	{
		name:        "count-empty",
		description: "CREATE VIEW v AS SELECT COUNT(*) FROM t",
		build:       buildCountFixture,
	},
	{
		name:        "left-join",
		description: "CREATE VIEW v AS SELECT * FROM t LEFT JOIN s ON t.a = s.b",
		build:       buildLeftJoinFixture,
	},
}

func lookupFixture(name string) (fixture, bool) {
	for _, f := range fixtures {
		if f.name == name {
			return f, true
		}
	}
	return fixture{}, false
}

func intType(nullable bool) *relplan.RelDataType {
	return &relplan.RelDataType{Kind: relplan.TInteger, Nullable: nullable}
}

func boolType() *relplan.RelDataType {
	return &relplan.RelDataType{Kind: relplan.TBoolean}
}

func tableOf(name string, cols ...string) *relplan.CreateTable {
	columns := make([]relplan.ColumnDef, len(cols))
	for i, c := range cols {
		columns[i] = relplan.ColumnDef{Name: c, Type: intType(false), Nullable: false}
	}
	return &relplan.CreateTable{Name: name, Columns: columns}
}

func rowTypeOf(cols ...string) *relplan.RelDataType {
	fields := make([]relplan.RelField, len(cols))
	for i, c := range cols {
		fields[i] = relplan.RelField{Name: c, Type: intType(false)}
	}
	return relplan.Struct(fields...)
}

func buildProjectFixture() []relplan.Statement {
	t := tableOf("t", "a")

	scan := &relplan.TableScan{Table: "t", Columns: []string{"a"}}
	scan.SetRowType(rowTypeOf("a"))

	one := relplan.NewRexLiteral(int32(1), intType(false))
	expr := relplan.NewRexCall(relplan.KPlus, []relplan.Rex{relplan.NewRexInputRef(0, intType(false)), one}, intType(false))
	project := &relplan.Project{Input: scan, Exprs: []relplan.Rex{expr}, Names: []string{"a"}}
	project.SetRowType(rowTypeOf("a"))

	view := &relplan.CreateView{Name: "v", Query: project}
	return []relplan.Statement{t, view}
}

func buildUnionDistinctFixture() []relplan.Statement {
	t := tableOf("t", "a")
	s := tableOf("s", "b")

	scanT := &relplan.TableScan{Table: "t", Columns: []string{"a"}}
	scanT.SetRowType(rowTypeOf("a"))
	distinctT := &relplan.Aggregate{Input: scanT, GroupSet: []int{0}}
	distinctT.SetRowType(rowTypeOf("a"))

	scanS := &relplan.TableScan{Table: "s", Columns: []string{"b"}}
	scanS.SetRowType(rowTypeOf("b"))
	projectS := &relplan.Project{Input: scanS, Exprs: []relplan.Rex{relplan.NewRexInputRef(0, intType(false))}, Names: []string{"a"}}
	projectS.SetRowType(rowTypeOf("a"))

	union := &relplan.SetOp{Left: distinctT, Right: projectS, Kind: relplan.SetUnion, All: false}
	union.SetRowType(rowTypeOf("a"))

	view := &relplan.CreateView{Name: "v", Query: union}
	return []relplan.Statement{t, s, view}
}

func buildCountFixture() []relplan.Statement {
	t := tableOf("t", "a")

	scan := &relplan.TableScan{Table: "t", Columns: []string{"a"}}
	scan.SetRowType(rowTypeOf("a"))

	countType := &relplan.RelDataType{Kind: relplan.TBigInt}
	agg := &relplan.Aggregate{
		Input:    scan,
		GroupSet: nil,
		Calls:    []relplan.AggCall{{Func: "COUNT", Name: "c", Type: countType}},
	}
	agg.SetRowType(relplan.Struct(relplan.RelField{Name: "c", Type: countType}))

	view := &relplan.CreateView{Name: "v", Query: agg}
	return []relplan.Statement{t, view}
}

func buildLeftJoinFixture() []relplan.Statement {
	t := tableOf("t", "a")
	s := tableOf("s", "b")

	scanT := &relplan.TableScan{Table: "t", Columns: []string{"a"}}
	scanT.SetRowType(rowTypeOf("a"))
	scanS := &relplan.TableScan{Table: "s", Columns: []string{"b"}}
	scanS.SetRowType(rowTypeOf("b"))

	cond := relplan.NewRexCall(relplan.KEquals, []relplan.Rex{
		relplan.NewRexInputRef(0, intType(false)),
		relplan.NewRexInputRef(1, intType(false)),
	}, boolType())

	join := &relplan.Join{Left: scanT, Right: scanS, Type: relplan.JoinLeft, Condition: cond}
	join.SetRowType(relplan.Struct(
		relplan.RelField{Name: "a", Type: intType(false)},
		relplan.RelField{Name: "b", Type: intType(true)},
	))

	view := &relplan.CreateView{Name: "v", Query: join}
	return []relplan.Statement{t, s, view}
}
