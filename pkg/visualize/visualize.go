// Package visualize renders a sealed circuit as a diagram.
package visualize

import (
	"fmt"

	"github.com/emicklei/dot"

	"github.com/l7mp/dbsp-sql/pkg/circuit"
)

// Graph is the visualization graph of one sealed circuit.
type Graph struct {
	CircuitName string
	Nodes       []OperatorNode
	Edges       []Edge
}

// OperatorNode represents one operator in the graph.
type OperatorNode struct {
	ID         string
	Label      string
	Kind       circuit.Kind
	IsInput    bool // Source: no inputs of its own.
	IsOutput   bool // Sink or Noop: a named, terminal view.
	IsObserved bool // Sink (vs. Noop, a suppressed view).
}

// Edge represents a data dependency between two operators.
type Edge struct {
	From string
	To   string
}

// BuildGraph constructs a visualization graph from a sealed circuit.
func BuildGraph(sc *circuit.SealedCircuit) *Graph {
	g := &Graph{
		CircuitName: sc.Name,
		Nodes:       make([]OperatorNode, 0, len(sc.Operators)),
		Edges:       make([]Edge, 0),
	}

	for _, op := range sc.Operators {
		g.Nodes = append(g.Nodes, buildOperatorNode(op))
		for _, in := range op.Inputs() {
			g.Edges = append(g.Edges, Edge{From: in.ID(), To: op.ID()})
		}
	}

	return g
}

func buildOperatorNode(op circuit.Operator) OperatorNode {
	node := OperatorNode{
		ID:      op.ID(),
		Label:   operatorLabel(op),
		Kind:    op.Kind(),
		IsInput: op.Kind() == circuit.KindSource,
	}

	switch v := op.(type) {
	case *circuit.Sink:
		node.IsOutput = true
		node.IsObserved = true
		node.Label = fmt.Sprintf("%s\n%s", v.Name, op.Kind())
	case *circuit.Noop:
		node.IsOutput = true
		node.Label = fmt.Sprintf("%s\n%s (suppressed)", v.Name, op.Kind())
	}

	return node
}

// operatorLabel formats an operator's display label: its kind, plus the table name for a Source,
// plus the row type it carries. buildOperatorNode replaces the label of a Sink or Noop with its
// view name and kind.
func operatorLabel(op circuit.Operator) string {
	name := ""
	switch v := op.(type) {
	case *circuit.Source:
		name = v.Name
	}
	if name != "" {
		return fmt.Sprintf("%s\n%s\n%s", name, op.Kind(), op.OutputType().Elem())
	}
	return fmt.Sprintf("%s\n%s", op.Kind(), op.OutputType().Elem())
}

// BuildDotGraph creates a dot.Graph from the visualization graph. This unified graph can then be
// rendered in different formats (DOT, Mermaid, etc.).
func BuildDotGraph(g *Graph) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "LR")
	graph.Attr("compound", "true")
	graph.Attr("newrank", "true")
	graph.Attr("label", g.CircuitName)
	graph.Attr("labelloc", "t")
	graph.Attr("fontsize", "16")

	nodes := make(map[string]dot.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		node := graph.Node(n.ID).
			Attr("label", n.Label).
			Attr("fontname", "helvetica")
		styleNode(node, n)
		nodes[n.ID] = node
	}

	for _, e := range g.Edges {
		from, fromExists := nodes[e.From]
		to, toExists := nodes[e.To]
		if fromExists && toExists {
			graph.Edge(from, to).Attr("fontname", "helvetica").Attr("fontsize", "10")
		}
	}

	return graph
}

// styleNode shapes and colors a node by its role: a base table gets the same rounded-ellipse
// treatment the original diagrams gave an external resource, an observed view gets the terminal
// box, a suppressed view the same box dimmed, a Constant a yellow ellipse, and every other
// operator the in-between processing box.
func styleNode(node dot.Node, n OperatorNode) {
	switch {
	case n.IsInput:
		node.Attr("shape", "ellipse").
			Attr("style", "filled").
			Attr("fillcolor", "lightgreen")
	case n.IsOutput && n.IsObserved:
		node.Attr("shape", "box").
			Attr("style", "filled,rounded").
			Attr("fillcolor", "lightcyan").
			Attr("color", "darkblue").
			Attr("penwidth", "2")
	case n.IsOutput:
		node.Attr("shape", "box").
			Attr("style", "filled,rounded,dashed").
			Attr("fillcolor", "lightgrey")
	case n.Kind == circuit.KindConstant:
		node.Attr("shape", "ellipse").
			Attr("style", "filled").
			Attr("fillcolor", "lightyellow")
	default:
		node.Attr("shape", "box").
			Attr("style", "filled,rounded").
			Attr("fillcolor", "lightblue").
			Attr("color", "darkblue")
	}
}
