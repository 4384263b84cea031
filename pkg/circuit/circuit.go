package circuit

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/types"
)

// NamedPort is one named input or output of a sealed circuit: a declared table or view name
// paired with the tuple element type flowing through it.
type NamedPort struct {
	Name     string
	ElemType *types.Type
}

// PartialCircuit is an append-only, in-progress DAG of operators under construction by one
// compilation unit. It owns every operator emitted into it until Seal transfers ownership to a
// SealedCircuit and resets the builder for the next compilation unit.
type PartialCircuit struct {
	operators []Operator
	inputs    []string // declared table names, in declaration order
	inputOp   map[string]Operator
	outputs   []string // declared view names, in declaration order
	outputOp  map[string]Operator
}

// NewPartialCircuit returns an empty builder.
func NewPartialCircuit() *PartialCircuit {
	return &PartialCircuit{
		inputOp:  make(map[string]Operator),
		outputOp: make(map[string]Operator),
	}
}

// Add appends op to the circuit and returns it, so callers can write e.g.
// join := pc.Add(circuit.NewJoin(...)).
func (pc *PartialCircuit) Add(op Operator) Operator {
	pc.operators = append(pc.operators, op)
	return op
}

// AddInput registers op (a Source) under name. Re-declaring the same table name reuses the
// existing Source, mirroring the TableScan lowering rule's "reuse if already emitted" clause.
func (pc *PartialCircuit) AddInput(name string, op Operator) {
	if _, exists := pc.inputOp[name]; exists {
		return
	}
	pc.inputs = append(pc.inputs, name)
	pc.inputOp[name] = op
}

// LookupInput returns the previously registered Source for name, if any.
func (pc *PartialCircuit) LookupInput(name string) (Operator, bool) {
	op, ok := pc.inputOp[name]
	return op, ok
}

// AddOutput registers op (a Sink or Noop) under name. Returns an error if name is already taken;
// the invariant that each named output appears exactly once is enforced here, one level below the
// duplicate-definition diagnostic the statement-compilation layer reports to the user.
func (pc *PartialCircuit) AddOutput(name string, op Operator) error {
	if _, exists := pc.outputOp[name]; exists {
		return fmt.Errorf("circuit: output %q already defined", name)
	}
	pc.outputs = append(pc.outputs, name)
	pc.outputOp[name] = op
	return nil
}

// LookupOutput returns the previously registered output operator for name, if any.
func (pc *PartialCircuit) LookupOutput(name string) (Operator, bool) {
	op, ok := pc.outputOp[name]
	return op, ok
}

// DropOutput removes a registered output (used when a duplicate definition is reported and the
// redefinition must be dropped rather than replacing the original).
func (pc *PartialCircuit) DropOutput(name string) {
	delete(pc.outputOp, name)
	for i, n := range pc.outputs {
		if n == name {
			pc.outputs = append(pc.outputs[:i], pc.outputs[i+1:]...)
			break
		}
	}
}

// Seal validates the partial circuit and produces an immutable SealedCircuit, then resets the
// builder to an empty state so the next compilation unit starts clean.
func (pc *PartialCircuit) Seal(name string) (*SealedCircuit, error) {
	order, err := topoSort(pc.operators)
	if err != nil {
		return nil, err
	}
	for _, op := range order {
		if types.ContainsAny(op.OutputType()) {
			return nil, fmt.Errorf("circuit: %s operator %s has an unresolved Any in its output type %s", op.Kind(), op.ID(), op.OutputType())
		}
	}

	inputs := make([]NamedPort, len(pc.inputs))
	for i, n := range pc.inputs {
		inputs[i] = NamedPort{Name: n, ElemType: pc.inputOp[n].OutputType().Elem()}
	}

	outputs := make([]NamedPort, len(pc.outputs))
	for i, n := range pc.outputs {
		outputs[i] = NamedPort{Name: n, ElemType: pc.outputOp[n].OutputType().Elem()}
	}

	sealed := &SealedCircuit{
		Name:      name,
		Inputs:    inputs,
		Outputs:   outputs,
		Operators: order,
	}

	*pc = *NewPartialCircuit()
	return sealed, nil
}

// topoSort returns operators in an order where every operator's inputs precede it. The graph is
// acyclic by construction (an operator can only reference operators that already exist when it's
// built), so this can never fail on a cycle. It only orders operators; it does not check that an
// operator's input element types agree with what it expects.
func topoSort(operators []Operator) ([]Operator, error) {
	visited := make(map[string]bool, len(operators))
	order := make([]Operator, 0, len(operators))

	var visit func(op Operator) error
	visit = func(op Operator) error {
		if visited[op.ID()] {
			return nil
		}
		visited[op.ID()] = true
		for _, in := range op.Inputs() {
			if err := visit(in); err != nil {
				return err
			}
		}
		order = append(order, op)
		return nil
	}

	for _, op := range operators {
		if err := visit(op); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// SealedCircuit is the immutable result of Seal: a named DAG of operators with explicit,
// order-preserving lists of named inputs and outputs.
type SealedCircuit struct {
	Name      string
	Inputs    []NamedPort
	Outputs   []NamedPort
	Operators []Operator
}
