package codegen

import (
	"fmt"
	"sort"
	"strings"
)

// StatementKind classifies a setup statement.
type StatementKind int

// Statement kinds, in the order they typically appear for one instance.
const (
	StmtNew StatementKind = iota
	StmtRegister
	StmtCall
)

// Statement is one line of generated setup code.
type Statement struct {
	Kind   StatementKind
	Target *Instance
	// Method is the registration kind for StmtRegister and the method name for StmtCall.
	Method string
	Args   []Arg
}

// String renders the statement as C++.
func (s Statement) String() string {
	name := s.Target.ID.Name
	switch s.Kind {
	case StmtNew:
		return fmt.Sprintf("%s = new %s();", name, s.Target.Class().FullName())
	case StmtRegister:
		return fmt.Sprintf("App.register_%s(%s);", s.Method, name)
	default:
		exprs := make([]string, len(s.Args))
		for i, a := range s.Args {
			exprs[i] = a.Expr()
		}
		return fmt.Sprintf("%s->%s(%s);", name, s.Method, strings.Join(exprs, ", "))
	}
}

// Program is the ordered setup code of one build, bound to a Registry.
//
// A Program is built by a single goroutine.
type Program struct {
	registry   *Registry
	statements []Statement
	components map[string]struct{}
}

// NewProgram creates a program that records instances in registry.
// A nil registry gets a fresh one.
func NewProgram(registry *Registry) *Program {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Program{registry: registry, components: make(map[string]struct{})}
}

// Require records that the firmware must include component name.
func (p *Program) Require(name string) {
	p.components[name] = struct{}{}
}

// Components returns the required component names, sorted.
func (p *Program) Components() []string {
	out := make([]string, 0, len(p.components))
	for name := range p.components {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Registry returns the registry the program writes to.
func (p *Program) Registry() *Registry {
	return p.registry
}

// NewPvariable instantiates a new object of id.Class named id.Name.
//
// The instance is added to the registry before the statement is emitted, so a
// duplicate ID leaves the program unchanged.
func (p *Program) NewPvariable(id ID, config map[string]any) (*Instance, error) {
	if id.Auto {
		return nil, fmt.Errorf("%w: cannot declare automatic id of %s", ErrInvalidInstance, id.Class)
	}
	inst := &Instance{ID: id, Config: config}
	if err := p.registry.Add(inst); err != nil {
		return nil, err
	}
	p.statements = append(p.statements, Statement{Kind: StmtNew, Target: inst})
	return inst, nil
}

// Register emits App.register_<kind>(inst).
func (p *Program) Register(inst *Instance, kind string) {
	inst.Registrations = append(inst.Registrations, kind)
	p.statements = append(p.statements, Statement{Kind: StmtRegister, Target: inst, Method: kind})
}

// RegisterComponent registers inst with the application's setup/loop cycle.
func (p *Program) RegisterComponent(inst *Instance) {
	p.Register(inst, "component")
}

// Add emits inst->method(args...).
func (p *Program) Add(inst *Instance, method string, args ...Arg) {
	inst.Calls = append(inst.Calls, Call{Method: method, Args: args})
	p.statements = append(p.statements, Statement{Kind: StmtCall, Target: inst, Method: method, Args: args})
}

// GetVariable resolves a reference ID to a registered instance.
//
// Named references must exist (ErrUnknownID) and inherit id.Class
// (ErrClassMismatch). Automatic references resolve to the only instance of
// id.Class; none is ErrUnknownID and several is ErrAmbiguousID.
func (p *Program) GetVariable(id ID) (*Instance, error) {
	if id.Auto {
		candidates := p.registry.ByClass(id.Class)
		switch len(candidates) {
		case 0:
			return nil, fmt.Errorf("%w: no %s declared", ErrUnknownID, id.Class)
		case 1:
			return candidates[0], nil
		default:
			names := make([]string, len(candidates))
			for i, c := range candidates {
				names[i] = c.ID.Name
			}
			return nil, fmt.Errorf("%w: %d instances of %s (%s), set the id explicitly",
				ErrAmbiguousID, len(candidates), id.Class, strings.Join(names, ", "))
		}
	}

	inst, ok := p.registry.Get(id.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownID, id.Name)
	}
	if id.Class != nil && !inst.Class().Inherits(id.Class) {
		return nil, fmt.Errorf("%w: %q is %s, expected %s", ErrClassMismatch, id.Name, inst.Class(), id.Class)
	}
	return inst, nil
}

// Statements returns a copy of the emitted statements.
func (p *Program) Statements() []Statement {
	out := make([]Statement, len(p.statements))
	copy(out, p.statements)
	return out
}
