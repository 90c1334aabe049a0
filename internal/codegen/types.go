package codegen

import (
	"fmt"
	"strconv"
	"strings"
)

// Namespace is a C++ namespace that classes are declared in.
type Namespace struct {
	parent *Namespace
	name   string
}

// Esphome is the root namespace of every generated firmware type.
var Esphome = RootNamespace("esphome")

// Component is the base class of everything that takes part in the
// application's setup/loop cycle.
var Component = Esphome.Class("Component")

// RootNamespace returns a top-level namespace.
func RootNamespace(name string) *Namespace {
	return &Namespace{name: name}
}

// Namespace returns a child namespace.
func (n *Namespace) Namespace(name string) *Namespace {
	return &Namespace{parent: n, name: name}
}

// Class declares a class in this namespace with the given parent classes.
func (n *Namespace) Class(name string, parents ...*Class) *Class {
	return &Class{ns: n, name: name, parents: parents}
}

// String returns the fully qualified namespace (e.g. "esphome::mbishi").
func (n *Namespace) String() string {
	if n == nil {
		return ""
	}
	if n.parent == nil {
		return n.name
	}
	return n.parent.String() + "::" + n.name
}

// Class is a declared C++ class.
type Class struct {
	ns      *Namespace
	name    string
	parents []*Class
}

// Name returns the unqualified class name.
func (c *Class) Name() string {
	return c.name
}

// FullName returns the namespace-qualified class name.
func (c *Class) FullName() string {
	if c.ns == nil {
		return c.name
	}
	return c.ns.String() + "::" + c.name
}

// Parents returns the direct parent classes.
func (c *Class) Parents() []*Class {
	out := make([]*Class, len(c.parents))
	copy(out, c.parents)
	return out
}

// Inherits reports whether c is other or derives from it.
func (c *Class) Inherits(other *Class) bool {
	if c == nil || other == nil {
		return false
	}
	if c == other {
		return true
	}
	for _, p := range c.parents {
		if p.Inherits(other) {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (c *Class) String() string {
	return c.FullName()
}

// ID identifies an instance. A declared ID names a new instance of Class;
// a reference ID names an existing instance that must inherit Class.
//
// Auto marks a reference the user left out: it resolves to the single
// instance of Class in the registry.
type ID struct {
	Name  string
	Class *Class
	Auto  bool
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id.Name == "" && id.Class == nil && !id.Auto
}

// String implements fmt.Stringer.
func (id ID) String() string {
	if id.Auto {
		return fmt.Sprintf("<auto %s>", id.Class)
	}
	return id.Name
}

// Arg is an argument to a generated call.
type Arg interface {
	// Expr renders the argument as a C++ expression.
	Expr() string
}

type literal struct {
	v any
}

// Literal wraps a bool, string, integer or float value as a call argument.
func Literal(v any) Arg {
	return literal{v: v}
}

func (l literal) Expr() string {
	switch v := l.v.(type) {
	case nil:
		return "nullptr"
	case bool:
		return strconv.FormatBool(v)
	case string:
		return cppString(v)
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// cppString renders s as a C++ narrow string literal. Bytes outside
// printable ASCII become three-digit octal escapes, which unlike \x escapes
// cannot swallow a following character.
func cppString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '?' && i > 0 && s[i-1] == '?':
			// no trigraphs
			b.WriteString(`\?`)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(&b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "f"
}

type ref struct {
	inst *Instance
}

// Ref references another instance as a call argument.
func Ref(inst *Instance) Arg {
	return ref{inst: inst}
}

// Referenced returns the instance a Ref argument points at.
func Referenced(a Arg) (*Instance, bool) {
	r, ok := a.(ref)
	if !ok || r.inst == nil {
		return nil, false
	}
	return r.inst, true
}

func (r ref) Expr() string {
	if r.inst == nil {
		return "nullptr"
	}
	return r.inst.ID.Name
}
