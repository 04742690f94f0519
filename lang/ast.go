package lang

import "strings"

// Document is a parsed VTC source: an ordered sequence of namespaces.
type Document struct {
	Namespaces []*Namespace
}

// Namespace is an ordered sequence of variable bindings under one name.
type Namespace struct {
	Name      string
	Variables []*Variable
	Pos       Position
}

// Variable binds a name to a value within a namespace.
type Variable struct {
	Name  string
	Value *Value
	Pos   Position
}

// Lookup returns the variable bound to name, if any.
func (ns *Namespace) Lookup(name string) (*Variable, bool) {
	for _, v := range ns.Variables {
		if v.Name == name {
			return v, true
		}
	}

	return nil, false
}

// String renders the document in canonical VTC syntax: one namespace per
// block, four-space indented bindings, a blank line between namespaces.
func (d *Document) String() string {
	var b strings.Builder

	for i, ns := range d.Namespaces {
		if i > 0 {
			b.WriteByte('\n')
		}

		b.WriteByte('@')
		b.WriteString(ns.Name)
		b.WriteString(":\n")

		for _, v := range ns.Variables {
			b.WriteString("    $")
			b.WriteString(v.Name)
			b.WriteString(" := ")
			b.WriteString(v.Value.Quote())
			b.WriteByte('\n')
		}
	}

	return b.String()
}
