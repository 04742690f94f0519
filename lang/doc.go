// Package lang implements the VTC configuration language: a lazy lexer, a
// recursive-descent parser with an explicit work stack for nested lists, and
// the immutable tagged value model shared by the parser and the runtime.
//
// A VTC document is a sequence of namespaces, each holding ordered variable
// bindings:
//
//	@server:
//	    $host := "localhost"
//	    $port := 8080
//	    $tags := ["a", "b", ["c", "d"]]
//
// Values are strings, integers (decimal, 0b binary, 0x hexadecimal), floats,
// booleans, Nil, nested lists, references to other variables (&ns.var or
// %var, with ->(index), ->(start..end), and ->[key] accessors), and intrinsic
// function markers (name!!).
package lang
