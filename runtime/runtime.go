package runtime

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/vtc/lang"
	"github.com/ardnew/vtc/log"
)

// Runtime is an ordered store of namespaces and their variable bindings.
//
// Both namespaces and variables enumerate in first-appearance order.
// Runtime is not safe for concurrent use; callers requiring concurrency
// must synchronize externally.
type Runtime struct {
	index  map[string]int
	funcs  *Registry
	spaces []*namespace
	logger log.Logger
}

// namespace holds one namespace's bindings in insertion order, with an index
// for constant-time lookup.
type namespace struct {
	index map[string]int
	name  string
	vars  []*variable
}

// variable binds a name to a value.
type variable struct {
	name  string
	value *lang.Value
}

func (ns *namespace) lookup(name string) (*variable, bool) {
	i, ok := ns.index[name]
	if !ok {
		return nil, false
	}

	return ns.vars[i], true
}

func (ns *namespace) bind(name string, value *lang.Value) {
	if v, ok := ns.lookup(name); ok {
		v.value = value

		return
	}

	ns.index[name] = len(ns.vars)
	ns.vars = append(ns.vars, &variable{name: name, value: value})
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger attaches a logger to the store.
func WithLogger(logger log.Logger) Option {
	return func(r *Runtime) { r.logger = logger }
}

// WithFunction registers a custom intrinsic function on the store.
func WithFunction(name string, fn Func) Option {
	return func(r *Runtime) { r.funcs.Register(name, fn) }
}

// New creates an empty store with the standard intrinsic library loaded.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		index: make(map[string]int),
		funcs: NewRegistry(),
	}

	r.funcs.Register("std_eval", r.evalIntrinsic)

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// From creates a store loaded from the VTC file at path.
func From(ctx context.Context, path string, opts ...Option) (*Runtime, error) {
	r := New(opts...)

	err := r.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// FromSource creates a store loaded from VTC source text.
func FromSource(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Runtime, error) {
	r := New(opts...)

	err := r.LoadText(ctx, source)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// LoadFile parses the VTC file at path and merges it into the store.
// On any error the store is left unchanged.
func (r *Runtime) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return lang.ErrRead.Wrap(err).With(slog.String("path", path))
	}

	return r.LoadText(ctx, string(data))
}

// LoadText parses VTC source text and merges it into the store.
// Parsing completes before any binding is applied, so a failing source
// leaves the store unchanged.
func (r *Runtime) LoadText(ctx context.Context, source string) error {
	doc, err := lang.ParseString(ctx, source, lang.WithLogger(r.logger))
	if err != nil {
		return err
	}

	r.merge(ctx, doc)

	return nil
}

// merge applies a parsed document to the store. Existing namespaces keep
// their enumeration position and absorb new bindings last-wins.
func (r *Runtime) merge(ctx context.Context, doc *lang.Document) {
	for _, src := range doc.Namespaces {
		ns := r.space(src.Name)

		for _, v := range src.Variables {
			ns.bind(v.Name, v.Value)
		}

		r.logger.TraceContext(ctx, "namespace loaded",
			slog.String("namespace", src.Name),
			slog.Int("variable_count", len(src.Variables)),
		)
	}
}

// space returns the named namespace, creating it at the end of the
// enumeration order when absent.
func (r *Runtime) space(name string) *namespace {
	if i, ok := r.index[name]; ok {
		return r.spaces[i]
	}

	ns := &namespace{
		name:  name,
		index: make(map[string]int),
	}

	r.index[name] = len(r.spaces)
	r.spaces = append(r.spaces, ns)

	return ns
}

// find returns the named namespace without creating it.
func (r *Runtime) find(name string) (*namespace, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}

	return r.spaces[i], true
}

// Namespaces returns all namespace names in first-appearance order.
func (r *Runtime) Namespaces() []string {
	names := make([]string, len(r.spaces))
	for i, ns := range r.spaces {
		names[i] = ns.name
	}

	return names
}

// Variables returns all variable names in the namespace in first-appearance
// order.
func (r *Runtime) Variables(space string) ([]string, error) {
	ns, ok := r.find(space)
	if !ok {
		return nil, ErrNamespaceNotFound.
			With(slog.String("namespace", space))
	}

	names := make([]string, len(ns.vars))
	for i, v := range ns.vars {
		names[i] = v.name
	}

	return names, nil
}

// Exists reports whether the namespace binds the named variable.
func (r *Runtime) Exists(space, name string) bool {
	ns, ok := r.find(space)
	if !ok {
		return false
	}

	_, ok = ns.lookup(name)

	return ok
}

// Get returns the fully resolved value of a variable: references are
// followed, intrinsic calls evaluated, and any accessors applied.
// Failed lookups never mutate the store.
func (r *Runtime) Get(
	space, name string,
	accessors ...lang.Accessor,
) (*lang.Value, error) {
	ref := &lang.Reference{
		Scope:     lang.RefExternal,
		Namespace: space,
		Name:      name,
		Accessors: accessors,
	}

	return r.resolveReference(ref, space, make(map[visitKey]bool))
}

// GetString returns a string variable, rejecting any other type.
func (r *Runtime) GetString(space, name string) (string, error) {
	v, err := r.Get(space, name)
	if err != nil {
		return "", err
	}

	s, ok := v.AsString()
	if !ok {
		return "", mismatch(space, name, lang.TypeString, v.Type())
	}

	return s, nil
}

// GetInteger returns an integer variable, rejecting any other type.
// No coercion is performed; a float never satisfies an integer request.
func (r *Runtime) GetInteger(space, name string) (int64, error) {
	v, err := r.Get(space, name)
	if err != nil {
		return 0, err
	}

	i, ok := v.AsInteger()
	if !ok {
		return 0, mismatch(space, name, lang.TypeInteger, v.Type())
	}

	return i, nil
}

// GetFloat returns a float variable, rejecting any other type.
func (r *Runtime) GetFloat(space, name string) (float64, error) {
	v, err := r.Get(space, name)
	if err != nil {
		return 0, err
	}

	f, ok := v.AsFloat()
	if !ok {
		return 0, mismatch(space, name, lang.TypeFloat, v.Type())
	}

	return f, nil
}

// GetBoolean returns a boolean variable, rejecting any other type.
func (r *Runtime) GetBoolean(space, name string) (bool, error) {
	v, err := r.Get(space, name)
	if err != nil {
		return false, err
	}

	b, ok := v.AsBoolean()
	if !ok {
		return false, mismatch(space, name, lang.TypeBoolean, v.Type())
	}

	return b, nil
}

// GetList returns the items of a list variable, rejecting any other type.
func (r *Runtime) GetList(space, name string) ([]*lang.Value, error) {
	v, err := r.Get(space, name)
	if err != nil {
		return nil, err
	}

	items, ok := v.AsList()
	if !ok {
		return nil, mismatch(space, name, lang.TypeList, v.Type())
	}

	return items, nil
}

// Add binds a value in the namespace, creating the namespace when absent.
// An existing binding is replaced in place.
func (r *Runtime) Add(space, name string, value *lang.Value) {
	r.space(space).bind(name, value)
}

// Update replaces the value of an existing binding.
func (r *Runtime) Update(space, name string, value *lang.Value) error {
	ns, ok := r.find(space)
	if !ok {
		return ErrNamespaceNotFound.With(slog.String("namespace", space))
	}

	v, ok := ns.lookup(name)
	if !ok {
		return ErrVariableNotFound.With(
			slog.String("namespace", space),
			slog.String("variable", name),
		)
	}

	v.value = value

	return nil
}

// Delete removes a binding from the namespace.
func (r *Runtime) Delete(space, name string) error {
	ns, ok := r.find(space)
	if !ok {
		return ErrNamespaceNotFound.With(slog.String("namespace", space))
	}

	i, ok := ns.index[name]
	if !ok {
		return ErrVariableNotFound.With(
			slog.String("namespace", space),
			slog.String("variable", name),
		)
	}

	ns.vars = append(ns.vars[:i], ns.vars[i+1:]...)

	delete(ns.index, name)

	for j := i; j < len(ns.vars); j++ {
		ns.index[ns.vars[j].name] = j
	}

	return nil
}

// AddNamespace creates an empty namespace.
func (r *Runtime) AddNamespace(space string) error {
	if _, ok := r.find(space); ok {
		return ErrNamespaceExists.With(slog.String("namespace", space))
	}

	r.space(space)

	return nil
}

// DeleteNamespace removes a namespace and all of its bindings.
func (r *Runtime) DeleteNamespace(space string) error {
	i, ok := r.index[space]
	if !ok {
		return ErrNamespaceNotFound.With(slog.String("namespace", space))
	}

	r.spaces = append(r.spaces[:i], r.spaces[i+1:]...)

	delete(r.index, space)

	for j := i; j < len(r.spaces); j++ {
		r.index[r.spaces[j].name] = j
	}

	return nil
}

// mismatch builds a TypeMismatch error naming the expected and actual types.
func mismatch(space, name string, want, got lang.Type) *lang.Error {
	return ErrTypeMismatch.With(
		slog.String("namespace", space),
		slog.String("variable", name),
		slog.String("expected", want.String()),
		slog.String("actual", got.String()),
	)
}
