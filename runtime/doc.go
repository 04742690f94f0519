// Package runtime implements the VTC store: an ordered collection of
// namespaces and variable bindings loaded from VTC sources, with typed
// accessors, reference resolution, intrinsic function evaluation, derived
// views (flatten, dict), and serialization back to VTC, JSON, or YAML.
//
// Loads are atomic: a source that fails to parse leaves the store untouched.
// Namespaces and variables enumerate in first-appearance order, and
// re-loading a namespace merges its bindings (last assignment wins) without
// moving the namespace's position.
package runtime
