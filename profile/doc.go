// Package profile provides optional runtime profiling for the vtc
// application.
//
// The package integrates [github.com/pkg/profile] behind the "pprof" build
// tag. When built without the tag (the default), all operations are no-ops
// with zero runtime overhead.
//
// Supported modes when built with the tag: allocs, block, clock, cpu,
// goroutine, heap, mem, mutex, thread, and trace. Use [Modes] to retrieve
// the list programmatically.
//
// Profiling is configured with functional options and started through
// [Config.Start]:
//
//	cfg = profile.WithMode("cpu")(cfg)
//	cfg = profile.WithPath(dir)(cfg)
//	profiler := cfg.Start()
//	defer profiler.Stop()
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
