// Package cli contains the command line interface for vtc.
//
// # Usage
//
// The CLI provides logging and profiling configuration:
//
//	vtc --log-level=debug --pprof-mode=cpu
//
// Source files are given with --source (repeatable, or '-' for stdin) and
// merged into a single runtime store before the selected command runs:
//
//	vtc -s app.vtc get server.host
//	vtc -s app.vtc list server
//	vtc -s app.vtc export yaml
//
// # Configuration
//
// Flag defaults may be stored in a vtc file under the user config directory,
// in a @config namespace whose variable names mirror the flag names with
// underscores in place of hyphens. See [resolve] for the loader.
package cli
