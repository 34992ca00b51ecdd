// Ebert is an uncompromising CLI for reviewing code changes with LLM
// providers or a deterministic rule engine.
//
// It reviews staged changes, branch divergence, and whole files, emitting
// structured findings with deterministic exit codes suitable for CI gating
// and git hooks.
//
// Usage:
//
//	ebert                         # review staged changes
//	ebert src/*.go                # review files directly
//	ebert --branch main           # review changes since diverging from main
//	ebert --engine deterministic  # rule-based review, no provider needed
//	ebert providers               # show provider availability
//
// See https://github.com/dshills/ebert for full documentation.
package main
