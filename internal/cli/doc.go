// Package cli wires together the Cobra command tree for the ebert binary.
//
// It defines the root review command and the subcommands (providers, cache,
// version), binds flags, reads configuration, invokes the review engine, and
// returns deterministic exit codes for CI gating.
package cli
