// Package review turns extracted changesets into findings. It builds
// provider prompts, drives the selected provider with retry on transient
// failures, and defensively parses whatever comes back into a Result.
package review
