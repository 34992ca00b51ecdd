// Package gitctx builds the ChangeSet reviewed by the engine.
//
// Three modes are supported: [Staged] diffs the index against HEAD (unstaged
// edits are excluded by design), [Branch] diffs HEAD against the merge base
// with a target branch, and [ScanFiles] reads explicit files and renders them
// as synthetic new-file diffs so the rest of the pipeline never special-cases
// the mode.
//
// All git access is read-only shelling out; the repository is never mutated.
// Per-file hunks are truncated at a configurable line count to keep prompts
// within provider context limits, and truncation is recorded on the
// ChangeSet.
package gitctx
