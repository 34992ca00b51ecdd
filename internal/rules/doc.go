// Package rules is a deterministic review engine. It runs pattern-based
// checks over extracted file content and produces results in the same shape
// as provider output, so both paths share one rendering pipeline.
package rules
