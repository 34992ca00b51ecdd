// Package redact strips secrets and filesystem paths from text.
//
// [Secrets] scrubs diff content before it is sent to an LLM provider, using
// regex heuristics for common credential formats (API keys, tokens, JWTs,
// private key blocks). [Error] additionally collapses absolute paths in error
// messages so failures never leak directory layout or credentials.
package redact
