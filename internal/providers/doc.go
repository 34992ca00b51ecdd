// Package providers implements the Reviewer interface for each supported
// LLM backend.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT), Google (Gemini),
// and Ollama for local models. All variants are plain net/http JSON clients;
// a baseURL field on each lets tests redirect calls to local httptest
// servers without making live API requests.
//
// Providers never retry internally. Failures are classified into a small
// taxonomy ([Error] with auth, rate-limit, network, and bad-response kinds)
// and the review engine decides retry policy from the [IsRetryable] flag.
//
// The [Registry] holds name-to-factory mappings populated at startup;
// construction and credential reads are deferred until a provider is
// actually selected, so an unconfigured provider never blocks another.
package providers
