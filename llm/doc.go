// Package llm defines the narrow text-generation contract the debate
// engine depends on, the prompt framing for each generation role
// (argument, verification, summary), and the permissive decoding of
// structured collaborator responses.
//
// The engine treats the collaborator as a raw-text capability: structure
// is requested in the prompt, but responses are decoded defensively with
// a two-stage strategy (strict JSON, then lenient extraction, then a
// fixed fallback) so a malformed response degrades a turn instead of
// failing it.
package llm
