// Package openai wraps the two OpenAI audio endpoints slidecast relies on:
// text-to-speech for narration and segment-level transcription for
// subtitles.
//
// Credentials and endpoints arrive through Config; the package never reads
// the environment. Requests are issued once: callers decide whether a
// failure aborts their batch.
package openai
