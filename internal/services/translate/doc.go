// Package translate wraps an OpenRouter-compatible chat completion API as a
// text translation client. Every call is independent, so the client is safe
// for the concurrent per-segment fan-out the subtitle translator performs.
package translate
