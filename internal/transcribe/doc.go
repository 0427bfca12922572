// Package transcribe runs WhisperX through uvx to produce time-aligned
// transcript segments from an extracted audio file. The transcription engine
// is an external collaborator; this package only shells out and parses its
// JSON output.
package transcribe
