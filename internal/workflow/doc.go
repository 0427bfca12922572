// Package workflow drives queue items through the pipeline stages:
// transcription, translation, and compositing. The manager polls the queue
// for the oldest actionable item, hands it to the matching stage handler,
// and records the outcome. One item is processed at a time; a failed item
// is marked failed and the batch moves on.
package workflow
