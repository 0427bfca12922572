// Package subtitle implements the segment translation and SRT generation
// core: an order-preserving concurrent translator over time-stamped
// transcript segments and a deterministic SRT document builder.
package subtitle
