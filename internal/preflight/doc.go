// Package preflight validates the runtime environment before a batch run:
// external binaries, directory permissions, disk headroom, and translation
// API reachability.
package preflight
