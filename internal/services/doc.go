// Package services holds cross-cutting support for external collaborators:
// sentinel error markers for failure classification and context annotations
// shared by the workflow stages.
package services
