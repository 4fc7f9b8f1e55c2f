// Package domain holds the core model types, repository contracts and
// sentinel errors shared across all layers. It has no dependencies on
// adapters or frameworks.
package domain
