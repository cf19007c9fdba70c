// Package graph defines the Dependency Graph Provider contract.
//
// A Provider turns some representation of a built codebase into dependency
// edges for every concrete package under a requested root. The violation
// engine only ever sees edges, so any extraction technology can sit behind
// the interface:
//
//   - Static: an in-memory edge list (tests, external extractor reports)
//   - manifest: per-package dependency manifests in a compiled-artifact tree
//   - goimports: import declarations parsed from Go sources
//   - gopackages: the Go build graph as loaded by golang.org/x/tools/go/packages
//
// Providers must be stateless between calls and safe for concurrent use.
//
// Edges that are introduced at build time (code generation, weaving) are only
// visible to providers that read post-build artifacts. A source-level provider
// silently misses them, and tolerated entries that refer to them will then look
// stale. Pick the provider accordingly.
package graph
