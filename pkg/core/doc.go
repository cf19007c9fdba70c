// Package core defines the shared language of archgate.
//
// This package contains:
//   - Package names and boundary-aware prefix matching (IsUnder, Parent, ToPath)
//   - Dependency edges and the order-independent Set used for violation sets
//   - The policy table (Policy, RootPolicy)
//   - The error taxonomy (ExtractionError, PolicyViolation, ConfigurationError)
//   - Diagnostic severities
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
