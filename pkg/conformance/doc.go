// Package conformance compares each governed root's computed violations with
// the violations its policy tolerates.
//
// The comparison is set equality in both directions. A new, undeclared
// violation fails the root because the architecture regressed; a tolerated
// violation that no longer occurs also fails it, because the policy is stale
// and must be tightened. Every root is evaluated independently and all
// failures are collected.
package conformance
