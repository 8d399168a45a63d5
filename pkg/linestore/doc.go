// Package linestore holds the fixed-capacity ordered array of lines shared by
// every worker pool. Each line carries its own gate; the store itself takes
// no locks, and content access is safe only under a successful claim.
package linestore
