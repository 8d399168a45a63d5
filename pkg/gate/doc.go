// Package gate implements the per-line stage gate that enforces the order
// Read -> Uppercase -> Replace -> Write.
//
// Each gate holds a monotonically increasing stage marker. A worker claims a
// line for stage S only while the marker equals S-1 and nobody else holds it;
// completing S moves the marker to S and releases the line for stage S+1.
// Permits are never replenished, so no transition can fire twice.
package gate
