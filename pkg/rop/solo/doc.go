// Package solo contains single-value, synchronous ROP primitives that operate
// on Result[T].
//
// Highlights:
// - Switch: move from Result[In] to Result[Out]
// - Map: transform successful values
// - Try: call a function (Out, error); errors fail, cancellations cancel
// - Tee: side effect on success
// - Finally: reduce to a concrete value via success/error/cancel handlers
package solo
