// Package reduce turns Go combining functions into reduction operations
// the native transport can execute.
//
// The canonical operators (Sum, Product, Min, Max, the logical and bitwise
// combinators) exist once per element type; handing one to New yields a
// reference to the transport's predefined tag whenever the element type's
// classification allows it. Any other function, or a predefined operator
// the classification disallows, is silently wrapped in a trampoline
// matching the transport's callback signature and registered as a custom
// operation.
//
// Tie-break semantics of Min and Max are asymmetric on purpose: Min keeps
// the second operand on equality, Max the first. Collective results must
// not change depending on whether the predefined or synthesized path ran.
package reduce
