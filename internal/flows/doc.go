// Package flows holds the multi-step orchestration behind each Engine
// operation.
//
// Every RunX function takes a typed dependency struct and returns a result
// carrying a FailureKind. The root package maps kinds to public errors,
// metrics, audit events and log lines; flows never decide what a caller sees.
//
// The package keeps no state between calls and does no I/O of its own.
package flows
