// Package audit buffers session events and relays them to a caller-supplied
// [Sink] off the request path.
//
// The engine decides which events exist and what goes in them; this package
// only stamps IDs, buffers, and delivers. When the buffer is full and
// DropIfFull is set, events are counted and discarded rather than blocking a
// login or refresh.
package audit
