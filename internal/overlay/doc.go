// Package overlay implements the cursor-tracking highlight overlay.
// It owns the visibility state machine, the cursor sampler step and the
// band paint routine. Windowing, timers and cursor queries are reached
// through small interfaces so the state machine runs unchanged on every
// display backend and in tests.
package overlay
