// Package engine implements the virtual-time scheduler behind the marbles harness.
//
// ARCHITECTURE:
//
// Single-Owner Event Loop:
// A VirtualClock owns its action queue and its current frame. Only Run
// advances the frame, and only to the due frame of the action it is about
// to execute. This ensures:
// - Predictable ordering of everything scheduled for the same frame
// - Identical execution order for identical schedule calls
// - No dependence on wall-clock time anywhere in a test
//
// Action Processing Flow:
// 1. Schedule/ScheduleAt push an action keyed by (due frame, sequence number)
// 2. Run pops the minimum action, advances Now, executes it
// 3. Work executed by Run may schedule more work into the same queue
// 4. Run returns once the queue is empty
//
// Cancellation:
// Handle.Dispose removes a not-yet-fired action from the queue. Disposing
// twice, or after the action fired, is a no-op.
//
// CRITICAL PATTERNS:
//
// Sequence tie-break:
// Every action takes a strictly increasing number from Sequence at
// schedule time. Actions due at the same frame run in FIFO order.
//
// No past scheduling:
// Once Run has started, ScheduleAt rejects frames earlier than Now with an
// INVALID_SCHEDULE RuntimeError.
package engine
