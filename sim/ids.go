package sim

// ComponentID is a dense, nonzero integer assigned in registration order
// and never reused.
type ComponentID uint32

// NoComponent is the sentinel used as src for system-generated events that
// have no originating component.
const NoComponent ComponentID = 0

// EventID is a globally unique, monotonically increasing identifier
// assigned to every event at creation time, including cancelled and timer
// events.
type EventID uint64

// EventKey is a 64-bit integer extracted from a payload by a
// user-registered key extractor, used to disambiguate multiple awaiters
// waiting on the same payload type and destination.
type EventKey int64

// TaskID identifies a spawned task for the lifetime of the run.
type TaskID uint64
