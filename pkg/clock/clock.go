// Package clock implements a Lamport logical clock.
//
// From Lamport (1978), two implementation rules govern the clock:
//
//	IR1 (internal event): Before any internal event, increment the clock.
//	IR2 (message receipt): On receiving a message with timestamp t,
//	     set the clock to max(own, t) + 1.
//
// In weavelist the clock allocates timestamps for locally created records.
// It is seeded from the weave's maximum merged timestamp and witnesses every
// remote timestamp the weave admits, so a freshly ticked value is always
// strictly greater than anything already in the weave.
//
// Note: Clock is not goroutine-safe. The document owner serializes all
// access behind its own mutex.
package clock

// Clock is a Lamport logical clock. Not goroutine-safe; see package doc.
type Clock struct {
	ts int64
}

// Tick implements IR1: increment the clock before an internal event.
// Returns the new timestamp.
func (c *Clock) Tick() int64 {
	c.ts++
	return c.ts
}

// Witness implements IR2's first half: advance the clock to at least the
// observed remote timestamp. The next Tick then yields a value strictly
// greater than anything witnessed.
func (c *Clock) Witness(observed int64) {
	if observed > c.ts {
		c.ts = observed
	}
}

// Value returns the current clock value without advancing it.
func (c *Clock) Value() int64 { return c.ts }

// Set initializes the clock to a specific value. Used to seed from
// persisted state when a document is rebuilt at startup.
func (c *Clock) Set(v int64) { c.ts = v }
