package sim

import "reflect"

// Event is an immutable, time-stamped, addressed, type-erased message unit.
// Its ordering key is (Time ascending, ID ascending): ties on Time are
// broken by ID, giving FIFO delivery among events emitted at the same
// simulated instant.
type Event struct {
	ID      EventID
	Time    float64
	Src     ComponentID
	Dst     ComponentID
	Payload any
}

// typeTag returns the runtime type identity used to recover an event
// payload's concrete type at dispatch and to key awaiter registrations.
// Payloads are expected to be concrete struct (or pointer-to-struct)
// types; an untyped nil payload has no tag and yields the empty string.
func typeTag(payload any) string {
	t := reflect.TypeOf(payload)
	if t == nil {
		return ""
	}
	return t.String()
}

// typeTagOf returns the type tag for the generic type parameter T,
// independent of any runtime value, so an awaiter can be registered
// before a matching event exists.
func typeTagOf[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		// T is an interface type instantiated with no concrete value;
		// fall back to the static type name via a pointer, which always
		// carries a concrete reflect.Type.
		t = reflect.TypeOf(&zero).Elem()
	}
	return t.String()
}
