package sim

// sharedAwaiter is the hand-off point between the dispatcher and a
// suspended task: the dispatcher fills in payload/completed, the task
// reads it back out after its next resume. It is exclusively owned by
// the awaiting Task and referenced by at most one entry in the Engine's
// awaiter table.
type sharedAwaiter struct {
	completed bool
	payload   any
	task      *Task
}

// awaitKey identifies a receiving slot: payload type tag, destination,
// optional source filter, optional EventKey. hasSrc/hasKey distinguish a
// zero-value filter from "no filter", since ComponentID 0 (NoComponent)
// and EventKey 0 are both legitimate values to filter on.
type awaitKey struct {
	typeTag string
	dst     ComponentID
	hasSrc  bool
	src     ComponentID
	hasKey  bool
	key     EventKey
}

// awaiterTable is the executor's single keyed/unkeyed awaiter index: one
// Go map keyed by awaitKey, with hasSrc/hasKey as part of the key, and
// dispatch tries narrower-to-broader key variants in priority order.
type awaiterTable struct {
	entries map[awaitKey]*sharedAwaiter
}

func newAwaiterTable() *awaiterTable {
	return &awaiterTable{entries: make(map[awaitKey]*sharedAwaiter)}
}

// register inserts awaiter under key. A second registration under an
// identical key is a programmer error: exactly one awaiter may be
// registered for a given key at a time.
func (t *awaiterTable) register(key awaitKey, awaiter *sharedAwaiter) {
	if _, exists := t.entries[key]; exists {
		panicKind(ErrDuplicateAwaiter, "awaiter already registered for %+v", key)
	}
	t.entries[key] = awaiter
}

// remove drops the registration under key, if any, without completing it.
// Used by the dispatcher once it has matched an awaiter to an event, and by
// EventAwait.WithTimeout when the timer wins the race and the event await
// is discarded.
func (t *awaiterTable) remove(key awaitKey) {
	delete(t.entries, key)
}

// match finds the best awaiter for a delivered event, trying key variants
// from most to least specific: (hasKey & hasSrc) -> (hasKey & !hasSrc) ->
// (!hasKey & hasSrc) -> (!hasKey & !hasSrc). extractedKey/hasExtractedKey
// come from a registered key extractor, if any, for the payload's type.
func (t *awaiterTable) match(typeTag string, src, dst ComponentID, hasExtractedKey bool, extractedKey EventKey) (*sharedAwaiter, awaitKey, bool) {
	candidates := make([]awaitKey, 0, 4)
	if hasExtractedKey {
		candidates = append(candidates,
			awaitKey{typeTag: typeTag, dst: dst, hasSrc: true, src: src, hasKey: true, key: extractedKey},
			awaitKey{typeTag: typeTag, dst: dst, hasSrc: false, hasKey: true, key: extractedKey},
		)
	}
	candidates = append(candidates,
		awaitKey{typeTag: typeTag, dst: dst, hasSrc: true, src: src, hasKey: false},
		awaitKey{typeTag: typeTag, dst: dst, hasSrc: false, hasKey: false},
	)
	for _, k := range candidates {
		if a, ok := t.entries[k]; ok {
			return a, k, true
		}
	}
	return nil, awaitKey{}, false
}

// len reports the number of live awaiter registrations, for introspection
// and property tests (awaiter uniqueness).
func (t *awaiterTable) len() int { return len(t.entries) }
