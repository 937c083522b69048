// Package schema gives event payload types an optional structured
// representation, so a payload that will be serialised for logging or
// tracing can be validated against a JSON Schema document rather than
// dumped blind.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Registry maps event payload type tags to a compiled JSON Schema. It is
// safe for concurrent use; a simulation's component handlers may register
// schemas from any goroutine before the engine starts running.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

// New returns an empty schema registry.
func New() *Registry {
	return &Registry{schemas: make(map[string]*jsonschema.Schema)}
}

// Register compiles schemaJSON and associates it with the given payload
// type tag. Registering a second schema for a tag that already has one is
// an external error, not a panic: schema documents typically come from
// config files or component setup code, not from the simulation model
// itself, so a duplicate is reported back to the caller instead of crashing
// the whole run.
func (r *Registry) Register(tag string, schemaJSON []byte) error {
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return fmt.Errorf("unmarshal schema for %q: %w", tag, err)
	}

	c := jsonschema.NewCompiler()
	resourceName := tag + ".json"
	if err := c.AddResource(resourceName, doc); err != nil {
		return fmt.Errorf("add schema resource for %q: %w", tag, err)
	}
	compiled, err := c.Compile(resourceName)
	if err != nil {
		return fmt.Errorf("compile schema for %q: %w", tag, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[tag]; exists {
		return fmt.Errorf("schema already registered for payload tag %q", tag)
	}
	r.schemas[tag] = compiled
	return nil
}

// Validate checks payloadJSON against the schema registered for tag, if
// any. A tag with no registered schema always validates: schema
// registration is opt-in.
func (r *Registry) Validate(tag string, payloadJSON []byte) error {
	r.mu.RLock()
	compiled, ok := r.schemas[tag]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	var doc any
	if err := json.Unmarshal(payloadJSON, &doc); err != nil {
		return fmt.Errorf("unmarshal payload for %q: %w", tag, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("validate payload for %q: %w", tag, err)
	}
	return nil
}

// Has reports whether a schema is registered for tag.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[tag]
	return ok
}
