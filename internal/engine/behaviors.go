package engine

import (
	"fmt"
	"slices"
)

// BehaviorFactory creates a behaviour from JSON-style props.
type BehaviorFactory func(props map[string]any) Behavior

var behaviorRegistry = map[string]BehaviorFactory{}

// RegisterBehavior registers a named behaviour factory. Chunk providers use
// the registry to attach behaviours described by configuration.
func RegisterBehavior(name string, factory BehaviorFactory) {
	if _, exists := behaviorRegistry[name]; exists {
		panic(fmt.Sprintf("behavior %q already registered", name))
	}
	behaviorRegistry[name] = factory
}

// CreateBehavior looks up a registered behaviour by name and creates it with
// the given props. It returns nil for unknown names.
func CreateBehavior(name string, props map[string]any) Behavior {
	factory, ok := behaviorRegistry[name]
	if !ok {
		return nil
	}
	return factory(props)
}

// RegisteredBehaviors returns the registered names in sorted order.
func RegisteredBehaviors() []string {
	names := make([]string, 0, len(behaviorRegistry))
	for name := range behaviorRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PropFloat reads a numeric prop, accepting the float64 that encoding/json
// produces as well as native float32 and int values.
func PropFloat(props map[string]any, key string, def float32) float32 {
	switch v := props[key].(type) {
	case float64:
		return float32(v)
	case float32:
		return v
	case int:
		return float32(v)
	}
	return def
}

// PropString reads a string prop.
func PropString(props map[string]any, key, def string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return def
}
