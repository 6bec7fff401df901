// Package codec centralizes the encoding of annotation dumps.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Indenter is implemented by codecs that can produce human-readable output.
type Indenter interface {
	MarshalIndent(v any, prefix, indent string) ([]byte, error)
}

// Names lists the built-in codec names.
var Names = []string{"go-json", "json"}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MarshalPretty encodes v with two-space indentation when c supports it.
func MarshalPretty(c Codec, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	if ind, ok := c.(Indenter); ok {
		return ind.MarshalIndent(v, "", "  ")
	}
	return c.Marshal(v)
}

// MustMarshal is a helper for tests and examples.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Default is the codec used by the CLI unless another one is selected.
var Default Codec = GoJSON{}
