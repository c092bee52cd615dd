package config

import (
	"context"
	"io"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Extensions lists the file extensions (with the leading dot) this
	// loader understands.
	Extensions() []string
	// Load reads every matching file under the given paths and translates
	// them into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Writer serializes a model back into a configuration format.
type Writer interface {
	Write(w io.Writer, m *Model) error
}
