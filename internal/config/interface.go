package config

import "context"

// Loader is the interface for a format-specific document loader. Load reads
// a pipeline document from the given path (a single file or a directory of
// document files), translates it into the format-agnostic model, and runs
// the validation pass. All failures are classified under
// result.ErrInvalidDocument.
type Loader interface {
	Load(ctx context.Context, path string) (*Document, error)
}
