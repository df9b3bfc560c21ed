// Package config defines the format-agnostic model of a pipeline document
// and the Loader interface a format-specific parser must implement. The
// model is read-only after loading and is shared by all job instances
// without locking.
package config
