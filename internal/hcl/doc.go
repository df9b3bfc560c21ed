// Package hcl implements the config.Loader interface for HCL pipeline
// documents. Parsing, translation into the format-agnostic model, and the
// validation pass all live here; nothing outside this package touches HCL
// syntax for documents.
package hcl
