// Package app wires the engine together: configuration, logging, document
// loading, trigger evaluation, matrix expansion, scheduling, and reporting.
// It owns the application lifecycle from loaded config to exit code.
package app
