// Package memory provides in-memory implementations of the driven store
// ports. They are used when persistence is disabled and as fakes in tests.
package memory
