// Package domain defines the core entities for repotree.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Node: A root, group, or repository in the discovered hierarchy
//   - SyncAction: A planned clone or update of one repository
//   - SyncResult: The outcome of executing a SyncAction
//   - Config: The validated run configuration fed into the core
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
