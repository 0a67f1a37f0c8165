// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RemoteAPI: Lists groups and repositories on the host (GitLab, GitHub)
//   - VCS: Clones and updates local checkouts (git binary, go-git)
//
// # Optional Interfaces
//
// These can be nil or no-op - the application degrades gracefully:
//
//   - ProgressSink: Receives discovery and sync progress. Defaults to NopProgress.
//   - TokenStore: Persists host tokens between runs. Without it --token or env is required.
//   - ConfigStore: Application configuration file. Without it only flags and env apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
