// Package connectors holds the remote API implementations, one package
// per hosting service. Each implements driven.RemoteAPI and translates
// the host's groups and repositories into GroupRef and RepoRef values.
//
// The CLI picks a connector from the configured host type.
package connectors
