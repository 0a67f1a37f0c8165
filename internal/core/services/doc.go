// Package services implements the driving port interfaces.
// Services contain the core logic of the discovery, filter and sync
// pipeline and call out to driven ports (adapters) for the host API,
// the VCS and progress reporting.
//
// Services depend only on domain, ports and the logger.
package services
