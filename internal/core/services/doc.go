// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services reach infrastructure only through the ports in
// internal/core/ports/driven; adapters are injected by cmd/docsight.
package services
