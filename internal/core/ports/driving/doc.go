// Package driving defines the inbound ports of the pipeline: the operations
// the CLI and scheduler invoke on the core services.
package driving
